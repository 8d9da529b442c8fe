// Package deficiency evaluates soil test results against per-nutrient
// critical and optimal thresholds to flag likely nutrient deficiencies.
package deficiency

import (
	"fmt"
	"sort"

	"github.com/agroplan/agroplan/pkg/constants"
	"go.uber.org/zap"
)

// Severity classifies how far a soil test level is below the optimal range.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMarginal Severity = "marginal"
	SeverityAdequate Severity = "adequate"
)

// Finding is the evaluation of one measured nutrient.
type Finding struct {
	Nutrient string
	Level    float64 // soil test value, ppm
	Critical float64
	Optimal  float64
	Severity Severity
	Note     string
}

// threshold holds critical and optimal soil test levels in ppm.
type threshold struct {
	critical float64
	optimal  float64
}

var thresholds = map[string]threshold{
	constants.NutrientNitrogen:   {critical: 10, optimal: 20},
	constants.NutrientPhosphorus: {critical: 15, optimal: 30},
	constants.NutrientPotassium:  {critical: 120, optimal: 160},
	constants.NutrientSulfur:     {critical: 8, optimal: 12},
	constants.NutrientZinc:       {critical: 0.8, optimal: 1.5},
	constants.NutrientMagnesium:  {critical: 50, optimal: 100},
	constants.NutrientBoron:      {critical: 0.5, optimal: 1.0},
}

// Evaluate classifies every measured nutrient with a known threshold.
// Findings are ordered by nutrient code so identical soil tests produce
// identical reports. Unmeasured nutrients are not diagnosed.
func Evaluate(logger *zap.Logger, soilTest map[string]float64) []Finding {
	if logger == nil {
		logger = zap.NewNop()
	}

	var findings []Finding
	for code, level := range soilTest {
		canonical, ok := constants.CanonicalNutrient(code)
		if !ok {
			logger.Warn("skipping unrecognized nutrient code in soil test",
				zap.String("op", "deficiency.Evaluate"),
				zap.String("code", code),
			)
			continue
		}
		limits, ok := thresholds[canonical]
		if !ok {
			continue
		}

		finding := Finding{
			Nutrient: canonical,
			Level:    level,
			Critical: limits.critical,
			Optimal:  limits.optimal,
		}
		switch {
		case level < limits.critical:
			finding.Severity = SeverityLow
			finding.Note = fmt.Sprintf("%s at %.1f ppm is below the critical level of %.1f ppm; a strong response to applied %s is expected",
				canonical, level, limits.critical, canonical)
		case level < limits.optimal:
			finding.Severity = SeverityMarginal
			finding.Note = fmt.Sprintf("%s at %.1f ppm is below the optimal level of %.1f ppm; maintenance applications are advised",
				canonical, level, limits.optimal)
		default:
			finding.Severity = SeverityAdequate
			finding.Note = fmt.Sprintf("%s at %.1f ppm is adequate", canonical, level)
		}
		findings = append(findings, finding)
	}

	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Nutrient < findings[j].Nutrient
	})
	return findings
}

// Deficient returns only the findings below the optimal range.
func Deficient(findings []Finding) []Finding {
	var deficient []Finding
	for _, finding := range findings {
		if finding.Severity != SeverityAdequate {
			deficient = append(deficient, finding)
		}
	}
	return deficient
}
