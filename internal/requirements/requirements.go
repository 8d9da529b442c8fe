// Package requirements derives per-acre nutrient requirements from crop
// yield goals and soil test results.
package requirements

import (
	"sort"
	"strings"

	"github.com/agroplan/agroplan/internal/optimizer"
	"github.com/agroplan/agroplan/pkg/constants"
	"github.com/agroplan/agroplan/pkg/mathutil"
	"go.uber.org/zap"
)

// removalRates holds nutrient removal in pounds per bushel of grain yield,
// keyed by crop. Soybeans fix their own nitrogen so carry no N entry.
var removalRates = map[string]map[string]float64{
	"corn": {
		constants.NutrientNitrogen:   1.2,
		constants.NutrientPhosphorus: 0.35,
		constants.NutrientPotassium:  0.30,
		constants.NutrientSulfur:     0.08,
		constants.NutrientZinc:       0.0015,
	},
	"wheat": {
		constants.NutrientNitrogen:   1.5,
		constants.NutrientPhosphorus: 0.50,
		constants.NutrientPotassium:  0.30,
		constants.NutrientSulfur:     0.10,
	},
	"soybeans": {
		constants.NutrientPhosphorus: 0.80,
		constants.NutrientPotassium:  1.40,
		constants.NutrientSulfur:     0.06,
	},
	"sorghum": {
		constants.NutrientNitrogen:   1.1,
		constants.NutrientPhosphorus: 0.35,
		constants.NutrientPotassium:  0.25,
	},
	"barley": {
		constants.NutrientNitrogen:   1.4,
		constants.NutrientPhosphorus: 0.40,
		constants.NutrientPotassium:  0.30,
	},
	"oats": {
		constants.NutrientNitrogen:   1.0,
		constants.NutrientPhosphorus: 0.30,
		constants.NutrientPotassium:  0.25,
	},
}

// creditFactors convert soil test ppm to pounds per acre credited against the
// requirement. Nitrate-N uses a two-foot sampling depth; the others use
// conventional sufficiency conversions.
var creditFactors = map[string]float64{
	constants.NutrientNitrogen:   4.0,
	constants.NutrientPhosphorus: 1.0,
	constants.NutrientPotassium:  0.3,
	constants.NutrientSulfur:     1.0,
	constants.NutrientZinc:       0.2,
}

// SupportedCrops returns the sorted list of crops with removal data.
func SupportedCrops() []string {
	crops := make([]string, 0, len(removalRates))
	for crop := range removalRates {
		crops = append(crops, crop)
	}
	sort.Strings(crops)
	return crops
}

// ForCrop derives gross nutrient requirements for growing the given crop at
// the given yield goal (bushels per acre).
func ForCrop(crop string, yieldGoal float64) (optimizer.Requirements, error) {
	normalized := strings.ToLower(strings.TrimSpace(crop))
	rates, ok := removalRates[normalized]
	if !ok {
		return nil, &optimizer.InvalidInputError{Reason: "unknown crop " + crop}
	}
	if !mathutil.IsFinite(yieldGoal) || yieldGoal <= 0 {
		return nil, &optimizer.InvalidInputError{Reason: "yield goal must be positive"}
	}

	requirements := make(optimizer.Requirements, len(rates))
	for code, perBushel := range rates {
		requirements[code] = perBushel * yieldGoal
	}
	return requirements, nil
}

// ApplySoilCredits subtracts soil-test credits from the given requirements,
// clamping each nutrient at zero. Soil test values are in ppm; nutrients
// without a credit conversion are left unchanged. The input map is not
// modified.
func ApplySoilCredits(logger *zap.Logger, requirements optimizer.Requirements, soilTest map[string]float64) optimizer.Requirements {
	if logger == nil {
		logger = zap.NewNop()
	}

	credited := make(optimizer.Requirements, len(requirements))
	for code, amount := range requirements {
		credited[code] = amount
	}
	if len(soilTest) == 0 {
		return credited
	}

	for code, ppm := range soilTest {
		canonical, ok := constants.CanonicalNutrient(code)
		if !ok || ppm <= 0 {
			continue
		}
		factor, ok := creditFactors[canonical]
		if !ok {
			continue
		}
		amount, ok := credited[canonical]
		if !ok {
			continue
		}

		credit := ppm * factor
		remaining := amount - credit
		if remaining < 0 {
			remaining = 0
		}
		credited[canonical] = remaining

		logger.Debug("applied soil test credit",
			zap.String("op", "requirements.ApplySoilCredits"),
			zap.String("nutrient", canonical),
			zap.Float64("ppm", ppm),
			zap.Float64("credit", credit),
			zap.Float64("remaining", remaining),
		)
	}

	return credited
}
