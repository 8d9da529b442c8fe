// Package planner orchestrates requirement derivation, deficiency analysis,
// allocation optimization, and application scheduling into per-scenario
// reports.
package planner

import (
	"fmt"

	"github.com/agroplan/agroplan/internal/config"
	"github.com/agroplan/agroplan/internal/deficiency"
	"github.com/agroplan/agroplan/internal/optimizer"
	"github.com/agroplan/agroplan/internal/requirements"
	"github.com/agroplan/agroplan/internal/schedule"
	"go.uber.org/zap"
)

// Report holds everything computed for one scenario.
type Report struct {
	Scenario     string
	FieldName    string
	Acres        float64
	Requirements optimizer.Requirements
	Findings     []deficiency.Finding
	Plan         *optimizer.Plan
	Passes       []schedule.Pass
}

// BuildPlans produces one report per active scenario. The three optimizer
// failure classes pass through wrapped, so callers can still match them with
// errors.As and render scenario-specific messages.
func BuildPlans(logger *zap.Logger, conf *config.Configuration) ([]Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		return nil, &optimizer.InvalidInputError{Reason: "configuration cannot be nil"}
	}

	needs, err := fieldRequirements(logger, conf)
	if err != nil {
		return nil, err
	}

	findings := deficiency.Evaluate(logger, conf.SoilTest)

	var reports []Report
	for _, scenario := range conf.ActiveScenarios() {
		products := conf.Products(scenario)
		cons := conf.Constraints(scenario)

		plan, err := optimizer.Optimize(logger, needs, products, cons)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		var passes []schedule.Pass
		if conf.Field.PlantMonth != "" {
			passes, err = schedule.Build(logger, plan, products, conf.Field.PlantMonth)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}
			passes = schedule.AdjustForWeather(logger, passes, products, conf.Weather.Rainfall)
		}

		reports = append(reports, Report{
			Scenario:     scenario.Name,
			FieldName:    conf.Field.Name,
			Acres:        conf.Field.Acres,
			Requirements: needs,
			Findings:     findings,
			Plan:         plan,
			Passes:       passes,
		})

		logger.Info("scenario planned",
			zap.String("op", "planner.BuildPlans"),
			zap.String("scenario", scenario.Name),
			zap.Float64("costPerAcre", plan.CostPerAcre),
			zap.Int("products", len(plan.Items)),
			zap.Int("passes", len(passes)),
		)
	}

	return reports, nil
}

// fieldRequirements resolves the nutrient requirements for the field.
// Explicit requirements win as-given; otherwise they are derived from the
// crop and yield goal, with soil test credits applied.
func fieldRequirements(logger *zap.Logger, conf *config.Configuration) (optimizer.Requirements, error) {
	if len(conf.Requirements) > 0 {
		needs := make(optimizer.Requirements, len(conf.Requirements))
		for code, amount := range conf.Requirements {
			needs[code] = amount
		}
		return needs, nil
	}

	if conf.Field.Crop == "" {
		return nil, &optimizer.InvalidInputError{Reason: "either a crop or explicit nutrient requirements must be configured"}
	}

	derived, err := requirements.ForCrop(conf.Field.Crop, conf.Field.YieldGoal)
	if err != nil {
		return nil, err
	}
	return requirements.ApplySoilCredits(logger, derived, conf.SoilTest), nil
}
