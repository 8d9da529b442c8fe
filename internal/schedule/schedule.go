// Package schedule splits an allocation plan into application passes across
// the season and adjusts them for forecast rainfall.
package schedule

import (
	"fmt"
	"time"

	"github.com/agroplan/agroplan/internal/optimizer"
	"github.com/agroplan/agroplan/pkg/constants"
	"github.com/agroplan/agroplan/pkg/mathutil"
	"go.uber.org/zap"
)

// Application is one product applied within a pass.
type Application struct {
	ProductName string
	RatePerAcre float64
}

// Pass groups the applications made in one trip over the field.
type Pass struct {
	Window       string
	Month        string
	Applications []Application
	CostPerAcre  float64
	Notes        []string
}

// nitrogenSplitThreshold is the N content above which a product is split
// between pre-plant and side-dress passes to limit leaching losses.
const nitrogenSplitThreshold = 20.0

const (
	prePlantFraction  = 0.4
	sideDressFraction = 0.6
)

// Build splits the plan's products into pre-plant, at-plant, and side-dress
// passes relative to the given planting month ("2006-01" format).
//
// High-N products are split 40/60 between pre-plant and side-dress;
// micronutrient-only products ride along at planting; everything else goes
// down pre-plant.
func Build(logger *zap.Logger, plan *optimizer.Plan, products []optimizer.Product, plantMonth string) ([]Pass, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if plan == nil {
		return nil, &optimizer.InvalidInputError{Reason: "plan cannot be nil"}
	}

	prePlantMonth, err := offsetMonth(plantMonth, -1)
	if err != nil {
		return nil, &optimizer.InvalidInputError{Reason: fmt.Sprintf("invalid planting month %q", plantMonth)}
	}
	sideDressMonth, err := offsetMonth(plantMonth, 2)
	if err != nil {
		return nil, &optimizer.InvalidInputError{Reason: fmt.Sprintf("invalid planting month %q", plantMonth)}
	}

	byName := make(map[string]optimizer.Product, len(products))
	for _, product := range products {
		byName[product.Name] = product
	}

	prePlant := Pass{Window: constants.WindowPrePlant, Month: prePlantMonth}
	atPlant := Pass{Window: constants.WindowAtPlant, Month: plantMonth}
	sideDress := Pass{Window: constants.WindowSideDress, Month: sideDressMonth}

	for _, item := range plan.Items {
		product, ok := byName[item.ProductName]
		if !ok {
			return nil, &optimizer.InvalidInputError{Reason: fmt.Sprintf("plan references unknown product %q", item.ProductName)}
		}

		switch {
		case nitrogenContent(product) >= nitrogenSplitThreshold:
			prePlant.Applications = append(prePlant.Applications, Application{
				ProductName: item.ProductName,
				RatePerAcre: mathutil.Round(item.RatePerAcre * prePlantFraction),
			})
			sideDress.Applications = append(sideDress.Applications, Application{
				ProductName: item.ProductName,
				RatePerAcre: mathutil.Round(item.RatePerAcre * sideDressFraction),
			})
		case micronutrientOnly(product):
			atPlant.Applications = append(atPlant.Applications, Application{
				ProductName: item.ProductName,
				RatePerAcre: item.RatePerAcre,
			})
		default:
			prePlant.Applications = append(prePlant.Applications, Application{
				ProductName: item.ProductName,
				RatePerAcre: item.RatePerAcre,
			})
		}
	}

	var passes []Pass
	for _, pass := range []Pass{prePlant, atPlant, sideDress} {
		if len(pass.Applications) == 0 {
			continue
		}
		pass.CostPerAcre = passCost(pass, byName)
		passes = append(passes, pass)
	}

	logger.Debug("application schedule built",
		zap.String("op", "schedule.Build"),
		zap.Int("passes", len(passes)),
	)

	return passes, nil
}

// AdjustForWeather postpones nitrogen-bearing passes that fall in months
// whose forecast rainfall exceeds the leaching threshold. Each postponed pass
// carries a note naming the original month.
func AdjustForWeather(logger *zap.Logger, passes []Pass, products []optimizer.Product, rainfall map[string]float64) []Pass {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(rainfall) == 0 {
		return passes
	}

	byName := make(map[string]optimizer.Product, len(products))
	for _, product := range products {
		byName[product.Name] = product
	}

	adjusted := make([]Pass, len(passes))
	copy(adjusted, passes)

	for i, pass := range adjusted {
		inches, ok := rainfall[pass.Month]
		if !ok || inches <= constants.LeachingRainInches {
			continue
		}
		if !carriesNitrogen(pass, byName) {
			continue
		}

		postponed, err := offsetMonth(pass.Month, 1)
		if err != nil {
			continue
		}

		note := fmt.Sprintf("postponed from %s: forecast rainfall %.1f in exceeds leaching threshold of %.1f in",
			pass.Month, inches, constants.LeachingRainInches)
		adjusted[i].Month = postponed
		adjusted[i].Notes = append(append([]string(nil), pass.Notes...), note)

		logger.Info("postponed nitrogen application for forecast rainfall",
			zap.String("op", "schedule.AdjustForWeather"),
			zap.String("window", pass.Window),
			zap.String("from", pass.Month),
			zap.String("to", postponed),
			zap.Float64("rainfallInches", inches),
		)
	}

	return adjusted
}

func nitrogenContent(product optimizer.Product) float64 {
	for code, content := range product.Nutrients {
		if canonical, ok := constants.CanonicalNutrient(code); ok && canonical == constants.NutrientNitrogen {
			return content
		}
	}
	return 0
}

// micronutrientOnly reports whether a product supplies none of the macro
// nutrients (N, P, K, S).
func micronutrientOnly(product optimizer.Product) bool {
	macros := map[string]bool{
		constants.NutrientNitrogen:   true,
		constants.NutrientPhosphorus: true,
		constants.NutrientPotassium:  true,
		constants.NutrientSulfur:     true,
	}
	for code, content := range product.Nutrients {
		canonical, ok := constants.CanonicalNutrient(code)
		if ok && macros[canonical] && content > 0 {
			return false
		}
	}
	return true
}

func carriesNitrogen(pass Pass, byName map[string]optimizer.Product) bool {
	for _, application := range pass.Applications {
		if product, ok := byName[application.ProductName]; ok && nitrogenContent(product) > 0 {
			return true
		}
	}
	return false
}

func passCost(pass Pass, byName map[string]optimizer.Product) float64 {
	total := 0.0
	for _, application := range pass.Applications {
		product := byName[application.ProductName]
		total += application.RatePerAcre * product.PricePerTon / constants.PoundsPerTon
	}
	return mathutil.Round(total)
}

// offsetMonth returns the month offset by the given number of months,
// formatted in the config date layout.
func offsetMonth(month string, months int) (string, error) {
	t, err := time.Parse(constants.DateTimeLayout, month)
	if err != nil {
		return month, err
	}
	return t.AddDate(0, months, 0).Format(constants.DateTimeLayout), nil
}
