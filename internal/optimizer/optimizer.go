// Package optimizer computes minimum-cost fertilizer allocation plans from
// per-acre nutrient requirements, a product catalog, and field constraints.
//
// Optimize is a pure function of its inputs: it holds no state between calls
// and is safe to invoke from concurrent callers.
package optimizer

import (
	"math"
	"sort"

	"github.com/agroplan/agroplan/pkg/constants"
	"github.com/agroplan/agroplan/pkg/mathutil"
	"go.uber.org/zap"
)

// Requirements maps a nutrient code to the amount required in pounds per acre.
type Requirements map[string]float64

// Product describes one fertilizer product available for purchase.
type Product struct {
	Name        string
	PricePerTon float64
	// Nutrients maps nutrient code to percent content by weight (0-100).
	Nutrients map[string]float64
}

// Constraints bound the allocation for a single field. BudgetPerAcre is
// unconstrained when nil; YieldGoal and CropPrice are only used for the
// yield and ROI estimates.
type Constraints struct {
	FieldAcres    float64
	BudgetPerAcre *float64
	YieldGoal     *float64 // bushels per acre at full nutrition
	CropPrice     *float64 // sale price per bushel
}

// PlanItem is one product selection with its application rate and cost.
type PlanItem struct {
	ProductName string
	RatePerAcre float64 // pounds of product per acre
	CostPerAcre float64
}

// Plan is the computed allocation for a field. ROI is nil when the plan has
// zero cost or when no yield goal and crop price were supplied.
type Plan struct {
	Items         []PlanItem
	CostPerAcre   float64
	TotalCost     float64
	ExpectedYield float64
	ROI           *float64
}

// Optimize computes the cheapest application plan that meets or exceeds every
// nutrient requirement. Product ties are broken by catalog order, so
// identical inputs always produce identical plans.
//
// Failures are typed: *InvalidInputError for malformed inputs,
// *InfeasibleError when a required nutrient has no supplier, and
// *BudgetExceededError when the cheapest feasible plan is over budget.
func Optimize(logger *zap.Logger, requirements Requirements, products []Product, cons Constraints) (*Plan, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := validateInputs(requirements, products, cons); err != nil {
		return nil, err
	}

	// Work on canonicalized copies so "n" and "N" refer to the same nutrient
	// and the caller's maps are never mutated.
	requirements = canonicalRequirements(requirements)
	products = canonicalProducts(products)

	if missing := uncoveredNutrients(requirements, products); len(missing) > 0 {
		return nil, &InfeasibleError{Nutrients: missing}
	}

	rates := solveGreedy(requirements, products)

	// A single product covering everything can beat the greedy blend when its
	// analysis lines up with the requirement ratios. This also guarantees the
	// plan never costs more than the best single-product alternative.
	if single, ok := bestSingleProduct(requirements, products); ok {
		if costPerAcre(single, products) < costPerAcre(rates, products)-1e-9 {
			rates = single
		}
	}

	minCost := costPerAcre(rates, products)

	if cons.BudgetPerAcre != nil && minCost > *cons.BudgetPerAcre+constants.CostTolerance {
		return nil, &BudgetExceededError{
			BudgetPerAcre:  *cons.BudgetPerAcre,
			MinCostPerAcre: mathutil.Round(minCost),
		}
	}

	plan := &Plan{}
	for i, product := range products {
		if rates[i] <= 0 {
			continue
		}
		itemCost := rates[i] * product.PricePerTon / constants.PoundsPerTon
		plan.Items = append(plan.Items, PlanItem{
			ProductName: product.Name,
			RatePerAcre: mathutil.Round(rates[i]),
			CostPerAcre: mathutil.Round(itemCost),
		})
	}
	plan.CostPerAcre = mathutil.Round(minCost)
	plan.TotalCost = mathutil.Round(minCost * cons.FieldAcres)

	if cons.YieldGoal != nil {
		plan.ExpectedYield = mathutil.Round(*cons.YieldGoal * cons.FieldAcres)
	}
	if cons.YieldGoal != nil && cons.CropPrice != nil && !mathutil.IsZero(plan.TotalCost) {
		revenue := *cons.YieldGoal * cons.FieldAcres * *cons.CropPrice
		totalCost := minCost * cons.FieldAcres
		roi := mathutil.Round((revenue - totalCost) / totalCost)
		plan.ROI = &roi
	}

	logger.Debug("allocation plan computed",
		zap.String("op", "optimizer.Optimize"),
		zap.Int("products", len(plan.Items)),
		zap.Float64("costPerAcre", plan.CostPerAcre),
	)

	return plan, nil
}

func validateInputs(requirements Requirements, products []Product, cons Constraints) error {
	if len(requirements) == 0 {
		return invalidInputf("nutrient requirements cannot be empty")
	}
	for code, amount := range requirements {
		if !constants.KnownNutrient(code) {
			return invalidInputf("unknown nutrient code %q in requirements", code)
		}
		if !mathutil.IsFinite(amount) {
			return invalidInputf("requirement for %s is not a finite number", code)
		}
		if amount < 0 {
			return invalidInputf("requirement for %s cannot be negative", code)
		}
	}

	if len(products) == 0 {
		return invalidInputf("product catalog cannot be empty")
	}
	for _, product := range products {
		if product.Name == "" {
			return invalidInputf("product name cannot be empty")
		}
		if !mathutil.IsFinite(product.PricePerTon) || product.PricePerTon < 0 {
			return invalidInputf("product %s has an invalid price", product.Name)
		}
		hasNutrient := false
		seen := make(map[string]bool, len(product.Nutrients))
		for code, content := range product.Nutrients {
			canonical, known := constants.CanonicalNutrient(code)
			if !known {
				return invalidInputf("product %s declares unknown nutrient code %q", product.Name, code)
			}
			// Case variants of one code would otherwise collapse in map
			// iteration order, making the surviving content nondeterministic.
			if seen[canonical] {
				return invalidInputf("product %s declares nutrient %s under multiple code spellings", product.Name, canonical)
			}
			seen[canonical] = true
			if !mathutil.IsFinite(content) || content < 0 || content > 100 {
				return invalidInputf("product %s has invalid content %.2f%% for %s", product.Name, content, code)
			}
			if content > 0 {
				hasNutrient = true
			}
		}
		if !hasNutrient {
			return invalidInputf("product %s supplies no nutrients", product.Name)
		}
	}

	if !mathutil.IsFinite(cons.FieldAcres) || cons.FieldAcres <= 0 {
		return invalidInputf("field acres must be positive")
	}
	if cons.BudgetPerAcre != nil && (!mathutil.IsFinite(*cons.BudgetPerAcre) || *cons.BudgetPerAcre < 0) {
		return invalidInputf("budget per acre cannot be negative")
	}
	if cons.YieldGoal != nil && (!mathutil.IsFinite(*cons.YieldGoal) || *cons.YieldGoal <= 0) {
		return invalidInputf("yield goal must be positive")
	}
	if cons.CropPrice != nil && (!mathutil.IsFinite(*cons.CropPrice) || *cons.CropPrice < 0) {
		return invalidInputf("crop price cannot be negative")
	}

	return nil
}

func canonicalRequirements(requirements Requirements) Requirements {
	canonical := make(Requirements, len(requirements))
	for code, amount := range requirements {
		name, _ := constants.CanonicalNutrient(code)
		canonical[name] += amount
	}
	return canonical
}

func canonicalProducts(products []Product) []Product {
	canonical := make([]Product, len(products))
	for i, product := range products {
		nutrients := make(map[string]float64, len(product.Nutrients))
		for code, content := range product.Nutrients {
			name, _ := constants.CanonicalNutrient(code)
			nutrients[name] = content
		}
		canonical[i] = Product{Name: product.Name, PricePerTon: product.PricePerTon, Nutrients: nutrients}
	}
	return canonical
}

// uncoveredNutrients returns the sorted nutrient codes that carry a positive
// requirement but have no supplier in the catalog.
func uncoveredNutrients(requirements Requirements, products []Product) []string {
	var missing []string
	for code, amount := range requirements {
		if amount <= 0 {
			continue
		}
		covered := false
		for _, product := range products {
			if product.Nutrients[code] > 0 {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, code)
		}
	}
	sort.Strings(missing)
	return missing
}

// solveGreedy selects application rates nutrient by nutrient, most
// constrained nutrient first. Each selection credits every nutrient the
// chosen product co-supplies, so a multi-nutrient product bought for one
// deficit shrinks the others before they are priced.
func solveGreedy(requirements Requirements, products []Product) []float64 {
	rates := make([]float64, len(products))

	for _, code := range nutrientOrder(requirements, products) {
		remaining := requirements[code]
		for i, product := range products {
			if rates[i] <= 0 {
				continue
			}
			remaining -= mathutil.ApplyPercentage(rates[i], product.Nutrients[code])
		}
		if remaining <= 0 {
			continue
		}

		best := -1
		bestCost := math.MaxFloat64
		for i, product := range products {
			content := product.Nutrients[code]
			if content <= 0 {
				continue
			}
			perPound := product.PricePerTon / (constants.PoundsPerTon * content / constants.PercentageMultiplier)
			// Strict comparison keeps the first-listed product on ties.
			if perPound < bestCost-1e-9 {
				best = i
				bestCost = perPound
			}
		}
		// Feasibility was checked up front, so a supplier always exists.
		rates[best] += remaining * constants.PercentageMultiplier / products[best].Nutrients[code]
	}

	return rates
}

// nutrientOrder sorts required nutrients by how many products supply them,
// fewest first, with ties broken by code. Single-supplier nutrients lock in
// their product early so its co-supplied nutrients are credited everywhere
// else.
func nutrientOrder(requirements Requirements, products []Product) []string {
	suppliers := func(code string) int {
		n := 0
		for _, product := range products {
			if product.Nutrients[code] > 0 {
				n++
			}
		}
		return n
	}

	codes := make([]string, 0, len(requirements))
	for code, amount := range requirements {
		if amount > 0 {
			codes = append(codes, code)
		}
	}
	sort.Slice(codes, func(i, j int) bool {
		si, sj := suppliers(codes[i]), suppliers(codes[j])
		if si != sj {
			return si < sj
		}
		return codes[i] < codes[j]
	})
	return codes
}

// bestSingleProduct finds the cheapest product that alone meets every
// positive requirement, returning its rate vector. The boolean is false when
// no single product covers everything.
func bestSingleProduct(requirements Requirements, products []Product) ([]float64, bool) {
	best := -1
	bestCost := math.MaxFloat64

	for i, product := range products {
		rate := 0.0
		covers := true
		for code, amount := range requirements {
			if amount <= 0 {
				continue
			}
			content := product.Nutrients[code]
			if content <= 0 {
				covers = false
				break
			}
			needed := amount * constants.PercentageMultiplier / content
			if needed > rate {
				rate = needed
			}
		}
		if !covers {
			continue
		}
		cost := rate * product.PricePerTon / constants.PoundsPerTon
		if cost < bestCost-1e-9 {
			best = i
			bestCost = cost
		}
	}

	if best < 0 {
		return nil, false
	}

	rates := make([]float64, len(products))
	rate := 0.0
	for code, amount := range requirements {
		if amount <= 0 {
			continue
		}
		needed := amount * constants.PercentageMultiplier / products[best].Nutrients[code]
		if needed > rate {
			rate = needed
		}
	}
	rates[best] = rate
	return rates, true
}

func costPerAcre(rates []float64, products []Product) float64 {
	total := 0.0
	for i, product := range products {
		total += rates[i] * product.PricePerTon / constants.PoundsPerTon
	}
	return total
}
