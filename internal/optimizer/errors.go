package optimizer

import (
	"fmt"
	"strings"
)

// InvalidInputError reports malformed requirements, products, or constraints.
// It is a caller error, not an internal fault.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func invalidInputf(format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// InfeasibleError reports required nutrients that no product in the catalog
// supplies. Nutrients is sorted so identical inputs produce identical errors.
type InfeasibleError struct {
	Nutrients []string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("no product supplies required nutrient(s): %s", strings.Join(e.Nutrients, ", "))
}

// BudgetExceededError reports that the cheapest feasible plan costs more than
// the configured budget. MinCostPerAcre carries the minimum achievable cost
// for caller display.
type BudgetExceededError struct {
	BudgetPerAcre  float64
	MinCostPerAcre float64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("minimum feasible cost $%.2f/acre exceeds budget $%.2f/acre",
		e.MinCostPerAcre, e.BudgetPerAcre)
}
