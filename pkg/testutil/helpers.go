// Package testutil provides helpers shared by tests across the module.
package testutil

import (
	"github.com/agroplan/agroplan/internal/optimizer"
	"github.com/agroplan/agroplan/internal/planner"
)

// FindReport returns the report for the named scenario, or nil.
func FindReport(reports []planner.Report, scenario string) *planner.Report {
	for i := range reports {
		if reports[i].Scenario == scenario {
			return &reports[i]
		}
	}
	return nil
}

// FindPlanItem returns the plan item for the named product, or nil.
func FindPlanItem(plan *optimizer.Plan, productName string) *optimizer.PlanItem {
	if plan == nil {
		return nil
	}
	for i := range plan.Items {
		if plan.Items[i].ProductName == productName {
			return &plan.Items[i]
		}
	}
	return nil
}
