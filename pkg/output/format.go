// Package output provides utilities for formatting and displaying plan
// reports.
package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agroplan/agroplan/internal/planner"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(reports []planner.Report) {
	p := message.NewPrinter(language.English)
	for i, report := range reports {
		fmt.Printf("--- Plan for field %s (scenario %s) ---\n", report.FieldName, report.Scenario)

		fmt.Printf("Nutrient requirements (lb/acre):\n")
		for _, code := range sortedCodes(report.Requirements) {
			fmt.Printf("  %-3s %10.2f\n", code, report.Requirements[code])
		}

		if len(report.Findings) > 0 {
			fmt.Printf("Soil test findings:\n")
			for _, finding := range report.Findings {
				fmt.Printf("  %-3s %-9s %s\n", finding.Nutrient, finding.Severity, finding.Note)
			}
		}

		fmt.Printf("Product      | Rate (lb/acre) | Cost ($/acre)\n")
		fmt.Printf("_______      | ______________ | _____________\n")
		for _, item := range report.Plan.Items {
			_, _ = p.Printf("%-12s | %14.2f | $%.2f\n", item.ProductName, item.RatePerAcre, item.CostPerAcre)
		}
		_, _ = p.Printf("Total cost: $%.2f ($%.2f/acre over %.0f acres)\n",
			report.Plan.TotalCost, report.Plan.CostPerAcre, report.Acres)
		if report.Plan.ExpectedYield > 0 {
			_, _ = p.Printf("Expected yield: %.0f bu\n", report.Plan.ExpectedYield)
		}
		if report.Plan.ROI != nil {
			fmt.Printf("ROI: %.2f\n", *report.Plan.ROI)
		} else {
			fmt.Printf("ROI: n/a\n")
		}

		if len(report.Passes) > 0 {
			fmt.Printf("Application schedule:\n")
			for _, pass := range report.Passes {
				applications := make([]string, 0, len(pass.Applications))
				for _, application := range pass.Applications {
					applications = append(applications, fmt.Sprintf("%s %.2f lb/acre", application.ProductName, application.RatePerAcre))
				}
				fmt.Printf("  %s (%s): %s\n", pass.Window, pass.Month, strings.Join(applications, ", "))
				for _, note := range pass.Notes {
					fmt.Printf("    note: %s\n", note)
				}
			}
		}

		if i < len(reports)-1 {
			fmt.Printf("\n")
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(reports []planner.Report) {
	fmt.Print(CsvString(reports))
}

// CsvString renders the CSV output as a string.
func CsvString(reports []planner.Report) string {
	var builder strings.Builder
	builder.WriteString(`"scenario","product","rate_lb_acre","cost_per_acre","plan_cost_per_acre","total_cost","roi"` + "\n")
	for _, report := range reports {
		roi := ""
		if report.Plan.ROI != nil {
			roi = fmt.Sprintf("%.2f", *report.Plan.ROI)
		}
		for _, item := range report.Plan.Items {
			builder.WriteString(fmt.Sprintf(`"%s","%s","%.2f","%.2f","%.2f","%.2f","%s"`,
				report.Scenario, item.ProductName, item.RatePerAcre, item.CostPerAcre,
				report.Plan.CostPerAcre, report.Plan.TotalCost, roi))
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

// YamlFormat outputs the full reports in YAML for machine consumption.
func YamlFormat(reports []planner.Report) error {
	rendered, err := YamlString(reports)
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}

// YamlString renders the YAML output as a string.
func YamlString(reports []planner.Report) (string, error) {
	encoded, err := yaml.Marshal(reports)
	if err != nil {
		return "", fmt.Errorf("failed to encode reports, %s", err)
	}
	return string(encoded), nil
}

func sortedCodes(requirements map[string]float64) []string {
	codes := make([]string, 0, len(requirements))
	for code := range requirements {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
