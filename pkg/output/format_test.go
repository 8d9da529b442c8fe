package output

import (
	"strings"
	"testing"

	"github.com/agroplan/agroplan/internal/deficiency"
	"github.com/agroplan/agroplan/internal/optimizer"
	"github.com/agroplan/agroplan/internal/planner"
	"github.com/agroplan/agroplan/internal/schedule"
)

func sampleReports() []planner.Report {
	roi := 5.67
	return []planner.Report{
		{
			Scenario:  "baseline",
			FieldName: "north 40",
			Acres:     100,
			Requirements: optimizer.Requirements{
				"N": 184, "P": 51, "K": 25.5,
			},
			Findings: []deficiency.Finding{
				{Nutrient: "P", Level: 12, Critical: 15, Optimal: 30, Severity: deficiency.SeverityLow, Note: "P at 12.0 ppm is below the critical level of 15.0 ppm"},
			},
			Plan: &optimizer.Plan{
				Items: []optimizer.PlanItem{
					{ProductName: "Urea", RatePerAcre: 275.05, CostPerAcre: 61.89},
					{ProductName: "DAP", RatePerAcre: 130.43, CostPerAcre: 35.87},
				},
				CostPerAcre:   97.76,
				TotalCost:     9776.00,
				ExpectedYield: 18000,
				ROI:           &roi,
			},
			Passes: []schedule.Pass{
				{
					Window: "pre-plant",
					Month:  "2026-04",
					Applications: []schedule.Application{
						{ProductName: "DAP", RatePerAcre: 130.43},
					},
					CostPerAcre: 35.87,
				},
			},
		},
	}
}

func TestCsvString(t *testing.T) {
	rendered := CsvString(sampleReports())

	lines := strings.Split(strings.TrimSpace(rendered), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], `"scenario"`) {
		t.Errorf("Expected CSV header, got %s", lines[0])
	}
	if !strings.Contains(lines[1], `"Urea"`) || !strings.Contains(lines[1], `"275.05"`) {
		t.Errorf("Expected urea row, got %s", lines[1])
	}
	if !strings.Contains(lines[1], `"5.67"`) {
		t.Errorf("Expected ROI column, got %s", lines[1])
	}
}

func TestCsvStringNilROI(t *testing.T) {
	reports := sampleReports()
	reports[0].Plan.ROI = nil

	rendered := CsvString(reports)
	lines := strings.Split(strings.TrimSpace(rendered), "\n")
	if !strings.HasSuffix(lines[1], `,""`) {
		t.Errorf("Expected empty ROI column, got %s", lines[1])
	}
}

func TestYamlString(t *testing.T) {
	rendered, err := YamlString(sampleReports())
	if err != nil {
		t.Fatalf("YamlString() error = %v", err)
	}

	for _, fragment := range []string{"scenario: baseline", "productname: Urea", "costperacre:", "window: pre-plant"} {
		if !strings.Contains(rendered, fragment) {
			t.Errorf("Expected YAML to contain %q, got:\n%s", fragment, rendered)
		}
	}
}

func TestYamlStringEmpty(t *testing.T) {
	rendered, err := YamlString(nil)
	if err != nil {
		t.Fatalf("YamlString() error = %v", err)
	}
	if strings.TrimSpace(rendered) != "[]" {
		t.Errorf("Expected empty list, got %q", rendered)
	}
}
