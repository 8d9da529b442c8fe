package integration

import (
	"math"
	"testing"

	"github.com/agroplan/agroplan/internal/config"
	"github.com/agroplan/agroplan/internal/planner"
	"github.com/agroplan/agroplan/pkg/testutil"
	"go.uber.org/zap"
)

const exampleConfigPath = "../../config.yaml.example"

func loadExample(t *testing.T) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration(exampleConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return conf
}

// TestExampleConfigBaseline runs the full pipeline against the shipped
// example configuration and checks the values captured from the current
// working version.
func TestExampleConfigBaseline(t *testing.T) {
	logger := zap.NewNop()
	conf := loadExample(t)

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings for the example config, got %v", warnings)
	}

	reports, err := planner.BuildPlans(logger, conf)
	if err != nil {
		t.Fatalf("BuildPlans() error = %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("Expected 2 scenarios, got %d", len(reports))
	}

	expectedScenarios := []string{"baseline", "fall price spike"}
	for i, expected := range expectedScenarios {
		if reports[i].Scenario != expected {
			t.Errorf("Expected scenario %s, got %s", expected, reports[i].Scenario)
		}
	}

	baseline := testutil.FindReport(reports, "baseline")
	if baseline == nil {
		t.Fatal("Scenario 'baseline' not found in reports")
	}

	// Corn at 180 bu with the example soil test: all five products are used.
	if len(baseline.Plan.Items) != 5 {
		t.Errorf("Expected 5 products in the baseline plan, got %d", len(baseline.Plan.Items))
	}

	baselineChecks := []struct {
		product      string
		expectedRate float64
		tolerance    float64
	}{
		{"Urea", 340.64, 0.05},
		{"DAP", 110.87, 0.05},
		{"Potash", 42.50, 0.05},
		{"AMS", 35.00, 0.05},
		{"ZincSulfate", 0.42, 0.05},
	}
	for _, check := range baselineChecks {
		item := testutil.FindPlanItem(baseline.Plan, check.product)
		if item == nil {
			t.Errorf("Product %s not found in baseline plan", check.product)
			continue
		}
		if math.Abs(item.RatePerAcre-check.expectedRate) > check.tolerance {
			t.Errorf("Product %s: expected rate %.2f, got %.2f", check.product, check.expectedRate, item.RatePerAcre)
		}
	}

	if math.Abs(baseline.Plan.CostPerAcre-121.42) > 0.05 {
		t.Errorf("Expected baseline cost per acre 121.42, got %.2f", baseline.Plan.CostPerAcre)
	}
	if math.Abs(baseline.Plan.ExpectedYield-18000) > 0.01 {
		t.Errorf("Expected yield 18000, got %.2f", baseline.Plan.ExpectedYield)
	}
	if baseline.Plan.ROI == nil {
		t.Fatal("Expected baseline ROI to be set")
	}
	if math.Abs(*baseline.Plan.ROI-5.67) > 0.01 {
		t.Errorf("Expected baseline ROI 5.67, got %.2f", *baseline.Plan.ROI)
	}
}

func TestExampleConfigPriceSpike(t *testing.T) {
	conf := loadExample(t)

	reports, err := planner.BuildPlans(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("BuildPlans() error = %v", err)
	}

	baseline := testutil.FindReport(reports, "baseline")
	spike := testutil.FindReport(reports, "fall price spike")
	if baseline == nil || spike == nil {
		t.Fatal("Expected both scenarios in reports")
	}

	if math.Abs(spike.Plan.CostPerAcre-145.16) > 0.05 {
		t.Errorf("Expected spike cost per acre 145.16, got %.2f", spike.Plan.CostPerAcre)
	}
	if spike.Plan.CostPerAcre <= baseline.Plan.CostPerAcre {
		t.Errorf("Expected the price spike to cost more than baseline: %.2f vs %.2f",
			spike.Plan.CostPerAcre, baseline.Plan.CostPerAcre)
	}
	if *spike.Plan.ROI >= *baseline.Plan.ROI {
		t.Errorf("Expected the price spike to lower ROI: %.2f vs %.2f",
			*spike.Plan.ROI, *baseline.Plan.ROI)
	}
}

func TestExampleConfigWeatherPostponement(t *testing.T) {
	conf := loadExample(t)

	reports, err := planner.BuildPlans(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("BuildPlans() error = %v", err)
	}

	baseline := testutil.FindReport(reports, "baseline")
	if baseline == nil {
		t.Fatal("Scenario 'baseline' not found in reports")
	}

	// July is forecast wet in the example, so the nitrogen side-dress moves
	// to August with a note.
	postponed := false
	for _, pass := range baseline.Passes {
		if pass.Window == "side-dress" {
			if pass.Month != "2026-08" {
				t.Errorf("Expected side-dress postponed to 2026-08, got %s", pass.Month)
			}
			if len(pass.Notes) == 0 {
				t.Error("Expected a postponement note on the side-dress pass")
			}
			postponed = true
		}
	}
	if !postponed {
		t.Error("Expected a side-dress pass in the baseline schedule")
	}
}

// TestPipelineDeterminism runs the full pipeline twice and requires identical
// results.
func TestPipelineDeterminism(t *testing.T) {
	conf := loadExample(t)

	first, err := planner.BuildPlans(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("BuildPlans() error = %v", err)
	}
	second, err := planner.BuildPlans(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("BuildPlans() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Plan.CostPerAcre != second[i].Plan.CostPerAcre {
			t.Errorf("Scenario %s: costs differ between runs: %.10f vs %.10f",
				first[i].Scenario, first[i].Plan.CostPerAcre, second[i].Plan.CostPerAcre)
		}
		if len(first[i].Plan.Items) != len(second[i].Plan.Items) {
			t.Errorf("Scenario %s: item counts differ between runs", first[i].Scenario)
			continue
		}
		for j := range first[i].Plan.Items {
			if first[i].Plan.Items[j] != second[i].Plan.Items[j] {
				t.Errorf("Scenario %s item %d differs between runs: %+v vs %+v",
					first[i].Scenario, j, first[i].Plan.Items[j], second[i].Plan.Items[j])
			}
		}
	}
}
