// Package config defines the data structures related to configuration and
// includes functions for loading and converting the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/agroplan/agroplan/internal/optimizer"
	"github.com/agroplan/agroplan/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for agroplan.
type Configuration struct {
	Field        FieldConfig
	SoilTest     map[string]float64 `yaml:"soilTest,omitempty"`
	Requirements map[string]float64 `yaml:"requirements,omitempty"`
	Fertilizers  []Fertilizer
	Scenarios    []Scenario
	Weather      WeatherConfig `yaml:"weather,omitempty"`
	Logging      LoggingConfig `yaml:"logging,omitempty"`
	Output       OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, yaml
}

// FieldConfig describes the field being planned. Requirements are derived
// from Crop and YieldGoal unless an explicit requirements map is given.
type FieldConfig struct {
	Name          string
	Acres         float64
	Crop          string
	YieldGoal     float64  `yaml:"yieldGoal,omitempty"`
	CropPrice     float64  `yaml:"cropPrice,omitempty"`
	BudgetPerAcre *float64 `yaml:"budgetPerAcre,omitempty"`
	PlantMonth    string   `yaml:"plantMonth,omitempty"`
}

// Fertilizer is one product in the available catalog.
type Fertilizer struct {
	Name        string
	PricePerTon float64 `yaml:"pricePerTon"`
	// Nutrients maps nutrient code to percent content (0-100).
	Nutrients map[string]float64
}

// Scenario adjusts the catalog for one what-if run. PriceAdjustments maps a
// product name to a price multiplier; unlisted products keep their base
// price. A scenario budget overrides the field budget.
type Scenario struct {
	Name             string
	Active           bool
	PriceAdjustments map[string]float64 `yaml:"priceAdjustments,omitempty"`
	BudgetPerAcre    *float64           `yaml:"budgetPerAcre,omitempty"`
}

// WeatherConfig carries the forecast used to adjust application timing.
type WeatherConfig struct {
	// Rainfall maps a month ("2006-01") to forecast inches.
	Rainfall map[string]float64 `yaml:"rainfall,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML configuration from the given
// reader. Used by tests and by callers that hold config in memory.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ActiveScenarios returns the scenarios to plan for. When the config defines
// none (or none are active) a single baseline scenario is synthesized so a
// bare config still produces a plan.
func (c *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range c.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	if len(active) == 0 {
		return []Scenario{{Name: "baseline", Active: true}}
	}
	return active
}

// Products converts the fertilizer catalog into optimizer products with the
// scenario's price adjustments applied. Catalog order is preserved so plan
// tie-breaking stays deterministic.
func (c *Configuration) Products(scenario Scenario) []optimizer.Product {
	products := make([]optimizer.Product, 0, len(c.Fertilizers))
	for _, fertilizer := range c.Fertilizers {
		price := fertilizer.PricePerTon
		if multiplier, ok := priceAdjustment(scenario, fertilizer.Name); ok {
			price *= multiplier
		}
		nutrients := make(map[string]float64, len(fertilizer.Nutrients))
		for code, content := range fertilizer.Nutrients {
			nutrients[code] = content
		}
		products = append(products, optimizer.Product{
			Name:        fertilizer.Name,
			PricePerTon: price,
			Nutrients:   nutrients,
		})
	}
	return products
}

// Constraints builds the optimizer constraints for the given scenario,
// preferring the scenario budget over the field budget.
func (c *Configuration) Constraints(scenario Scenario) optimizer.Constraints {
	cons := optimizer.Constraints{
		FieldAcres:    c.Field.Acres,
		BudgetPerAcre: c.Field.BudgetPerAcre,
	}
	if scenario.BudgetPerAcre != nil {
		cons.BudgetPerAcre = scenario.BudgetPerAcre
	}
	if c.Field.YieldGoal > 0 {
		yieldGoal := c.Field.YieldGoal
		cons.YieldGoal = &yieldGoal
	}
	if c.Field.CropPrice > 0 {
		cropPrice := c.Field.CropPrice
		cons.CropPrice = &cropPrice
	}
	return cons
}

// priceAdjustment looks up a scenario multiplier for a product name. Viper
// lowercases map keys, so the lookup is case-insensitive.
func priceAdjustment(scenario Scenario, productName string) (float64, bool) {
	for name, multiplier := range scenario.PriceAdjustments {
		if strings.EqualFold(name, productName) {
			return multiplier, true
		}
	}
	return 0, false
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard input errors surface later from the optimizer.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Field.YieldGoal > 0 && c.Field.CropPrice <= 0 {
		warnings = append(warnings, fmt.Sprintf("Field '%s' has a yield goal but no crop price - ROI will not be estimated", c.Field.Name))
	}
	if len(c.Requirements) == 0 && c.Field.Crop == "" {
		warnings = append(warnings, fmt.Sprintf("Field '%s' has neither a crop nor explicit requirements - planning will fail", c.Field.Name))
	}
	if len(c.Requirements) > 0 && c.Field.Crop != "" {
		warnings = append(warnings, "Explicit nutrient requirements override crop-derived values")
	}
	if len(c.SoilTest) == 0 {
		warnings = append(warnings, "No soil test provided - requirements will not be credited for existing fertility")
	}
	for code := range c.SoilTest {
		if !constants.KnownNutrient(code) {
			warnings = append(warnings, fmt.Sprintf("Soil test contains unrecognized nutrient code '%s'", code))
		}
	}
	if c.Field.PlantMonth == "" {
		warnings = append(warnings, "No planting month configured - application scheduling will be skipped")
	}

	catalog := make(map[string]bool, len(c.Fertilizers))
	for _, fertilizer := range c.Fertilizers {
		catalog[strings.ToLower(fertilizer.Name)] = true
	}
	for _, scenario := range c.Scenarios {
		if !scenario.Active {
			continue
		}
		for name := range scenario.PriceAdjustments {
			if !catalog[strings.ToLower(name)] {
				warnings = append(warnings, fmt.Sprintf("Scenario '%s' adjusts the price of unknown product '%s'", scenario.Name, name))
			}
		}
	}

	return warnings
}
