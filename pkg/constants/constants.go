// Package constants provides shared constants for the agroplan application.
package constants

// DateTimeLayout is the format expected for months in config files and is
// also the output date format for application passes.
const DateTimeLayout = "2006-01"

// Agronomic constants
const (
	// PoundsPerTon converts per-ton product prices into per-pound costs.
	PoundsPerTon = 2000.0

	// DecimalPrecision is the precision for rate and cost rounding (2 decimal places)
	DecimalPrecision = 100

	// CostTolerance is the tolerance for cost comparisons (1 cent)
	CostTolerance = 0.01

	// PercentageMultiplier is used for nutrient content conversions
	PercentageMultiplier = 100.0

	// LeachingRainInches is the monthly rainfall above which nitrogen
	// applications are considered at risk of leaching.
	LeachingRainInches = 6.0
)

// Nutrient codes recognized in requirements, soil tests, and product analyses.
const (
	NutrientNitrogen   = "N"
	NutrientPhosphorus = "P"
	NutrientPotassium  = "K"
	NutrientSulfur     = "S"
	NutrientCalcium    = "Ca"
	NutrientMagnesium  = "Mg"
	NutrientZinc       = "Zn"
	NutrientBoron      = "B"
	NutrientIron       = "Fe"
	NutrientManganese  = "Mn"
	NutrientCopper     = "Cu"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatYAML is the machine-readable report format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"
)

// Application window constants
const (
	// WindowPrePlant is the application window before planting
	WindowPrePlant = "pre-plant"

	// WindowAtPlant is the application window at planting
	WindowAtPlant = "at-plant"

	// WindowSideDress is the in-season application window
	WindowSideDress = "side-dress"
)
