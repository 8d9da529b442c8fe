package constants

import "strings"

// canonicalNutrients maps lowercased nutrient codes to their canonical form.
// Viper lowercases map keys when unmarshalling YAML, so lookups must be
// case-insensitive.
var canonicalNutrients = map[string]string{
	"n":  NutrientNitrogen,
	"p":  NutrientPhosphorus,
	"k":  NutrientPotassium,
	"s":  NutrientSulfur,
	"ca": NutrientCalcium,
	"mg": NutrientMagnesium,
	"zn": NutrientZinc,
	"b":  NutrientBoron,
	"fe": NutrientIron,
	"mn": NutrientManganese,
	"cu": NutrientCopper,
}

// CanonicalNutrient returns the canonical form of a nutrient code and whether
// the code is recognized.
func CanonicalNutrient(code string) (string, bool) {
	canonical, ok := canonicalNutrients[strings.ToLower(strings.TrimSpace(code))]
	return canonical, ok
}

// KnownNutrient reports whether the given code is a recognized nutrient code.
func KnownNutrient(code string) bool {
	_, ok := CanonicalNutrient(code)
	return ok
}
