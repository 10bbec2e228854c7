package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/myboiiPrime/AI-food/internal/domain/health"
	"github.com/myboiiPrime/AI-food/internal/domain/nutrition"
)

// ValidationResult reports whether a recipe meets a user's health bounds.
// Valid is true iff Warnings is empty. This is a pure re-check: it reports,
// it never rejects or filters.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
}

// boundCheck resolves a filter key to a canonical nutrient and a comparison
// direction. Order matters: warnings are emitted in this order.
type boundCheck struct {
	filterKey string
	nutrient  string
	upper     bool // violation when actual > bound; otherwise actual < bound
}

// Both minCalories and maxCalories resolve to the same nutrient, so a
// profile carrying both checks the calories reading once per direction.
// maxProtein narrows the recipe search only and is not re-checked here.
var boundChecks = []boundCheck{
	{health.FilterMaxSugar, nutrition.NutrientSugar, true},
	{health.FilterMinFiber, nutrition.NutrientFiber, false},
	{health.FilterMaxCarbs, nutrition.NutrientCarbohydrates, true},
	{health.FilterMaxSodium, nutrition.NutrientSodium, true},
	{health.FilterMaxSaturatedFat, nutrition.NutrientSaturatedFat, true},
	{health.FilterMinProtein, nutrition.NutrientProtein, false},
	{health.FilterMaxCholesterol, nutrition.NutrientCholesterol, true},
	{health.FilterMaxCalories, nutrition.NutrientCalories, true},
	{health.FilterMinCalories, nutrition.NutrientCalories, false},
}

// Validate re-checks a recipe's nutrient readings against the filters derived
// from the profile. The filter set is recomputed on every call so validator
// and search always agree, even when invoked independently.
//
// Missing nutrient readings default to zero: a recipe missing a nutrient
// violates every min bound and passes every max bound.
func Validate(nutrients []nutrition.Nutrient, profile health.Profile) ValidationResult {
	filters := health.BuildFilters(profile)
	amounts := nutrition.AmountsByName(nutrients)

	var warnings []string
	for _, check := range boundChecks {
		bound, ok := filters.Bound(check.filterKey)
		if !ok {
			continue
		}

		actual := amounts[check.nutrient]
		switch {
		case check.upper && actual > bound:
			warnings = append(warnings, fmt.Sprintf("%s: %sg exceeds limit of %sg",
				strings.Title(check.nutrient), formatAmount(actual), formatAmount(bound)))
		case !check.upper && actual < bound:
			warnings = append(warnings, fmt.Sprintf("%s: %sg below minimum of %sg",
				strings.Title(check.nutrient), formatAmount(actual), formatAmount(bound)))
		}
	}

	return ValidationResult{
		Valid:    len(warnings) == 0,
		Warnings: warnings,
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
