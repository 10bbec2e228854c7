package health

import (
	"sort"
	"strconv"
	"strings"
)

// Recognized filter keys. The validator and the recipe search adapter consume
// exactly this vocabulary.
const (
	FilterMaxSugar        = "maxSugar"
	FilterMinFiber        = "minFiber"
	FilterMaxCarbs        = "maxCarbs"
	FilterMaxSodium       = "maxSodium"
	FilterMaxSaturatedFat = "maxSaturatedFat"
	FilterMinProtein      = "minProtein"
	FilterMaxProtein      = "maxProtein"
	FilterMinCalories     = "minCalories"
	FilterMaxCalories     = "maxCalories"
	FilterMaxCholesterol  = "maxCholesterol"
	FilterIntolerances    = "intolerances"
	FilterDiet            = "diet"
)

// FilterSet maps filter keys to a numeric bound (float64) or a string value
// (intolerances, diet). Built fresh per request and never mutated afterwards.
type FilterSet map[string]interface{}

// conditionBounds is the fixed condition-to-bounds table. Conditions are pure
// data; bounds are grams or milligrams per serving depending on the nutrient.
var conditionBounds = map[string]map[string]float64{
	ConditionDiabetes: {
		FilterMaxSugar: 5,
		FilterMinFiber: 5,
		FilterMaxCarbs: 45,
	},
	ConditionHypertension: {
		FilterMaxSodium:       400,
		FilterMaxSaturatedFat: 5,
	},
	ConditionMuscleBuild: {
		FilterMinProtein:  30,
		FilterMinCalories: 300,
	},
	ConditionHeartDisease: {
		FilterMaxCholesterol:  50,
		FilterMaxSaturatedFat: 3,
		FilterMaxSodium:       400,
	},
	ConditionWeightLoss: {
		FilterMaxCalories: 400,
		FilterMinProtein:  20,
		FilterMinFiber:    5,
	},
	ConditionKidneyDisease: {
		FilterMaxProtein: 15,
		FilterMaxSodium:  300,
	},
}

// BuildFilters translates a user profile into recipe search filters.
// Pure function: the same profile always yields the same FilterSet.
// Only one condition applies at a time; an unknown or empty condition
// contributes nothing. Intolerance and diet vocabulary is not validated
// here, the downstream recipe service is authoritative.
func BuildFilters(profile Profile) FilterSet {
	filters := FilterSet{}

	if bounds, ok := conditionBounds[profile.Condition]; ok {
		for key, limit := range bounds {
			filters[key] = limit
		}
	}

	if len(profile.Intolerances) > 0 {
		filters[FilterIntolerances] = strings.Join(profile.Intolerances, ",")
	}

	if profile.Diet != "" {
		filters[FilterDiet] = profile.Diet
	}

	return filters
}

// Bound returns the numeric bound for a filter key, if present.
func (fs FilterSet) Bound(key string) (float64, bool) {
	v, ok := fs[key].(float64)
	return v, ok
}

// QueryValues renders the filter set as string query parameters, keys sorted
// for stable request URLs.
func (fs FilterSet) QueryValues() map[string]string {
	params := make(map[string]string, len(fs))
	for key, value := range fs {
		switch v := value.(type) {
		case float64:
			params[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			params[key] = v
		}
	}
	return params
}

// Keys returns the filter keys in sorted order.
func (fs FilterSet) Keys() []string {
	keys := make([]string, 0, len(fs))
	for key := range fs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
