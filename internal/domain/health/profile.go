// Package health contains the health-constraint translation logic.
// All decision-making about health conditions lives here, never in clients.
package health

// Recognized health conditions. Any other value yields no condition-derived
// bounds; the mapper never fails on unknown input.
const (
	ConditionDiabetes      = "diabetes"
	ConditionHypertension  = "hypertension"
	ConditionMuscleBuild   = "muscle_build"
	ConditionHeartDisease  = "heart_disease"
	ConditionWeightLoss    = "weight_loss"
	ConditionKidneyDisease = "kidney_disease"
)

// Profile describes a user's health constraints. It is supplied per request
// and never persisted.
type Profile struct {
	Condition    string   `json:"condition,omitempty"`
	Intolerances []string `json:"intolerances,omitempty"`
	Diet         string   `json:"diet,omitempty"`
}
