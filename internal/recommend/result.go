package recommend

import "encoding/json"

// ParseFailureMessage is the error text returned when the model's answer
// cannot be used.
const ParseFailureMessage = "Failed to parse AI response"

// Supplement is one recommended dietary supplement.
type Supplement struct {
	Name    string `json:"name"    validate:"required"`
	Benefit string `json:"benefit"`
	Dosage  string `json:"dosage,omitempty"`
}

// Food is one recommended food.
type Food struct {
	Name      string `json:"name"      validate:"required"`
	Benefit   string `json:"benefit"`
	Nutrients string `json:"nutrients,omitempty"`
}

// Result is either a recommendation payload or an error payload, never both.
type Result struct {
	Condition    string       `json:"condition"`
	Supplements  []Supplement `json:"supplements"    validate:"required,min=1,dive"`
	HealthyFoods []Food       `json:"healthy_foods"  validate:"required,min=1,dive"`
	FoodsToAvoid []string     `json:"foods_to_avoid"`

	// Error is set when no recommendation could be produced.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the result carries an error instead of a payload.
func (r Result) Failed() bool {
	return r.Error != ""
}

// errorResult builds the error form of a Result.
func errorResult(message string) Result {
	return Result{Error: message}
}

// MarshalJSON writes {"error": ...} for failures and the full payload
// otherwise, with foods_to_avoid always present as a list.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}

	type payload Result
	p := payload(r)
	if p.FoodsToAvoid == nil {
		p.FoodsToAvoid = []string{}
	}
	return json.Marshal(p)
}
