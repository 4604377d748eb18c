package api

import (
	"encoding/json"
	"strings"
)

// RootResponse is returned by GET /.
type RootResponse struct {
	Message string `json:"message"`
	Usage   string `json:"usage"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// UploadResponse is returned by POST /upload once the image is queued.
type UploadResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	TaskID    string `json:"task_id"`
	StatusURL string `json:"status_url"`
}

// RecommendRequest is the validated form of a POST /recommend body.
type RecommendRequest struct {
	Condition string
	Allergies []string
}

// requestError is a validation failure whose message is safe to return.
type requestError struct {
	message string
}

func (e *requestError) Error() string { return e.message }

// recommendBody is a decoded POST /recommend body. Fields stay raw so a
// missing key can be told apart from an explicit null.
type recommendBody struct {
	SkinDisease json.RawMessage `json:"skin_disease"`
	Allergies   json.RawMessage `json:"allergies"`

	request RecommendRequest
}

// Validate checks the body and fills in the parsed request. Allergies may be
// a non-empty string or a non-empty list of strings; a string is kept whole.
func (b *recommendBody) Validate() error {
	if b.SkinDisease == nil || b.Allergies == nil {
		return &requestError{MsgMissingFields}
	}

	var condition string
	if err := json.Unmarshal(b.SkinDisease, &condition); err != nil || strings.TrimSpace(condition) == "" {
		return &requestError{MsgEmptyCondition}
	}

	var raw any
	if err := json.Unmarshal(b.Allergies, &raw); err != nil {
		return &requestError{MsgInvalidAllergies}
	}

	var allergies []string
	switch v := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return &requestError{MsgEmptyAllergies}
		}
		allergies = []string{trimmed}
	case []any:
		if len(v) == 0 {
			return &requestError{MsgEmptyAllergies}
		}
		allergies = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return &requestError{MsgInvalidAllergies}
			}
			allergies = append(allergies, s)
		}
	default:
		return &requestError{MsgInvalidAllergies}
	}

	b.request = RecommendRequest{Condition: condition, Allergies: allergies}
	return nil
}
