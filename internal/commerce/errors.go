package commerce

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FallbackErrorMessage is used when the upstream body carries no usable
// description.
const FallbackErrorMessage = "Ein Fehler ist aufgetreten"

// APIError reports a non-success upstream status. Description is best-effort
// human readable, sourced from the response body when present.
type APIError struct {
	Status      int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("commerce: status %d: %s", e.Status, e.Description)
}

// apiErrorFromBody builds an APIError from an upstream failure body. The cart
// API reports failures either as {"description": "..."} (add) or
// {"errors": ...} (change), where errors may be a string or a field map.
func apiErrorFromBody(status int, body io.Reader) *APIError {
	desc := FallbackErrorMessage
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))

	var payload struct {
		Description string          `json:"description"`
		Message     string          `json:"message"`
		Errors      json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch {
		case strings.TrimSpace(payload.Description) != "":
			desc = strings.TrimSpace(payload.Description)
		case strings.TrimSpace(payload.Message) != "":
			desc = strings.TrimSpace(payload.Message)
		case len(payload.Errors) > 0:
			if s := flattenErrors(payload.Errors); s != "" {
				desc = s
			}
		}
	}
	return &APIError{Status: status, Description: desc}
}

func flattenErrors(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var m map[string][]string
	if err := json.Unmarshal(raw, &m); err == nil {
		parts := make([]string, 0, len(m))
		for _, msgs := range m {
			parts = append(parts, msgs...)
		}
		return strings.TrimSpace(strings.Join(parts, ", "))
	}
	return ""
}
