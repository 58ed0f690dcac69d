package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// EmailBodyExtractor peeks at the JSON body of a POST and pulls out the
// "email" field for rate limiting, restoring the body for the handler.
// Non-POST requests and unparsable bodies yield an empty key, which the
// limiter treats as unlimited.
func EmailBodyExtractor(r *http.Request) string {
	if r.Method != http.MethodPost || r.Body == nil {
		return ""
	}

	body, err := readAndRestoreBody(r)
	if err != nil {
		return ""
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(payload.Email))
}
