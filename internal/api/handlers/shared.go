package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rvermeulen/portfolio-ledger/internal/validation"
)

// parseJSON decodes a request body into the given request type.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	if r.Body == nil {
		return req, fmt.Errorf("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

// parseOptionalDate reads a date query parameter, returning nil when absent.
func parseOptionalDate(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	t, err := validation.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
