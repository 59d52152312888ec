// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "message only",
			err:      &APIError{StatusCode: 404, Message: "Not Found"},
			expected: "github: HTTP 404: Not Found",
		},
		{
			name: "field message",
			err: &APIError{
				StatusCode: 422,
				Message:    "Validation Failed",
				Fields:     []FieldError{{Resource: "Workflow", Field: "inputs", Message: "is not defined"}},
			},
			expected: "github: HTTP 422: Validation Failed; Workflow.inputs: is not defined",
		},
		{
			name: "field code when no message",
			err: &APIError{
				StatusCode: 422,
				Message:    "Validation Failed",
				Fields: []FieldError{
					{Resource: "Workflow", Field: "inputs", Code: "missing_field"},
					{Resource: "Workflow", Field: "ref", Message: "is not a branch"},
				},
			},
			expected: "github: HTTP 422: Validation Failed; Workflow.inputs: missing_field; Workflow.ref: is not a branch",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.err.Error(); got != test.expected {
				t.Errorf("got %q, want %q", got, test.expected)
			}
		})
	}
}

func TestParseAPIError(t *testing.T) {
	parsed := parseAPIError(http.StatusUnprocessableEntity,
		[]byte(`{"message":"Workflow does not have 'workflow_dispatch' trigger","documentation_url":"https://docs.github.com/rest"}`))
	if parsed.Message != "Workflow does not have 'workflow_dispatch' trigger" {
		t.Errorf("Message = %q", parsed.Message)
	}
	if parsed.DocumentationURL != "https://docs.github.com/rest" {
		t.Errorf("DocumentationURL = %q", parsed.DocumentationURL)
	}

	raw := parseAPIError(http.StatusBadGateway, []byte("<html>bad gateway</html>\n"))
	if raw.Message != "<html>bad gateway</html>" {
		t.Errorf("non-JSON body Message = %q", raw.Message)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&APIError{StatusCode: 404, Message: "Not Found"}) {
		t.Error("expected IsNotFound for 404")
	}
	if IsNotFound(&APIError{StatusCode: 403, Message: "Forbidden"}) {
		t.Error("unexpected IsNotFound for 403")
	}
	if IsNotFound(fmt.Errorf("network error")) {
		t.Error("unexpected IsNotFound for non-APIError")
	}
	wrapped := fmt.Errorf("listing runs: %w", &APIError{StatusCode: 404})
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should see through fmt.Errorf wrapping")
	}
}
