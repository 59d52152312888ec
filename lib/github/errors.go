// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the Actions API. Dispatch
// rejections (an input the workflow does not declare, a workflow
// without a workflow_dispatch trigger, a ref that does not exist) come
// back as 422 with the reason in Message and, for some, in Fields.
type APIError struct {
	StatusCode       int
	Message          string
	DocumentationURL string
	Fields           []FieldError
}

// FieldError is one field-level reason attached to a 422 response.
type FieldError struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func (err *APIError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "github: HTTP %d: %s", err.StatusCode, err.Message)
	for _, field := range err.Fields {
		reason := field.Message
		if reason == "" {
			reason = field.Code
		}
		fmt.Fprintf(&builder, "; %s.%s: %s", field.Resource, field.Field, reason)
	}
	return builder.String()
}

// IsNotFound reports whether err is a 404. GitHub answers 404 for a
// workflow file that does not exist on the default branch, for a run ID
// that was deleted, and for a repository the token cannot see.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusNotFound
}

// parseAPIError builds an APIError from a response body. Bodies that
// are not GitHub's JSON error shape (proxy pages, empty 5xx bodies) are
// kept verbatim as the message.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiError := &APIError{StatusCode: statusCode}

	var wire struct {
		Message          string       `json:"message"`
		DocumentationURL string       `json:"documentation_url"`
		Errors           []FieldError `json:"errors"`
	}
	if json.Unmarshal(body, &wire) == nil && wire.Message != "" {
		apiError.Message = wire.Message
		apiError.DocumentationURL = wire.DocumentationURL
		apiError.Fields = wire.Errors
	} else {
		apiError.Message = strings.TrimSpace(string(body))
	}
	return apiError
}
