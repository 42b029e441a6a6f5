package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies API failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindClient
	KindAuthRequired
	KindForbidden
	KindNotFound
	KindConflict
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_unavailable"
	case KindClient:
		return "client_error"
	case KindAuthRequired:
		return "auth_required"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server_error"
	default:
		return "unknown"
	}
}

// Error is a failed API call. Status is zero for transport failures.
type Error struct {
	Kind    Kind
	Status  int
	Path    string
	Message string
	// Fields holds per-field validation messages from 400/422 responses.
	Fields map[string]string

	cause error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api %s: %s", e.Path, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindForStatus maps an HTTP status onto the error taxonomy.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindClient
	case status == http.StatusUnauthorized:
		return KindAuthRequired
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= 500:
		return KindServer
	case status >= 400:
		return KindClient
	default:
		return KindUnknown
	}
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func errorFromResponse(path string, resp *http.Response) *Error {
	apiErr := &Error{
		Kind:   KindForStatus(resp.StatusCode),
		Status: resp.StatusCode,
		Path:   path,
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(body.Error)
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(body.Message)
	}
	if len(body.Fields) > 0 {
		apiErr.Fields = body.Fields
	}
	return apiErr
}

// KindOf reports the taxonomy of err, or KindUnknown for non-API errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsAuth reports whether err is an AuthRequired or Forbidden failure.
func IsAuth(err error) bool {
	kind := KindOf(err)
	return kind == KindAuthRequired || kind == KindForbidden
}

// IsCancelled reports whether err stems from a cancelled or superseded call.
// Such errors never reach the user.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Describe renders err as an inline message for the UI.
func Describe(err error) string {
	if err == nil || IsCancelled(err) {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return "Something went wrong. Please try again."
	}
	switch apiErr.Kind {
	case KindNetwork:
		return "Cannot reach the server. Check your connection and retry."
	case KindClient:
		if len(apiErr.Fields) > 0 {
			keys := make([]string, 0, len(apiErr.Fields))
			for k := range apiErr.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, k+": "+apiErr.Fields[k])
			}
			return "Please fix: " + strings.Join(parts, "; ")
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "The request was rejected. Check the entered values."
	case KindAuthRequired:
		return "Please sign in to continue."
	case KindForbidden:
		return "You do not have access to this."
	case KindNotFound:
		return "Not found. It may have been removed."
	case KindConflict:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "This conflicts with the current state. Refresh and retry."
	case KindServer:
		return "The server had a problem. Please retry shortly."
	default:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Something went wrong. Please try again."
	}
}
