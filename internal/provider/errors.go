package provider

import "fmt"

// Error codes used when the upstream response carries no error field of its
// own. Upstream codes (invalid_grant, invalid_client, ...) pass through as-is.
const (
	CodeNetworkError = "network_error"
	CodeServerError  = "server_error"
)

// FlowError reports a failed call against the identity provider. It carries
// the server's error/error_description verbatim when the response body was
// parseable, else a generic message, plus the HTTP status for classification.
// None of the operations retries; the caller must re-trigger the action.
type FlowError struct {
	Op          string // exchange, refresh, introspect, revoke, userinfo
	Code        string
	Description string
	Status      int
	err         error
}

func (e *FlowError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s failed: %s: %s", e.Op, e.Code, e.Description)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Code)
}

func (e *FlowError) Unwrap() error { return e.err }

// networkError wraps a transport-level failure for an operation.
func networkError(op string, err error) *FlowError {
	return &FlowError{
		Op:          op,
		Code:        CodeNetworkError,
		Description: err.Error(),
		err:         err,
	}
}
