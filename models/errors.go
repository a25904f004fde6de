package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidTarget  = "INVALID_TARGET"
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeTimeout        = "AUDIT_TIMEOUT"
	ErrCodeNavigation     = "NAVIGATION_FAILED"
	ErrCodeFetch          = "FETCH_FAILED"
	ErrCodeBrowserCrash   = "BROWSER_CRASH"
	ErrCodeRenderDisabled = "RENDERER_DISABLED"
	ErrCodeUpstream       = "UPSTREAM_FAILURE"
	ErrCodeConfig         = "CONFIG_MISSING"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeInternal       = "INTERNAL_ERROR"

	// LLM-related error codes for /api/recommendations.
	ErrCodeLLMFailure     = "LLM_FAILURE"
	ErrCodeLLMAuthFailure = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited = "LLM_RATE_LIMITED"
)

// AuditError is the internal error type carrying an error code and,
// optionally, the HTTP status reported by an upstream dependency. It
// implements the error interface and supports error wrapping via Unwrap.
type AuditError struct {
	Code    string
	Message string

	// UpstreamStatus, when non-zero, is passed through to the client in
	// place of the code-derived status (page-speed and LLM upstream
	// failures report the upstream's own status).
	UpstreamStatus int

	Err error // wrapped original error
}

func (e *AuditError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuditError) Unwrap() error {
	return e.Err
}

// NewAuditError creates a new AuditError.
func NewAuditError(code, message string, err error) *AuditError {
	return &AuditError{Code: code, Message: message, Err: err}
}

// NewUpstreamError creates an AuditError carrying an upstream HTTP status.
func NewUpstreamError(code, message string, status int, err error) *AuditError {
	return &AuditError{Code: code, Message: message, UpstreamStatus: status, Err: err}
}
