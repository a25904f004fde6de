package models

import (
	"net/url"
	"strings"
)

// ValidateTarget parses and validates an audit target URL. Only absolute
// http/https URLs with a host are accepted. Validation happens before any
// network call is made, so a rejected target never leaves the process.
func ValidateTarget(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, NewAuditError(ErrCodeInvalidTarget, "missing url parameter", nil)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, NewAuditError(ErrCodeInvalidTarget, "url is not parseable", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, NewAuditError(ErrCodeInvalidTarget, "url scheme must be http or https", nil)
	}
	if u.Host == "" {
		return nil, NewAuditError(ErrCodeInvalidTarget, "url has no host", nil)
	}
	return u, nil
}
