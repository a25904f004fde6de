package models

import (
	"errors"
	"testing"
)

func TestValidateTarget_Accepted(t *testing.T) {
	tests := []string{
		"http://x",
		"https://x",
		"https://example.com/path?query=1",
		"  https://example.com  ",
	}

	for _, raw := range tests {
		u, err := ValidateTarget(raw)
		if err != nil {
			t.Errorf("ValidateTarget(%q) unexpected error: %v", raw, err)
			continue
		}
		if u.Host == "" {
			t.Errorf("ValidateTarget(%q) returned URL without host", raw)
		}
	}
}

func TestValidateTarget_Rejected(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"ftp://x",
		"not a url",
		"javascript:alert(1)",
		"//missing-scheme.example",
		"https://",
	}

	for _, raw := range tests {
		_, err := ValidateTarget(raw)
		if err == nil {
			t.Errorf("ValidateTarget(%q) expected error, got nil", raw)
			continue
		}

		var auditErr *AuditError
		if !errors.As(err, &auditErr) {
			t.Errorf("ValidateTarget(%q) error is not an AuditError: %v", raw, err)
			continue
		}
		if auditErr.Code != ErrCodeInvalidTarget {
			t.Errorf("ValidateTarget(%q) code = %s, want %s", raw, auditErr.Code, ErrCodeInvalidTarget)
		}
	}
}
