package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/pagepulse/models"
)

// errorBody is the uniform error payload.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError maps an AuditError to the right HTTP status and writes the
// structured error body. An upstream status on the error wins over the
// code-derived status so clients see the dependency's own answer.
func respondError(c *gin.Context, err error) {
	var auditErr *models.AuditError
	if !errors.As(err, &auditErr) {
		auditErr = models.NewAuditError(models.ErrCodeInternal, err.Error(), err)
	}

	status := mapErrorToStatus(auditErr)
	if auditErr.UpstreamStatus != 0 {
		status = auditErr.UpstreamStatus
	}

	c.JSON(status, errorBody{Error: auditErr.Message, Code: auditErr.Code})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.AuditError) int {
	switch e.Code {
	case models.ErrCodeInvalidTarget, models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeFetch, models.ErrCodeUpstream:
		return http.StatusBadGateway // 502
	case models.ErrCodeRenderDisabled:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeConfig:
		return http.StatusInternalServerError // 500
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeLLMAuthFailure:
		return http.StatusUnauthorized // 401
	case models.ErrCodeLLMRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeLLMFailure:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

// halfError converts an error to the embedded form used by partial results.
func halfError(err error) *models.HalfError {
	var auditErr *models.AuditError
	if errors.As(err, &auditErr) {
		return &models.HalfError{Error: auditErr.Message, Code: auditErr.Code}
	}
	return &models.HalfError{Error: err.Error()}
}

// resolveTarget picks the request's url parameter or the configured default,
// then validates it.
func resolveTarget(c *gin.Context, defaultTarget string) (string, error) {
	raw := c.Query("url")
	if raw == "" {
		raw = defaultTarget
	}
	if raw == "" {
		return "", models.NewAuditError(models.ErrCodeInvalidTarget,
			"url parameter is required (no default target configured)", nil)
	}
	u, err := models.ValidateTarget(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
