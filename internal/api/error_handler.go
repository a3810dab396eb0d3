package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/citymove/identity-service/internal/core/domain"
)

// Stable machine-readable error codes. Clients branch on these, never on
// the human-readable message.
const (
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeDriverDataRequired = "DRIVER_DATA_REQUIRED"
	CodeInvitationRequired = "INVITATION_REQUIRED"
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
)

type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error     errorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to deterministic HTTP statuses and codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": {"code", "message"}, ...}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		body.Timestamp = time.Now().UTC().Format(time.RFC3339)
		body.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := CodeValidationError
		if he.Code >= http.StatusInternalServerError {
			code = CodeInternalError
		}
		switch he.Code {
		case http.StatusNotFound:
			code = CodeNotFound
		case http.StatusUnauthorized:
			code = CodeInvalidCredentials
		case http.StatusForbidden:
			code = CodeForbidden
		}
		return he.Code, envelope(code, fmt.Sprintf("%v", he.Message))
	}

	// Field-level validation reports every violated rule.
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp := envelope(CodeValidationError, "validation failed")
		resp.Error.Fields = ve.Fields
		return http.StatusBadRequest, resp
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, envelope(CodeRateLimitExceeded, err.Error())
	case errors.Is(err, domain.ErrDriverDataRequired):
		return http.StatusBadRequest, envelope(CodeDriverDataRequired, err.Error())
	case errors.Is(err, domain.ErrInvitationRequired):
		return http.StatusBadRequest, envelope(CodeInvitationRequired, err.Error())
	case errors.Is(err, domain.ErrDuplicateRole), errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, envelope(CodeUserExists, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, envelope(CodeInvalidCredentials, "invalid credentials")
	case errors.Is(err, domain.ErrAccountInactive):
		return http.StatusForbidden, envelope(CodeAccountInactive, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, envelope(CodeForbidden, "access forbidden")
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrTargetNotFound):
		return http.StatusNotFound, envelope(CodeNotFound, err.Error())
	case errors.Is(err, domain.ErrSelfTarget),
		errors.Is(err, domain.ErrRoleRequired),
		errors.Is(err, domain.ErrUnknownAction):
		return http.StatusBadRequest, envelope(CodeValidationError, err.Error())
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, envelope(CodeInternalError, "internal server error")
}

func envelope(code, msg string) errorResponse {
	return errorResponse{Error: errorBody{Code: code, Message: msg}}
}
