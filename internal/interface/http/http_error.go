package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/taskhub/pkg/errors"
)

const (
	msgUnauthorized = "Não autorizado"
	msgInternal     = "Erro interno do servidor"
	msgInvalidBody  = "Os dados fornecidos são inválidos."
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
	Fields  map[string][]string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromAppError maps a domain error onto its HTTP status. Upstream failures
// get an opaque message; the cause is kept for logging.
func fromAppError(err error) *HTTPError {
	appErr := apperrors.As(err)
	if appErr == nil {
		return NewHTTPError(http.StatusInternalServerError, apperrors.CodeUpstream, msgInternal, err)
	}
	switch appErr.Code {
	case apperrors.CodeValidation:
		httpErr := NewHTTPError(http.StatusUnprocessableEntity, appErr.Code, appErr.Message, err)
		httpErr.Fields = appErr.Fields
		return httpErr
	case apperrors.CodeAuthentication:
		return NewHTTPError(http.StatusUnauthorized, appErr.Code, appErr.Message, err)
	case apperrors.CodeNotFound:
		return NewHTTPError(http.StatusNotFound, appErr.Code, appErr.Message, err)
	default:
		return NewHTTPError(http.StatusInternalServerError, apperrors.CodeUpstream, msgInternal, err)
	}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return fromAppError(err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func unauthorized(err error) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, apperrors.CodeAuthentication, msgUnauthorized, err)
}

func invalidBody(err error) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, apperrors.CodeValidation, msgInvalidBody, err)
}
