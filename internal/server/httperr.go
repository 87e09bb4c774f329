package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"smartdisc/backend/internal/apperr"
)

// errorBody is the JSON error envelope: {"error": {"code", "message"}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusForKind maps an error kind to its HTTP status.
func statusForKind(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindTransaction:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// codeForKind maps an error kind to the wire error code.
func codeForKind(k apperr.Kind) string {
	switch k {
	case apperr.KindValidation:
		return "VALIDATION_ERROR"
	case apperr.KindNotFound:
		return "NOT_FOUND"
	case apperr.KindConflict:
		return "CONFLICT"
	case apperr.KindUnauthorized:
		return "UNAUTHORIZED"
	case apperr.KindForbidden:
		return "FORBIDDEN"
	case apperr.KindTransaction:
		return "TRANSACTION_FAILED"
	default:
		return "INTERNAL"
	}
}

// respondError writes err as the JSON error envelope. Untyped errors collapse
// to a generic internal error; store error text never reaches the wire.
func respondError(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	return c.JSON(statusForKind(kind), errorBody{Error: errorDetail{
		Code:    codeForKind(kind),
		Message: apperr.MessageOf(err),
	}})
}

// httpErrorHandler turns unhandled errors, unknown routes and bad methods
// into the same envelope the handlers use.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := "INTERNAL"
		msg := http.StatusText(he.Code)
		switch he.Code {
		case http.StatusNotFound:
			code = "NOT_FOUND"
			msg = "route not found"
		case http.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
			msg = "method not allowed"
		case http.StatusBadRequest:
			code = "VALIDATION_ERROR"
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		_ = c.JSON(he.Code, errorBody{Error: errorDetail{Code: code, Message: msg}})
		return
	}
	_ = respondError(c, err)
}
