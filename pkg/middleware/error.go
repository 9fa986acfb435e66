package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/context"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Error renders every error in the uniform envelope. Taxonomy errors keep
// their code and meta; anything untagged becomes INTERNAL_ERROR so backend
// details never leak to callers.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		logger.WithContext(ctx).WithError(err).Error("api is returning an error")
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		code := string(apperrors.CodeInternal)
		message := "Internal Server Error"
		meta := map[string]any{}

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
			code = codeForStatus(status)
		}

		if httperror.IsHTTPError(err) {
			httperr := httperror.ToHTTPError(err)
			status = httperror.GetStatusCode(err)
			message = httperr.Error()
			meta = httperr.Meta
			code = codeForStatus(status)
			if c, ok := meta["code"].(string); ok {
				code = c
			}
		}

		if e, ok := apperrors.As(err); ok {
			status = apperrors.HTTPStatus(e.Code)
			code = string(e.Code)
			message = e.Message
			meta = e.Meta
		}

		if meta == nil {
			meta = map[string]any{}
		}
		if requestID := context.GetRequestID(ctx); requestID != "" {
			meta["request_id"] = requestID
		}
		if traceID := tracing.GetTraceID(ctx); traceID != "" {
			meta["trace_id"] = traceID
			meta["span_id"] = tracing.GetSpanID(ctx)
		}

		_ = c.JSON(status, models.Fail(code, message, meta))
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(apperrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(apperrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(apperrors.CodeForbidden)
	case http.StatusNotFound:
		return string(apperrors.CodeNotFound)
	case http.StatusConflict:
		return string(apperrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(apperrors.CodeRateLimited)
	case http.StatusNotImplemented:
		return string(apperrors.CodeNotImplemented)
	case http.StatusServiceUnavailable:
		return string(apperrors.CodeProvider)
	default:
		return string(apperrors.CodeInternal)
	}
}
