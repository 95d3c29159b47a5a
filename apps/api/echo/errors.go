package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

var kindStatus = map[core.Kind]int{
	core.KindValidation:      http.StatusBadRequest,
	core.KindUnauthenticated: http.StatusUnauthorized,
	core.KindForbidden:       http.StatusForbidden,
	core.KindNotFound:        http.StatusNotFound,
	core.KindConflict:        http.StatusConflict,
	core.KindUnavailable:     http.StatusServiceUnavailable,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, message := errorResponse(err, translator)

		if code >= http.StatusInternalServerError {
			msg := http.StatusText(code)
			logger.Error(msg, errors.Wrap(err, ctx.Request().Method+" "+ctx.Path()))
			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				logger.Error("sending error response", err)
			}
		}
	}
}

func errorResponse(err error, translator ut.Translator) (int, interface{}) {
	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		if inner, ok := herr.Internal.(*echo.HTTPError); ok {
			herr = inner
		}
		return herr.Code, herr.Message
	}

	kind := core.KindOf(err)
	code, ok := kindStatus[kind]
	if !ok {
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
	if kind != core.KindValidation {
		return code, reason(err)
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		fldErrs := make(map[string]string, len(valErrs))
		for _, vErr := range valErrs {
			fldErrs[vErr.Field()] = vErr.Translate(translator)
		}
		return code, fldErrs
	}
	var valErr *core.ValidationError
	if errors.As(err, &valErr) && len(valErr.Fields) > 0 {
		fldErrs := make(map[string]string, len(valErr.Fields))
		for _, fErr := range valErr.Fields {
			fldErrs[fErr.Field] = fErr.Error
		}
		return code, fldErrs
	}
	return code, reason(err)
}

// reason is the client-facing message: the outermost domain reason, without wrapped internals.
func reason(err error) string {
	var domErr *core.Error
	if errors.As(err, &domErr) && domErr.Reason != "" {
		return domErr.Reason
	}
	var valErr *core.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Error()
	}
	return err.Error()
}
