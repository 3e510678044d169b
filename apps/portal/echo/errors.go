package echoportal

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ripoti/core"
	"github.com/trezcool/ripoti/services/reportapi"
)

// newPortalHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to render our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func (s *Server) newPortalHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		// a rejected token means the remote session is gone; back to the login page
		if reportapi.IsAuth(errors.Cause(err)) {
			s.sessions.clear(ctx)
			flashError(ctx, "Session expired. Please log in again.")
			if !ctx.Response().Committed {
				_ = ctx.Redirect(http.StatusFound, "/")
			}
			return
		}

		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			msgs := make([]string, 0, len(origErr))
			for _, vErr := range origErr {
				msgs = append(msgs, vErr.Field()+" "+vErr.Translate(core.Translator))
			}
			code = http.StatusBadRequest
			message = strings.Join(msgs, "; ")
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)

			args := []interface{}{errors.Wrap(err, message)}
			if sess, sErr := getContextSession(ctx); sErr == nil {
				args = append(args, sess)
			}
			logger.Error(message, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.Render(code, "error", s.view(ctx, page{
					"Title":   http.StatusText(code),
					"Message": message,
				}))
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
