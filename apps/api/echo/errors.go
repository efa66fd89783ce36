package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, academy.ErrInvalidCredentials.Error())
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// errorEnvelope is the envelope of failed requests. Fields details validation failures.
type errorEnvelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code   int
			msg    string
			fields map[string]string
		)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				msg = "missing or malformed jwt"
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		case validator.ValidationErrors:
			vErr := core.TranslateValidationErrors(origErr, translator).(*core.ValidationError)
			code, msg, fields = http.StatusBadRequest, vErr.Error(), vErr.FieldMap()
		case *core.ValidationError:
			code, msg = http.StatusBadRequest, origErr.Error()
			if len(origErr.Fields) > 0 {
				fields = origErr.FieldMap()
			}
		case *academy.NotFoundError:
			code, msg = http.StatusNotFound, origErr.Error()
		case *academy.ConflictError:
			code, msg = http.StatusConflict, origErr.Error()
		default:
			if origErr == academy.ErrEmailExists {
				code, msg = http.StatusBadRequest, origErr.Error()
				fields = map[string]string{"email": origErr.Error()}
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg = http.StatusText(http.StatusInternalServerError)

			var usr academy.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID, _ = academy.ParseID(claims.Subject)
				usr.Name = claims.Name
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
			if ctx.Echo().Debug {
				msg = err.Error()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, errorEnvelope{Error: msg, Fields: fields})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
