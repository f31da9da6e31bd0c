package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/expense"
	"github.com/trezcool/thinkwise/core/matcher"
	"github.com/trezcool/thinkwise/core/payment"
	"github.com/trezcool/thinkwise/core/report"
	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/student"
	"github.com/trezcool/thinkwise/core/teacher"
	"github.com/trezcool/thinkwise/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// sentinelCodes maps the domain sentinel errors to their HTTP status.
var sentinelCodes = map[error]int{
	course.ErrNotFound:       http.StatusNotFound,
	course.ErrNotEnrolled:    http.StatusNotFound,
	course.ErrCourseInactive: http.StatusConflict,
	teacher.ErrNotFound:      http.StatusNotFound,
	student.ErrNotFound:      http.StatusNotFound,
	room.ErrNotFound:         http.StatusNotFound,
	payment.ErrNotFound:      http.StatusNotFound,
	expense.ErrNotFound:      http.StatusNotFound,
	user.ErrNotFound:         http.StatusNotFound,
	report.ErrInvalidPeriod:  http.StatusBadRequest,
}

func assignmentErrorCode(kind matcher.Kind) int {
	if kind == matcher.ScheduleIncompatible {
		return http.StatusUnprocessableEntity
	}
	return http.StatusConflict
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *matcher.AssignmentError:
			code = assignmentErrorCode(origErr.Kind)
			message = origErr.Error()
		default:
			if c, ok := sentinelCodes[cause]; ok {
				code = c
				message = cause.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID, _ = strconv.Atoi(claims.Subject)
				usr.Username = claims.Username
				usr.Email = claims.Email
			}
			if logger != nil {
				logger.Error(msg, errors.Wrap(err, msg), usr)
			}

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
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
