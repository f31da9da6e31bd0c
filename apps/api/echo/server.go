package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/expense"
	"github.com/trezcool/thinkwise/core/payment"
	"github.com/trezcool/thinkwise/core/report"
	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
	"github.com/trezcool/thinkwise/core/teacher"
	"github.com/trezcool/thinkwise/core/user"
)

type (
	Options struct {
		Address        string
		Debug          bool
		DisableReqLogs bool
		AllowOrigins   []string
		Logger         core.Logger

		CourseSvc  *course.Service
		TeacherSvc *teacher.Service
		StudentSvc *student.Service
		RoomSvc    *room.Service
		PaymentSvc *payment.Service
		ExpenseSvc *expense.Service
		ReportSvc  *report.Service
		UserSvc    *user.Service
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(ctx context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts       *Options
		app        *echo.Echo
		validate   *validator.Validate
		translator ut.Translator
		errors     chan error
		shutdown   chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.validate, s.translator = NewValidator()
	s.setup()
	return s
}

// NewValidator returns a validator knowing every domain validation tag.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	school.InitValidators(validate, translator)
	payment.InitValidators(validate, translator)
	expense.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV mode
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if len(s.opts.AllowOrigins) > 0 {
		s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.opts.AllowOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.translator, s.signalShutdown)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(api, jwt, s.opts.UserSvc, s.validate)
	registerUserAPI(api, jwt, s.opts.UserSvc, s.validate)

	ag := api.Group("", jwt)
	registerCourseAPI(ag, s.opts.CourseSvc, s.validate)
	registerTeacherAPI(ag, s.opts.TeacherSvc, s.validate)
	registerStudentAPI(ag, s.opts.StudentSvc, s.opts.PaymentSvc, s.validate)
	registerRoomAPI(ag, s.opts.RoomSvc, s.validate)
	registerPaymentAPI(ag, s.opts.PaymentSvc, s.validate)
	registerExpenseAPI(ag, s.opts.ExpenseSvc, s.validate)
	registerReportAPI(ag, s.opts.ReportSvc)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to ThinkWise API!")
}
