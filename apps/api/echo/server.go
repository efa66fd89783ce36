// Package echoapi is a development server for the academy REST API. Every response is wrapped in
// an academy.Envelope; the console and its tests run against it.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Repo           academy.Repository
		MailSvc        core.EmailService
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		jwt      middleware.JWTConfig
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.jwt = jwtConfig(deps.Conf)
	s.setup()
	return s
}

func (s *Server) setup() {
	debug := s.deps.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || s.deps.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.RequestID())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.HideBanner = true

	s.app.GET("/", home)

	jwt := middleware.JWTWithConfig(s.jwt)
	api := academyAPI{
		conf:       s.deps.Conf,
		repo:       s.deps.Repo,
		mailSvc:    s.deps.MailSvc,
		validate:   s.deps.Validate,
		translator: s.deps.Translator,
	}
	api.registerAuth(s.app.Group("/auth"), jwt)

	admin := s.app.Group("/admin", jwt, roleMiddleware())
	api.registerStreams(admin)
	api.registerSessions(admin)
	api.registerAssignments(admin)
	api.registerPeople(admin)
	api.registerAttendance(admin)
	api.registerAnnouncements(admin)

	// instructors may grade too
	s.app.POST("/submissions/:id/grade", api.gradeSubmission, jwt, roleMiddleware(academy.RoleInstructor))
}

func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors receives the error that stopped the server unexpectedly.
func (s *Server) Errors() <-chan error { return s.errors }

// ShutdownSignal receives interrupt & terminate signals, and unrecoverable handler errors.
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }

func (s *Server) Close() error { return s.app.Close() }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, academy.OK("Welcome to the Academia API!"))
}
