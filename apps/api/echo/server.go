package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/school"
)

type (
	Deps struct {
		Conf         *core.Config
		Logger       core.Logger
		SchoolSvc    *school.Service
		GradebookSvc *gradebook.Service
		Validate     *validator.Validate
		Translator   ut.Translator
		// Gatherer backs /metrics; prometheus.DefaultGatherer if nil.
		Gatherer prometheus.Gatherer
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		addr     string
		deps     *Deps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

// NewServer builds the API. `shutdown` receives a signal when the server must stop;
// a nil channel is replaced by a private one.
func NewServer(addr string, shutdown chan os.Signal, deps *Deps) Server {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
	}
	if deps.Conf == nil {
		deps.Conf = &core.Config{TestMode: true}
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	s := &server{
		addr:     addr,
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !(conf.Server.DisableReqLogs || conf.TestMode) {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if len(conf.Server.AllowOrigins) > 0 {
		s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: conf.Server.AllowOrigins}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))

	g := s.app.Group("/api")
	g.GET("/health", s.health)

	registerSchoolAPI(g, s.deps.SchoolSvc, s.deps.GradebookSvc, s.deps.Validate)
	registerGradebookAPI(g, s.deps.GradebookSvc, s.deps.SchoolSvc, s.deps.Validate, conf.Grading)
	registerCSVAPI(g, s.deps.GradebookSvc, s.deps.SchoolSvc)
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *server) Start() {
	if err := s.app.Start(s.addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to SmartGrades API!")
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

func (s *server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.deps.Conf.Build,
	})
}
