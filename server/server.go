// Package server - HTTP interface: scanner UI, analysis API, history, auth.
package server

import (
	"context"
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/makoyyylouie/tomato-ai/pipeline"
	"github.com/makoyyylouie/tomato-ai/store"
)

//go:embed views/*.html
var viewsFS embed.FS

// Analyzer runs one image analysis. Satisfied by pipeline.Orchestrator and
// stubbed in tests.
type Analyzer interface {
	Ready() bool
	Analyze(ctx context.Context, data []byte, mode pipeline.Mode, threshold float32) (*pipeline.Result, error)
}

// TemplateRenderer implements echo.Renderer over the embedded views.
type TemplateRenderer struct {
	templates *template.Template
}

// Render implements the echo.Renderer interface.
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// Server wires the HTTP routes to the stores and the analysis pipeline.
type Server struct {
	Echo     *echo.Echo
	accounts *store.AccountStore
	history  *store.HistoryStore
	analyzer Analyzer
	cookies  *sessions.CookieStore
	scansDir string
	logger   *slog.Logger
}

// New creates a Server with all routes registered.
//
// Arguments:
//   - accounts: The account store.
//   - history: The scan history store.
//   - analyzer: The analysis pipeline.
//   - sessionSecret: Key used to sign session cookies.
//   - scansDir: Directory holding saved scan images.
//   - logger: Structured logger.
func New(accounts *store.AccountStore, history *store.HistoryStore, analyzer Analyzer, sessionSecret, scansDir string, logger *slog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(viewsFS, "views/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = &TemplateRenderer{templates: tmpl}
	e.Use(middleware.Recover())

	cookies := sessions.NewCookieStore([]byte(sessionSecret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		Echo:     e,
		accounts: accounts,
		history:  history,
		analyzer: analyzer,
		cookies:  cookies,
		scansDir: scansDir,
		logger:   logger,
	}
	s.routes()
	return s, nil
}

// routes registers every endpoint.
func (s *Server) routes() {
	e := s.Echo
	e.GET("/", s.handleIndex)
	e.POST("/register", s.handleRegister)
	e.POST("/login", s.handleLogin)
	e.POST("/logout", s.handleLogout)

	e.POST("/analyze", s.requireLogin(s.handleAnalyze))
	e.GET("/history", s.requireLogin(s.handleHistory))
	e.DELETE("/history/:scanID", s.requireLogin(s.handleDeleteScan))
	e.GET("/scans/*", s.requireLogin(s.handleScanImage))
	e.GET("/profile", s.requireLogin(s.handleProfile))
}

// Start serves HTTP until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server starting", "addr", addr)
	return s.Echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
