package server

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"crudtask/internal/models"
	"crudtask/internal/session"
	"crudtask/internal/storage/sqlite"
	"crudtask/internal/views"
)

//go:embed templates/*.html static/*.css static/*.js
var assetsFS embed.FS

// Options tunes the page behaviour.
type Options struct {
	// RegisterRedirectDelay is how long the registration success page waits
	// before returning to the login page.
	RegisterRedirectDelay time.Duration
	// NoticeDuration is how long a notice stays on screen.
	NoticeDuration time.Duration
	// CookieMaxAge bounds the lifetime of the browser cookie.
	CookieMaxAge time.Duration
}

func (o Options) withDefaults() Options {
	if o.RegisterRedirectDelay <= 0 {
		o.RegisterRedirectDelay = 1500 * time.Millisecond
	}
	if o.NoticeDuration <= 0 {
		o.NoticeDuration = 5 * time.Second
	}
	if o.CookieMaxAge <= 0 {
		o.CookieMaxAge = 30 * 24 * time.Hour
	}
	return o
}

// Server renders the task manager pages on top of the REST backend.
type Server struct {
	engine  *gin.Engine
	backend views.Backend
	store   *sqlite.Store
	logger  *slog.Logger
	opts    Options
}

// New constructs the HTTP server with routes and middleware configured.
func New(backend views.Backend, store *sqlite.Store, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz"))
	router.SetHTMLTemplate(template.Must(template.New("pages").Funcs(templateFuncs).ParseFS(assetsFS, "templates/*.html")))

	srv := &Server{
		engine:  router,
		backend: backend,
		store:   store,
		logger:  logger,
		opts:    opts.withDefaults(),
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all page, API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
	}

	pages := s.engine.Group("/", s.identifyBrowser())
	{
		entry := pages.Group("", s.requirePage(session.PageEntry))
		entry.GET("/", s.handleLoginPage)
		entry.POST("/login", s.handleLogin)
		entry.GET("/register", s.handleRegisterPage)
		entry.POST("/register", s.handleRegister)

		pages.POST("/logout", s.handleLogout)

		user := pages.Group("/tasks", s.requirePage(session.PageUserTasks))
		{
			user.GET("", s.handleUserTasks)
			user.POST("", s.handleCreateUserTask)
			user.POST("/:id/status", s.handleUpdateUserTaskStatus)
			user.POST("/:id/delete", s.handleDeleteUserTask)
		}

		dashboard := pages.Group("/dashboard", s.requirePage(session.PageDashboard))
		{
			dashboard.GET("", s.handleDashboard)
			dashboard.POST("/tasks/:id/delete", s.handleDashboardDelete)
			dashboard.GET("/export.csv", s.handleExport)
		}

		admin := pages.Group("/admin/tasks", s.requirePage(session.PageAdminTasks))
		{
			admin.GET("", s.handleAdminTasks)
			admin.POST("", s.handleAdminSave)
			admin.POST("/:id", s.handleAdminSave)
			admin.POST("/:id/delete", s.handleAdminDelete)
		}

		profile := pages.Group("/profile", s.requirePage(session.PageProfile))
		{
			profile.GET("", s.handleProfile)
			profile.POST("", s.handleProfileSave)
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID reads a task identifier path parameter.
func parseID(c *gin.Context, name string) (models.ID, bool) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return "", false
	}
	return models.ID(raw), true
}

// respondError logs the error and answers with a JSON payload for API paths
// and a plain page otherwise.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.Request.URL.Path), slog.String("error", err.Error()))
		msg = err.Error()
	}
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}
	c.Abort()
	c.HTML(status, "error.html", page{Title: http.StatusText(status), View: http.StatusText(status)})
}
