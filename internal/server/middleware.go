package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crudtask/internal/models"
	"crudtask/internal/session"
)

// BrowserCookie names the cookie that identifies a browser profile.
const BrowserCookie = "crudtask_browser"

const (
	ctxSessions = "crudtask.sessions"
	ctxSession  = "crudtask.session"
)

// identifyBrowser attaches the session manager of the calling browser,
// issuing a fresh identity when the cookie is missing or malformed.
func (s *Server) identifyBrowser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(BrowserCookie)
		if err != nil {
			id = uuid.NewString()
		} else if _, perr := uuid.Parse(id); perr != nil {
			s.logger.Warn("replacing malformed browser cookie")
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(BrowserCookie, id, int(s.opts.CookieMaxAge.Seconds()), "/", "", c.Request.TLS != nil, true)
		state := s.store.Browser(id)
		// Stored state expires together with the sliding cookie.
		if err := state.Touch(c.Request.Context()); err != nil {
			s.logger.Warn("refreshing browser state failed", slog.String("error", err.Error()))
		}
		c.Set(ctxSessions, session.NewManager(state, s.logger))
		c.Next()
	}
}

// requirePage runs the session guard for page and either redirects or makes
// the session available to the handler.
func (s *Server) requirePage(page session.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := session.CheckAuth(c.Request.Context(), sessionsOf(c), page)
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
		if !d.Allowed() {
			c.Redirect(http.StatusSeeOther, d.Redirect)
			c.Abort()
			return
		}
		if d.Session != nil {
			c.Set(ctxSession, *d.Session)
		}
		c.Next()
	}
}

func sessionsOf(c *gin.Context) *session.Manager {
	return c.MustGet(ctxSessions).(*session.Manager)
}

func currentSession(c *gin.Context) models.Session {
	return c.MustGet(ctxSession).(models.Session)
}
