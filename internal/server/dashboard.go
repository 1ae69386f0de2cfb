package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"crudtask/internal/session"
	"crudtask/internal/views"
)

func (s *Server) dashboard(c *gin.Context) *views.AdminDashboardView {
	return views.NewAdminDashboardView(s.backend, currentSession(c), s.logger)
}

func (s *Server) renderDashboard(c *gin.Context, notice views.Notice) {
	vm := s.dashboard(c).Load(c.Request.Context())
	s.render(c, "dashboard.html", page{Title: "Panel de administración", Header: &vm.Header, Notice: notice, View: vm})
}

func (s *Server) handleDashboard(c *gin.Context) {
	s.renderDashboard(c, views.Notice{})
}

func (s *Server) handleDashboardDelete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		s.respondError(c, http.StatusBadRequest, errMissingID)
		return
	}
	if err := s.dashboard(c).Delete(c.Request.Context(), id); err != nil {
		s.renderDashboard(c, views.NoticeFor(err))
		return
	}
	c.Redirect(http.StatusSeeOther, session.DashboardPath)
}

func (s *Server) handleExport(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.dashboard(c).Export(c.Request.Context(), &buf); err != nil {
		s.respondError(c, http.StatusBadGateway, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tasks.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
