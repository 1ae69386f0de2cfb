package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"crudtask/internal/views"
)

func (s *Server) profileView(c *gin.Context) *views.ProfileView {
	return views.NewProfileView(s.backend, sessionsOf(c), currentSession(c), s.logger)
}

func (s *Server) renderProfile(c *gin.Context, vm views.ProfileVM, notice views.Notice) {
	s.render(c, "profile.html", page{Title: "Mi perfil", Header: &vm.Header, Notice: notice, View: vm})
}

func (s *Server) handleProfile(c *gin.Context) {
	editing := c.Query("edit") == "1"
	s.renderProfile(c, s.profileView(c).Load(c.Request.Context(), editing), views.Notice{})
}

func (s *Server) handleProfileSave(c *gin.Context) {
	var form views.ProfileForm
	if err := c.ShouldBindWith(&form, binding.FormPost); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	view := s.profileView(c)
	if _, err := view.Save(c.Request.Context(), form); err != nil {
		notice := views.Notice{Message: "Error al actualizar el perfil", Kind: views.NoticeDanger}
		var verr *views.ValidationError
		if errors.As(err, &verr) {
			notice = views.NoticeFor(err)
		}
		vm := view.Load(c.Request.Context(), true)
		vm.Form = form
		s.renderProfile(c, vm, notice)
		return
	}
	s.renderProfile(c, view.Load(c.Request.Context(), false), views.Notice{Message: "Perfil actualizado correctamente", Kind: views.NoticeSuccess})
}
