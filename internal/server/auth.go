package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"crudtask/internal/session"
	"crudtask/internal/views"
)

type loginVM struct {
	Email string
}

// registerVM echoes the submitted fields back, never the passwords.
type registerVM struct {
	FullName   string
	Email      string
	Department string
	Phone      string
}

func (s *Server) handleLoginPage(c *gin.Context) {
	s.render(c, "login.html", page{Title: "Iniciar sesión", View: loginVM{}})
}

func (s *Server) handleLogin(c *gin.Context) {
	var form views.LoginForm
	if err := c.ShouldBindWith(&form, binding.FormPost); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	auth := views.NewAuthController(s.backend, sessionsOf(c), s.logger)
	target, err := auth.Login(c.Request.Context(), form)
	if err != nil {
		s.render(c, "login.html", page{
			Title:  "Iniciar sesión",
			Notice: views.NoticeFor(err),
			View:   loginVM{Email: form.Email},
		})
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (s *Server) handleRegisterPage(c *gin.Context) {
	s.render(c, "register.html", page{Title: "Registro", View: registerVM{}})
}

func (s *Server) handleRegister(c *gin.Context) {
	var form views.RegisterForm
	if err := c.ShouldBindWith(&form, binding.FormPost); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	auth := views.NewAuthController(s.backend, sessionsOf(c), s.logger)
	if _, err := auth.Register(c.Request.Context(), form); err != nil {
		s.render(c, "register.html", page{
			Title:  "Registro",
			Notice: views.NoticeFor(err),
			View: registerVM{
				FullName:   form.FullName,
				Email:      form.Email,
				Department: form.Department,
				Phone:      form.Phone,
			},
		})
		return
	}

	s.render(c, "register.html", page{
		Title:   "Registro",
		Notice:  views.Notice{Message: "Registro exitoso", Kind: views.NoticeSuccess},
		Refresh: &refresh{URL: session.EntryPath, Delay: s.opts.RegisterRedirectDelay},
		View:    registerVM{},
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	auth := views.NewAuthController(s.backend, sessionsOf(c), s.logger)
	if err := auth.Logout(c.Request.Context()); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Redirect(http.StatusSeeOther, session.EntryPath)
}
