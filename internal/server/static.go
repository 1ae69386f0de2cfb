package server

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the embedded stylesheet and script and answers unknown
// paths.
func (s *Server) mountStatic() {
	assets, err := fs.Sub(assetsFS, "static")
	if err != nil {
		s.logger.Warn("static assets missing", "error", err)
	} else {
		s.engine.StaticFS("/static", http.FS(assets))
	}

	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		c.HTML(http.StatusNotFound, "error.html", page{Title: "No encontrado", View: "Página no encontrada"})
	})
}
