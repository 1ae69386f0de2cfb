package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"crudtask/internal/views"
)

// page is the envelope every template renders.
type page struct {
	Title        string
	Header       *views.Header
	Notice       views.Notice
	NoticeMillis int64
	Refresh      *refresh
	View         any
}

// refresh asks the browser to navigate after a delay.
type refresh struct {
	URL   string
	Delay time.Duration
}

// Content formats the meta refresh attribute value.
func (r refresh) Content() string {
	return strconv.FormatFloat(r.Delay.Seconds(), 'f', -1, 64) + ";url=" + r.URL
}

var templateFuncs = template.FuncMap{
	"markdown": renderMarkdown,
	"is":       func(a, b any) bool { return fmt.Sprint(a) == fmt.Sprint(b) },
}

func (s *Server) render(c *gin.Context, name string, p page) {
	p.NoticeMillis = s.opts.NoticeDuration.Milliseconds()
	c.HTML(http.StatusOK, name, p)
}
