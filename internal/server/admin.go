package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"crudtask/internal/models"
	"crudtask/internal/session"
	"crudtask/internal/views"
)

// adminTasksVM adds the form target and the list state to return to.
type adminTasksVM struct {
	views.AdminTasksVM
	Action string
	Return string
}

func (v adminTasksVM) Fields() taskFields {
	return taskFields{
		Form:         v.Form.Form,
		Statuses:     v.Statuses,
		Priorities:   v.Priorities,
		Assignees:    v.Assignees,
		ShowAssignee: true,
	}
}

// EditURL opens the form for id without leaving the current list state.
func (v adminTasksVM) EditURL(id models.ID) string {
	q := v.Query.Values()
	q.Set("edit", id.String())
	return session.AdminTasksPath + "?" + q.Encode()
}

// DeleteURL is the delete action for id.
func (v adminTasksVM) DeleteURL(id models.ID) string {
	return session.AdminTasksPath + "/" + id.String() + "/delete" + v.Return
}

// listSuffix carries the page and filter state of a list across a redirect.
func listSuffix(q views.ListQuery) string {
	if enc := q.Values().Encode(); enc != "" {
		return "?" + enc
	}
	return ""
}

func (s *Server) adminTasks(c *gin.Context) *views.AdminTaskListView {
	return views.NewAdminTaskListView(s.backend, currentSession(c), s.logger)
}

func (s *Server) renderAdminTasks(c *gin.Context, vm views.AdminTasksVM, notice views.Notice) {
	action := session.AdminTasksPath
	if vm.Form.Editing() {
		action += "/" + vm.Form.TaskID.String()
	}
	suffix := listSuffix(vm.Query.ListQuery)
	s.render(c, "admin_tasks.html", page{
		Title:  "Gestión de tareas",
		Header: &vm.Header,
		Notice: notice,
		View:   adminTasksVM{AdminTasksVM: vm, Action: action + suffix, Return: suffix},
	})
}

func (s *Server) handleAdminTasks(c *gin.Context) {
	var q views.AdminQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	s.renderAdminTasks(c, s.adminTasks(c).Load(c.Request.Context(), q), views.Notice{})
}

func (s *Server) handleAdminSave(c *gin.Context) {
	var (
		q    views.AdminQuery
		form views.TaskForm
	)
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := c.ShouldBindWith(&form, binding.FormPost); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	q.Edit = ""
	id, _ := parseID(c, "id")

	view := s.adminTasks(c)
	if _, err := view.Save(c.Request.Context(), id, form); err != nil {
		vm := view.Load(c.Request.Context(), q)
		vm.Form = views.TaskFormVM{Heading: "Create New Task", TaskID: id, Form: form}
		if id != "" {
			vm.Form.Heading = "Edit Task"
		}
		s.renderAdminTasks(c, vm, views.NoticeFor(err))
		return
	}
	c.Redirect(http.StatusSeeOther, session.AdminTasksPath+listSuffix(q.ListQuery))
}

func (s *Server) handleAdminDelete(c *gin.Context) {
	var q views.AdminQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		s.respondError(c, http.StatusBadRequest, errMissingID)
		return
	}
	q.Edit = ""

	view := s.adminTasks(c)
	if err := view.Delete(c.Request.Context(), id); err != nil {
		s.renderAdminTasks(c, view.Load(c.Request.Context(), q), views.NoticeFor(err))
		return
	}
	c.Redirect(http.StatusSeeOther, session.AdminTasksPath+listSuffix(q.ListQuery))
}
