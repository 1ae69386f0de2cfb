package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"crudtask/internal/models"
	"crudtask/internal/session"
	"crudtask/internal/views"
)

var errMissingID = errors.New("missing task id")

// userTasksVM adds the create form and the list state to return to.
type userTasksVM struct {
	views.TaskListVM
	Form   views.TaskForm
	Return string
}

// taskFields feeds the shared task form fields.
type taskFields struct {
	Form         views.TaskForm
	Statuses     []models.Status
	Priorities   []models.Priority
	Assignees    []views.Assignee
	ShowAssignee bool
}

func (v userTasksVM) Fields() taskFields {
	return taskFields{Form: v.Form, Statuses: models.Statuses, Priorities: models.Priorities}
}

// StatusURL is the status action for id.
func (v userTasksVM) StatusURL(id models.ID) string {
	return session.UserTasksPath + "/" + id.String() + "/status" + v.Return
}

// DeleteURL is the delete action for id.
func (v userTasksVM) DeleteURL(id models.ID) string {
	return session.UserTasksPath + "/" + id.String() + "/delete" + v.Return
}

func blankTaskForm() views.TaskForm {
	return views.TaskForm{Priority: string(models.PriorityMedium), Status: string(models.StatusPending)}
}

func (s *Server) userTasks(c *gin.Context) *views.TaskListView {
	return views.NewTaskListView(s.backend, currentSession(c), s.logger)
}

func (s *Server) renderUserTasks(c *gin.Context, q views.ListQuery, notice views.Notice, form views.TaskForm) {
	vm := s.userTasks(c).Load(c.Request.Context(), q)
	s.render(c, "tasks.html", page{
		Title:  "Mis tareas",
		Header: &vm.Header,
		Notice: notice,
		View:   userTasksVM{TaskListVM: vm, Form: form, Return: listSuffix(vm.Query)},
	})
}

func (s *Server) handleUserTasks(c *gin.Context) {
	var q views.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	s.renderUserTasks(c, q, views.Notice{}, blankTaskForm())
}

func (s *Server) handleCreateUserTask(c *gin.Context) {
	var (
		q    views.ListQuery
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
	if _, err := s.userTasks(c).Create(c.Request.Context(), form); err != nil {
		s.renderUserTasks(c, q, views.NoticeFor(err), form)
		return
	}
	c.Redirect(http.StatusSeeOther, session.UserTasksPath+listSuffix(q))
}

func (s *Server) handleUpdateUserTaskStatus(c *gin.Context) {
	var q views.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		s.respondError(c, http.StatusBadRequest, errMissingID)
		return
	}
	status := models.Status(c.PostForm("status"))
	if err := s.userTasks(c).UpdateStatus(c.Request.Context(), id, status); err != nil {
		s.renderUserTasks(c, q, views.NoticeFor(err), blankTaskForm())
		return
	}
	c.Redirect(http.StatusSeeOther, session.UserTasksPath+listSuffix(q))
}

func (s *Server) handleDeleteUserTask(c *gin.Context) {
	var q views.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		s.respondError(c, http.StatusBadRequest, errMissingID)
		return
	}
	if err := s.userTasks(c).Delete(c.Request.Context(), id); err != nil {
		s.renderUserTasks(c, q, views.NoticeFor(err), blankTaskForm())
		return
	}
	c.Redirect(http.StatusSeeOther, session.UserTasksPath+listSuffix(q))
}
