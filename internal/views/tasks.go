package views

import (
	"context"
	"log/slog"

	"crudtask/internal/models"
	"crudtask/internal/tasklist"
)

// TaskListVM is the personal task page.
type TaskListVM struct {
	Header     Header
	Query      ListQuery
	Rows       []TaskRow
	Pagination []PageLink
	Showing    int
	Total      int
	Completed  int
	Pending    int
	Progress   int
	Statuses   []models.Status
}

// TaskListView is the task page of a regular user.
type TaskListView struct {
	backend Backend
	session models.Session
	logger  *slog.Logger
}

// NewTaskListView binds the view to the signed-in user.
func NewTaskListView(backend Backend, s models.Session, logger *slog.Logger) *TaskListView {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskListView{backend: backend, session: s, logger: logger}
}

// Load fetches the user's tasks and shows the page of q. The counters cover
// every task of the user regardless of the filter. A failed fetch is logged
// and yields an empty table.
func (v *TaskListView) Load(ctx context.Context, q ListQuery) TaskListVM {
	vm := TaskListVM{Header: headerFor(v.session), Query: q, Statuses: models.Statuses}

	tasks, err := v.backend.ListTasksByUser(ctx, v.session.UserID)
	if err != nil {
		v.logger.Error("loading user tasks failed", slog.String("user", v.session.UserID.String()), slog.String("error", err.Error()))
		return vm
	}

	counts := tasklist.Count(tasks)
	page, q, links := listPage(tasks, q)
	vm.Query = q
	vm.Rows = rowsFor(page.Items)
	vm.Pagination = links
	vm.Showing = len(page.Items)
	vm.Total = counts.Total
	vm.Completed = counts.Completed
	vm.Pending = counts.Pending
	vm.Progress = counts.Progress()
	return vm
}

// UpdateStatus reads the whole task, overwrites its status and writes it
// back. There is no conflict detection against concurrent edits.
func (v *TaskListView) UpdateStatus(ctx context.Context, id models.ID, status models.Status) error {
	if !status.Valid() {
		return &ValidationError{Fields: []string{"status"}}
	}
	task, err := v.ownTask(ctx, id)
	if err != nil {
		return err
	}
	task.Status = status
	if _, err := v.backend.ReplaceTask(ctx, task); err != nil {
		v.logger.Error("updating task status failed", slog.String("task", id.String()), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Create stores a new task owned by the signed-in user.
func (v *TaskListView) Create(ctx context.Context, form TaskForm) (models.Task, error) {
	form = form.normalized()
	if err := check(form); err != nil {
		return models.Task{}, err
	}
	task := form.task()
	task.UserID = v.session.UserID
	task.Assignee = v.session.FullName

	created, err := v.backend.CreateTask(ctx, task)
	if err != nil {
		v.logger.Error("creating task failed", slog.String("error", err.Error()))
		return models.Task{}, err
	}
	return created, nil
}

// Delete removes one of the user's tasks.
func (v *TaskListView) Delete(ctx context.Context, id models.ID) error {
	if _, err := v.ownTask(ctx, id); err != nil {
		return err
	}
	if err := v.backend.DeleteTask(ctx, id); err != nil {
		v.logger.Error("deleting task failed", slog.String("task", id.String()), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (v *TaskListView) ownTask(ctx context.Context, id models.ID) (models.Task, error) {
	task, err := v.backend.GetTask(ctx, id)
	if err != nil {
		v.logger.Error("loading task failed", slog.String("task", id.String()), slog.String("error", err.Error()))
		return models.Task{}, err
	}
	if task.UserID != v.session.UserID {
		return models.Task{}, ErrForbidden
	}
	return task, nil
}
