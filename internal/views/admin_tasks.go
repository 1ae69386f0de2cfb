package views

import (
	"context"
	"log/slog"

	"crudtask/internal/models"
)

// AdminQuery is the list state of the admin page plus the task being edited.
type AdminQuery struct {
	ListQuery
	Edit string `form:"edit"`
}

// Assignee is one option of the assignee select.
type Assignee struct {
	ID       models.ID
	FullName string
}

// TaskFormVM drives the shared create/edit form.
type TaskFormVM struct {
	Heading string
	TaskID  models.ID
	Form    TaskForm
}

// Editing reports whether the form targets an existing task.
func (f TaskFormVM) Editing() bool { return f.TaskID != "" }

// AdminTasksVM is the admin task management page.
type AdminTasksVM struct {
	Header     Header
	Query      AdminQuery
	Rows       []TaskRow
	Pagination []PageLink
	Showing    int
	Total      int
	Assignees  []Assignee
	Statuses   []models.Status
	Priorities []models.Priority
	Form       TaskFormVM
}

// AdminTaskListView manages every task.
type AdminTaskListView struct {
	backend Backend
	session models.Session
	logger  *slog.Logger
}

// NewAdminTaskListView binds the view to an admin session.
func NewAdminTaskListView(backend Backend, s models.Session, logger *slog.Logger) *AdminTaskListView {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminTaskListView{backend: backend, session: s, logger: logger}
}

func newTaskForm() TaskFormVM {
	return TaskFormVM{
		Heading: "Create New Task",
		Form: TaskForm{
			Priority: string(models.PriorityMedium),
			Status:   string(models.StatusPending),
		},
	}
}

// Load fetches users and tasks, filters, paginates and, when q.Edit is set,
// pre-fills the form with that task.
func (v *AdminTaskListView) Load(ctx context.Context, q AdminQuery) AdminTasksVM {
	vm := AdminTasksVM{
		Header:     headerFor(v.session),
		Statuses:   models.Statuses,
		Priorities: models.Priorities,
		Form:       newTaskForm(),
	}

	users, err := v.backend.ListUsers(ctx)
	if err != nil {
		v.logger.Error("loading users failed", slog.String("error", err.Error()))
	}
	for _, u := range users {
		vm.Assignees = append(vm.Assignees, Assignee{ID: u.ID, FullName: u.FullName})
	}

	tasks, err := v.backend.ListTasks(ctx)
	if err != nil {
		v.logger.Error("loading tasks failed", slog.String("error", err.Error()))
	}

	page, list, links := listPage(tasks, q.ListQuery)
	q.ListQuery = list
	vm.Query = q
	vm.Rows = rowsFor(page.Items)
	vm.Showing = len(page.Items)
	vm.Total = len(tasks)
	vm.Pagination = links

	if q.Edit != "" {
		form, err := v.Edit(ctx, models.ID(q.Edit))
		if err == nil {
			vm.Form = form
		}
	}
	return vm
}

// Edit loads a task into the shared form.
func (v *AdminTaskListView) Edit(ctx context.Context, id models.ID) (TaskFormVM, error) {
	task, err := v.backend.GetTask(ctx, id)
	if err != nil {
		v.logger.Error("loading task failed", slog.String("task", id.String()), slog.String("error", err.Error()))
		return TaskFormVM{}, err
	}
	return TaskFormVM{Heading: "Edit Task", TaskID: task.ID, Form: TaskFormFromTask(task)}, nil
}

// Save creates the task when id is empty and replaces it otherwise. The
// selected assignee sets both the display name and the owning user.
func (v *AdminTaskListView) Save(ctx context.Context, id models.ID, form TaskForm) (models.Task, error) {
	form = form.normalized()
	if err := check(form); err != nil {
		return models.Task{}, err
	}

	task := form.task()
	if form.AssigneeID != "" {
		users, err := v.backend.ListUsers(ctx)
		if err != nil {
			v.logger.Error("loading users failed", slog.String("error", err.Error()))
			return models.Task{}, err
		}
		for _, u := range users {
			if u.ID.String() == form.AssigneeID {
				task.UserID = u.ID
				task.Assignee = u.FullName
				break
			}
		}
		if task.UserID == "" {
			return models.Task{}, &ValidationError{Fields: []string{"assignee"}}
		}
	}

	var (
		saved models.Task
		err   error
	)
	if id == "" {
		saved, err = v.backend.CreateTask(ctx, task)
	} else {
		task.ID = id
		saved, err = v.backend.ReplaceTask(ctx, task)
	}
	if err != nil {
		v.logger.Error("saving task failed", slog.String("task", id.String()), slog.String("error", err.Error()))
		return models.Task{}, err
	}
	return saved, nil
}

// Delete removes any task.
func (v *AdminTaskListView) Delete(ctx context.Context, id models.ID) error {
	if err := v.backend.DeleteTask(ctx, id); err != nil {
		v.logger.Error("deleting task failed", slog.String("task", id.String()), slog.String("error", err.Error()))
		return err
	}
	return nil
}
