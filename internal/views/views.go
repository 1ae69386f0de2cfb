// Package views contains the page controllers. Each view is built for one
// request from an explicit session and a Backend, fetches what it needs and
// returns a typed view-model for rendering.
package views

import (
	"context"
	"errors"
	"strings"

	"crudtask/internal/api"
	"crudtask/internal/models"
	"crudtask/internal/tasklist"
)

// Backend is the subset of the REST client the views use.
type Backend interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	FindUsersByEmail(ctx context.Context, email string) ([]models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	PatchUser(ctx context.Context, id models.ID, patch models.ProfilePatch) (models.User, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListTasksByUser(ctx context.Context, userID models.ID) ([]models.Task, error)
	GetTask(ctx context.Context, id models.ID) (models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	ReplaceTask(ctx context.Context, t models.Task) (models.Task, error)
	DeleteTask(ctx context.Context, id models.ID) error
}

var _ Backend = (*api.Client)(nil)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongPassword    = errors.New("wrong password")
	ErrEmailTaken       = errors.New("email already registered")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrForbidden        = errors.New("task belongs to another user")
)

// Notice kinds.
const (
	NoticeSuccess = "success"
	NoticeDanger  = "danger"
)

// Notice is a transient dismissible message.
type Notice struct {
	Message string
	Kind    string
}

// NoticeFor maps an error returned by a view to the message shown to the user.
func NoticeFor(err error) Notice {
	var verr *ValidationError
	switch {
	case err == nil:
		return Notice{}
	case errors.Is(err, ErrUserNotFound):
		return Notice{Message: "Usuario no encontrado", Kind: NoticeDanger}
	case errors.Is(err, ErrWrongPassword):
		return Notice{Message: "Contraseña incorrecta", Kind: NoticeDanger}
	case errors.Is(err, ErrEmailTaken):
		return Notice{Message: "El email ya está registrado", Kind: NoticeDanger}
	case errors.Is(err, ErrPasswordMismatch):
		return Notice{Message: "Las contraseñas no coinciden", Kind: NoticeDanger}
	case errors.Is(err, ErrForbidden):
		return Notice{Message: "No puedes modificar esta tarea", Kind: NoticeDanger}
	case errors.As(err, &verr):
		return Notice{Message: "Revisa los campos: " + strings.Join(verr.Fields, ", "), Kind: NoticeDanger}
	}
	return Notice{Message: "Error del servidor", Kind: NoticeDanger}
}

// TaskRow is one rendered task line.
type TaskRow struct {
	ID            models.ID
	Title         string
	Category      string
	Priority      models.Priority
	PriorityClass string
	Status        models.Status
	StatusClass   string
	Assignee      string
	DueDate       string
	Description   string
}

// NoAssignee is shown for tasks nobody owns.
const NoAssignee = "No asignado"

func rowsFor(tasks []models.Task) []TaskRow {
	rows := make([]TaskRow, 0, len(tasks))
	for _, t := range tasks {
		assignee := t.Assignee
		if assignee == "" {
			assignee = NoAssignee
		}
		rows = append(rows, TaskRow{
			ID:            t.ID,
			Title:         t.Title,
			Category:      t.Category,
			Priority:      t.Priority,
			PriorityClass: t.Priority.BadgeClass(),
			Status:        t.Status,
			StatusClass:   t.Status.BadgeClass(),
			Assignee:      assignee,
			DueDate:       tasklist.FormatDate(t.DueDate),
			Description:   t.Description,
		})
	}
	return rows
}

// Header is the signed-in user strip shared by every page.
type Header struct {
	FullName string
	Initials string
	IsAdmin  bool
}

func headerFor(s models.Session) Header {
	return Header{
		FullName: s.FullName,
		Initials: tasklist.Initials(s.FullName),
		IsAdmin:  s.Role.IsAdmin(),
	}
}
