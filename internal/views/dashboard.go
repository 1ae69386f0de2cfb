package views

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"crudtask/internal/models"
	"crudtask/internal/tasklist"
)

// DashboardVM is the admin overview page.
type DashboardVM struct {
	Header       Header
	TotalTasks   int
	InProgress   int
	Completed    int
	Pending      int
	TotalResults int
	TotalUsers   int
	Recent       []TaskRow
}

// AdminDashboardView summarizes the whole task collection.
type AdminDashboardView struct {
	backend Backend
	session models.Session
	logger  *slog.Logger
}

// NewAdminDashboardView binds the view to an admin session.
func NewAdminDashboardView(backend Backend, s models.Session, logger *slog.Logger) *AdminDashboardView {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminDashboardView{backend: backend, session: s, logger: logger}
}

// Load counts tasks per status and keeps the first RecentLimit rows.
func (v *AdminDashboardView) Load(ctx context.Context) DashboardVM {
	vm := DashboardVM{Header: headerFor(v.session)}

	tasks, err := v.backend.ListTasks(ctx)
	if err != nil {
		v.logger.Error("loading dashboard tasks failed", slog.String("error", err.Error()))
		return vm
	}
	users, err := v.backend.ListUsers(ctx)
	if err != nil {
		v.logger.Error("loading dashboard users failed", slog.String("error", err.Error()))
	}

	counts := tasklist.Count(tasks)
	vm.TotalTasks = counts.Total
	vm.InProgress = counts.InProgress
	vm.Completed = counts.Completed
	vm.Pending = counts.Pending
	vm.TotalResults = counts.Total
	vm.TotalUsers = len(users)
	vm.Recent = rowsFor(tasklist.Recent(tasks, tasklist.RecentLimit))
	return vm
}

// Delete removes a task from the overview.
func (v *AdminDashboardView) Delete(ctx context.Context, id models.ID) error {
	if err := v.backend.DeleteTask(ctx, id); err != nil {
		v.logger.Error("deleting task failed", slog.String("task", id.String()), slog.String("error", err.Error()))
		return err
	}
	return nil
}

var exportHeader = []string{"id", "title", "category", "priority", "status", "assignee", "dueDate", "description", "userId"}

// Export writes every task as CSV.
func (v *AdminDashboardView) Export(ctx context.Context, w io.Writer) error {
	tasks, err := v.backend.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("export tasks: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		record := []string{
			t.ID.String(), t.Title, t.Category, string(t.Priority), string(t.Status),
			t.Assignee, t.DueDate, t.Description, t.UserID.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
