package session

import (
	"context"

	"crudtask/internal/models"
)

// Page paths used for guard redirects.
const (
	EntryPath      = "/"
	RegisterPath   = "/register"
	UserTasksPath  = "/tasks"
	DashboardPath  = "/dashboard"
	AdminTasksPath = "/admin/tasks"
	ProfilePath    = "/profile"
)

// Page names the view being opened.
type Page int

const (
	// PageEntry is the login and registration area; signed-in users are sent away.
	PageEntry Page = iota
	PageUserTasks
	PageDashboard
	PageAdminTasks
	PageProfile
)

// HomeFor is the landing page of role.
func HomeFor(role models.Role) string {
	if role.IsAdmin() {
		return DashboardPath
	}
	return UserTasksPath
}

// Decision is the outcome of CheckAuth. When Redirect is set the page must
// not be rendered.
type Decision struct {
	Session  *models.Session
	Redirect string
}

// Allowed reports whether the page may be rendered.
func (d Decision) Allowed() bool { return d.Redirect == "" }

// CheckAuth validates the stored session against page.
func CheckAuth(ctx context.Context, m *Manager, page Page) (Decision, error) {
	s, err := m.Load(ctx)
	if err != nil {
		return Decision{}, err
	}

	if page == PageEntry {
		if s != nil {
			return Decision{Session: s, Redirect: HomeFor(s.Role)}, nil
		}
		return Decision{}, nil
	}

	if s == nil {
		return Decision{Redirect: EntryPath}, nil
	}

	switch page {
	case PageUserTasks:
		if s.Role.IsAdmin() {
			return Decision{Session: s, Redirect: DashboardPath}, nil
		}
	case PageDashboard, PageAdminTasks:
		if !s.Role.IsAdmin() {
			return Decision{Session: s, Redirect: UserTasksPath}, nil
		}
	}
	return Decision{Session: s}, nil
}
