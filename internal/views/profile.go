package views

import (
	"context"
	"log/slog"
	"strings"

	"crudtask/internal/models"
	"crudtask/internal/session"
	"crudtask/internal/tasklist"
)

const notSpecified = "No especificado"

// ProfileVM is the profile page in view or edit mode.
type ProfileVM struct {
	Header     Header
	Editing    bool
	FullName   string
	RoleLabel  string
	Email      string
	Phone      string
	Department string
	JoinDate   string
	EmployeeID string
	TaskCount  int
	Form       ProfileForm
}

// ReadOnly reports whether the editable fields are locked.
func (p ProfileVM) ReadOnly() bool { return !p.Editing }

// ProfileView shows and edits the signed-in user's profile.
type ProfileView struct {
	backend  Backend
	sessions *session.Manager
	session  models.Session
	logger   *slog.Logger
}

// NewProfileView binds the view to the session and the storage it came from.
func NewProfileView(backend Backend, sessions *session.Manager, s models.Session, logger *slog.Logger) *ProfileView {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileView{backend: backend, sessions: sessions, session: s, logger: logger}
}

// Session is the session the view currently renders.
func (v *ProfileView) Session() models.Session { return v.session }

// Load renders the profile from the current session. Edit mode unlocks the
// fields; leaving it without saving re-renders the unmodified session.
func (v *ProfileView) Load(ctx context.Context, editing bool) ProfileVM {
	s := v.session
	vm := ProfileVM{
		Header:     headerFor(s),
		Editing:    editing,
		FullName:   s.FullName,
		RoleLabel:  s.Role.Label(),
		Email:      s.Email,
		Phone:      orDefault(s.Phone, notSpecified),
		Department: orDefault(s.Department, notSpecified),
		JoinDate:   tasklist.FormatDateLong(s.JoinDate),
		EmployeeID: orDefault(s.EmployeeID, NoAssignee),
		Form:       ProfileForm{FullName: s.FullName, Phone: s.Phone, Department: s.Department},
	}

	tasks, err := v.backend.ListTasksByUser(ctx, s.UserID)
	if err != nil {
		v.logger.Error("counting profile tasks failed", slog.String("error", err.Error()))
	} else {
		vm.TaskCount = len(tasks)
	}
	return vm
}

// Save sends the name, phone and department and merges the stored record's
// answer into the session.
func (v *ProfileView) Save(ctx context.Context, form ProfileForm) (models.Session, error) {
	form.FullName = strings.TrimSpace(form.FullName)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Department = strings.TrimSpace(form.Department)
	if err := check(form); err != nil {
		return v.session, err
	}
	patch := models.ProfilePatch{FullName: form.FullName, Phone: form.Phone, Department: form.Department}

	updated, err := v.backend.PatchUser(ctx, v.session.UserID, patch)
	if err != nil {
		v.logger.Error("updating profile failed", slog.String("user", v.session.UserID.String()), slog.String("error", err.Error()))
		return v.session, err
	}
	if updated.ID != "" {
		patch = models.ProfilePatch{FullName: updated.FullName, Phone: updated.Phone, Department: updated.Department}
	}

	next := patch.Apply(v.session)
	if err := v.sessions.Save(ctx, next); err != nil {
		return v.session, err
	}
	v.session = next
	return next, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
