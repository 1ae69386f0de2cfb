package views

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"crudtask/internal/models"
	"crudtask/internal/session"
)

// AuthController signs users in and out and registers new accounts.
type AuthController struct {
	backend  Backend
	sessions *session.Manager
	logger   *slog.Logger

	// Overridable for tests.
	EmployeeID func() string
	Now        func() time.Time
}

// NewAuthController binds the controller to one browser's session storage.
func NewAuthController(backend Backend, sessions *session.Manager, logger *slog.Logger) *AuthController {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthController{
		backend:    backend,
		sessions:   sessions,
		logger:     logger,
		EmployeeID: randomEmployeeID,
		Now:        time.Now,
	}
}

func randomEmployeeID() string {
	return fmt.Sprintf("CZ-%d", 100000+rand.IntN(900000))
}

// Login checks the credentials, stores the session and returns the page the
// role lands on. Nothing is stored on failure.
func (a *AuthController) Login(ctx context.Context, form LoginForm) (string, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := check(form); err != nil {
		return "", err
	}

	users, err := a.backend.FindUsersByEmail(ctx, form.Email)
	if err != nil {
		a.logger.Error("login lookup failed", slog.String("error", err.Error()))
		return "", err
	}
	if len(users) == 0 {
		return "", ErrUserNotFound
	}

	user := users[0]
	if user.Password != form.Password {
		return "", ErrWrongPassword
	}

	if err := a.sessions.Save(ctx, models.SessionFromUser(user)); err != nil {
		return "", err
	}
	a.logger.Info("user signed in", slog.String("user", user.ID.String()), slog.String("role", string(user.Role)))
	return session.HomeFor(user.Role), nil
}

// Register creates a regular user account when the email is unused.
func (a *AuthController) Register(ctx context.Context, form RegisterForm) (models.User, error) {
	if form.Password != form.ConfirmPassword {
		return models.User{}, ErrPasswordMismatch
	}
	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)
	if err := check(form); err != nil {
		return models.User{}, err
	}

	existing, err := a.backend.FindUsersByEmail(ctx, form.Email)
	if err != nil {
		a.logger.Error("registration lookup failed", slog.String("error", err.Error()))
		return models.User{}, err
	}
	if len(existing) > 0 {
		return models.User{}, ErrEmailTaken
	}

	created, err := a.backend.CreateUser(ctx, models.User{
		FullName:   form.FullName,
		Email:      form.Email,
		Password:   form.Password,
		Role:       models.RoleUser,
		Department: strings.TrimSpace(form.Department),
		Phone:      strings.TrimSpace(form.Phone),
		EmployeeID: a.EmployeeID(),
		JoinDate:   a.Now().UTC().Format("2006-01-02"),
	})
	if err != nil {
		a.logger.Error("registration failed", slog.String("error", err.Error()))
		return models.User{}, err
	}
	a.logger.Info("user registered", slog.String("user", created.ID.String()))
	return created, nil
}

// Logout drops the stored session.
func (a *AuthController) Logout(ctx context.Context) error {
	return a.sessions.Clear(ctx)
}
