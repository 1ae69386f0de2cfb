package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"crudtask/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("task_priority", func(fl validator.FieldLevel) bool {
		return models.Priority(fl.Field().String()).Valid()
	})
	return v
}

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// check validates form and converts validator errors into a ValidationError.
func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// LoginForm is the login page submission.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm is the registration page submission.
type RegisterForm struct {
	FullName        string `form:"fullName" validate:"required"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required"`
	ConfirmPassword string `form:"confirmPassword" validate:"required"`
	Department      string `form:"department"`
	Phone           string `form:"phone"`
}

// TaskForm is the shared create/edit task form.
type TaskForm struct {
	Title       string `form:"title" validate:"required"`
	Category    string `form:"category" validate:"required"`
	Priority    string `form:"priority" validate:"required,task_priority"`
	Status      string `form:"status" validate:"required,task_status"`
	DueDate     string `form:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Description string `form:"description"`
	AssigneeID  string `form:"assignee"`
}

func (f TaskForm) normalized() TaskForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Category = strings.TrimSpace(f.Category)
	f.DueDate = strings.TrimSpace(f.DueDate)
	f.Description = strings.TrimSpace(f.Description)
	f.AssigneeID = strings.TrimSpace(f.AssigneeID)
	return f
}

// task builds the task record the form describes.
func (f TaskForm) task() models.Task {
	return models.Task{
		Title:       f.Title,
		Category:    f.Category,
		Priority:    models.Priority(f.Priority),
		Status:      models.Status(f.Status),
		DueDate:     f.DueDate,
		Description: f.Description,
	}
}

// TaskFormFromTask fills the form with an existing task.
func TaskFormFromTask(t models.Task) TaskForm {
	return TaskForm{
		Title:       t.Title,
		Category:    t.Category,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		Description: t.Description,
		AssigneeID:  t.UserID.String(),
	}
}

// ProfileForm holds the editable profile fields.
type ProfileForm struct {
	FullName   string `form:"fullName" validate:"required"`
	Phone      string `form:"phone"`
	Department string `form:"department"`
}
