package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a remote record. The backend may return ids as JSON numbers
// or strings; numeric ids are written back as numbers.
type ID string

// UnmarshalJSON accepts both `12` and `"12"`.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes integer ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Role gates which pages a session may open.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsAdmin reports whether the role grants the admin views.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Label is the human readable role shown on the profile page.
func (r Role) Label() string {
	if r.IsAdmin() {
		return "System Admin"
	}
	return "User"
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists the statuses in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// BadgeClass maps the status to its badge color.
func (s Status) BadgeClass() string {
	switch s {
	case StatusCompleted:
		return "success"
	case StatusInProgress:
		return "warning"
	case StatusPending:
		return "secondary"
	}
	return ""
}

// Priority ranks a task.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the priorities in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// BadgeClass maps the priority to its badge color.
func (p Priority) BadgeClass() string {
	switch p {
	case PriorityHigh:
		return "danger"
	case PriorityMedium:
		return "warning"
	case PriorityLow:
		return "info"
	}
	return ""
}

// Task is a unit of work owned by the remote store.
type Task struct {
	ID          ID       `json:"id,omitempty"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	Assignee    string   `json:"assignee"`
	DueDate     string   `json:"dueDate"`
	Description string   `json:"description"`
	UserID      ID       `json:"userId,omitempty"`
}

// User is an account record owned by the remote store.
type User struct {
	ID         ID     `json:"id,omitempty"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	EmployeeID string `json:"employeeId"`
	JoinDate   string `json:"joinDate"`
}

// Session is the locally persisted record identifying the signed-in user.
// It never carries the password.
type Session struct {
	UserID     ID     `json:"id"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`
	JoinDate   string `json:"joinDate,omitempty"`
}

// SessionFromUser copies the user record into a session.
func SessionFromUser(u User) Session {
	return Session{
		UserID:     u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		Phone:      u.Phone,
		EmployeeID: u.EmployeeID,
		JoinDate:   u.JoinDate,
	}
}

// ProfilePatch holds the profile fields a user may change.
type ProfilePatch struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

// Apply merges the patch into the session.
func (p ProfilePatch) Apply(s Session) Session {
	s.FullName = strings.TrimSpace(p.FullName)
	s.Phone = strings.TrimSpace(p.Phone)
	s.Department = strings.TrimSpace(p.Department)
	return s
}
