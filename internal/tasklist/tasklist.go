// Package tasklist holds the list logic shared by the task views: filtering,
// page windows, pagination controls and status counts.
package tasklist

import (
	"math"
	"strconv"
	"strings"

	"crudtask/internal/models"
)

// PageSize is the fixed number of rows per page.
const PageSize = 10

// RecentLimit caps the dashboard's recent-tasks table.
const RecentLimit = 5

// Filter narrows a task collection. Zero fields match everything.
type Filter struct {
	Search string
	Status models.Status
}

// Active reports whether any predicate is set.
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Search) != "" || f.Status != ""
}

// Match applies a case-insensitive substring match on title or category and
// an exact match on status.
func (f Filter) Match(t models.Task) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Category), term) {
			return false
		}
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

// Apply returns the tasks matching f, preserving order.
func Apply(tasks []models.Task, f Filter) []models.Task {
	if !f.Active() {
		return tasks
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Page is one window over a filtered collection. Number is 1-based.
type Page struct {
	Items      []models.Task
	Number     int
	TotalPages int
	TotalItems int
}

// PageCount is ceil(n/size).
func PageCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return int(math.Ceil(float64(n) / float64(size)))
}

// Paginate cuts the page-th window of tasks. Out of range page numbers are
// clamped into [1, max(1, pages)].
func Paginate(tasks []models.Task, page, size int) Page {
	if size <= 0 {
		size = PageSize
	}
	total := PageCount(len(tasks), size)
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > len(tasks) {
		start = len(tasks)
	}
	if end > len(tasks) {
		end = len(tasks)
	}
	return Page{
		Items:      tasks[start:end],
		Number:     page,
		TotalPages: total,
		TotalItems: len(tasks),
	}
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Control is one pagination link.
type Control struct {
	Label    string
	Page     int
	Active   bool
	Disabled bool
}

// Controls rebuilds the full Previous, 1..N, Next control row.
func Controls(p Page) []Control {
	out := make([]Control, 0, p.TotalPages+2)
	out = append(out, Control{Label: "Previous", Page: p.Number - 1, Disabled: !p.HasPrev()})
	for i := 1; i <= p.TotalPages; i++ {
		out = append(out, Control{Label: strconv.Itoa(i), Page: i, Active: i == p.Number})
	}
	out = append(out, Control{Label: "Next", Page: p.Number + 1, Disabled: !p.HasNext()})
	return out
}

// Counts aggregates a collection per status.
type Counts struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
}

// Count tallies tasks per status.
func Count(tasks []models.Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusPending:
			c.Pending++
		case models.StatusInProgress:
			c.InProgress++
		case models.StatusCompleted:
			c.Completed++
		}
	}
	return c
}

// Progress is the rounded completion percentage, 0 for an empty collection.
func (c Counts) Progress() int {
	if c.Total == 0 {
		return 0
	}
	return int(math.Round(float64(c.Completed) / float64(c.Total) * 100))
}

// Recent returns at most n leading tasks.
func Recent(tasks []models.Task, n int) []models.Task {
	if n < 0 {
		n = 0
	}
	if len(tasks) > n {
		return tasks[:n]
	}
	return tasks
}
