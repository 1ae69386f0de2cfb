package views

import (
	"net/url"
	"strconv"

	"crudtask/internal/models"
	"crudtask/internal/tasklist"
)

// ListQuery is the page, search and status state carried in a task list URL.
type ListQuery struct {
	Page   int    `form:"page"`
	Search string `form:"q"`
	Status string `form:"status"`
}

// Filter converts the query into list predicates. Unknown statuses are
// ignored.
func (q ListQuery) Filter() tasklist.Filter {
	f := tasklist.Filter{Search: q.Search}
	if s := models.Status(q.Status); s.Valid() {
		f.Status = s
	}
	return f
}

// Values encodes the query for links; page 1 and empty fields are omitted.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

// WithPage returns a copy of q pointing at page.
func (q ListQuery) WithPage(page int) ListQuery {
	q.Page = page
	return q
}

// PageLink is a rendered pagination control.
type PageLink struct {
	tasklist.Control
	URL string
}

// listPage filters tasks, cuts the requested page and builds its controls.
// The returned query carries the clamped page number.
func listPage(tasks []models.Task, q ListQuery) (tasklist.Page, ListQuery, []PageLink) {
	page := tasklist.Paginate(tasklist.Apply(tasks, q.Filter()), q.Page, tasklist.PageSize)
	q.Page = page.Number

	var links []PageLink
	for _, c := range tasklist.Controls(page) {
		link := PageLink{Control: c}
		if !c.Disabled {
			link.URL = "?" + q.WithPage(c.Page).Values().Encode()
		}
		links = append(links, link)
	}
	return page, q, links
}
