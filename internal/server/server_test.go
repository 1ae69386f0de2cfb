package server

import (
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"crudtask/internal/api"
	"crudtask/internal/api/apitest"
	"crudtask/internal/models"
	"crudtask/internal/storage/sqlite"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type harness struct {
	t       *testing.T
	backend *apitest.Backend
	server  *httptest.Server
	client  *http.Client
}

func seed() apitest.Seed {
	return apitest.Seed{
		Users: []models.User{
			{FullName: "Ana Ruiz", Email: "ana@example.com", Password: "admin123", Role: models.RoleAdmin},
			{FullName: "Luis Gil", Email: "luis@example.com", Password: "user123", Role: models.RoleUser, Department: "Ops"},
		},
		Tasks: []models.Task{
			{Title: "Deploy API", Category: "Ops", Priority: models.PriorityHigh, Status: models.StatusPending, Assignee: "Luis Gil", DueDate: "2025-02-10", UserID: "2"},
			{Title: "Write docs", Category: "Docs", Priority: models.PriorityLow, Status: models.StatusCompleted, Assignee: "Luis Gil", Description: "**Draft** the guide", UserID: "2"},
			{Title: "Audit", Category: "Security", Priority: models.PriorityMedium, Status: models.StatusInProgress, Assignee: "Ana Ruiz", UserID: "1"},
		},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	backend := apitest.New(seed())
	t.Cleanup(backend.Close)

	client, err := api.New(backend.URL(), 2*time.Second, quiet)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "state.db"), quiet)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	srv := New(client, store, quiet, Options{RegisterRedirectDelay: 1500 * time.Millisecond})
	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(ts.Close)

	jar, _ := cookiejar.New(nil)
	return &harness{
		t:       t,
		backend: backend,
		server:  ts,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *harness) do(req *http.Request) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.client.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (h *harness) get(path string) (*http.Response, string) {
	h.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, h.server.URL+path, nil)
	return h.do(req)
}

func (h *harness) post(path string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	req, _ := http.NewRequest(http.MethodPost, h.server.URL+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) login(email, password string) *http.Response {
	h.t.Helper()
	resp, _ := h.post("/login", url.Values{"email": {email}, "password": {password}})
	return resp
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	resp, body := h.get("/api/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Fatalf("unexpected health response: %d %s", resp.StatusCode, body)
	}
}

func TestGuardRedirects(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/tasks", "/dashboard", "/admin/tasks", "/profile"} {
		resp, _ := h.get(path)
		expectRedirect(t, resp, "/")
	}

	expectRedirect(t, h.login("luis@example.com", "user123"), "/tasks")
	for path, want := range map[string]string{"/": "/tasks", "/register": "/tasks", "/dashboard": "/tasks", "/admin/tasks": "/tasks"} {
		resp, _ := h.get(path)
		expectRedirect(t, resp, want)
	}
	if resp, _ := h.get("/profile"); resp.StatusCode != http.StatusOK {
		t.Fatalf("profile should render for any signed-in user, got %d", resp.StatusCode)
	}
}

func TestAdminLandsOnDashboard(t *testing.T) {
	h := newHarness(t)
	expectRedirect(t, h.login("ana@example.com", "admin123"), "/dashboard")

	resp, _ := h.get("/tasks")
	expectRedirect(t, resp, "/dashboard")

	resp, body := h.get("/dashboard")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: %d", resp.StatusCode)
	}
	if !strings.Contains(body, `id="totalTasks">3<`) || !strings.Contains(body, `id="totalUsers">2<`) {
		t.Fatalf("dashboard metrics missing:\n%s", body)
	}
	if !strings.Contains(body, `href="/admin/tasks?edit=1"`) {
		t.Fatalf("recent rows should link to the admin edit form")
	}
}

func TestLoginFailureShowsNotice(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post("/login", url.Values{"email": {"luis@example.com"}, "password": {"nope"}})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Contraseña incorrecta") {
		t.Fatalf("expected wrong password notice, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `value="luis@example.com"`) {
		t.Fatalf("email should be kept in the form")
	}

	_, body = h.post("/login", url.Values{"email": {"nadie@example.com"}, "password": {"x"}})
	if !strings.Contains(body, "Usuario no encontrado") {
		t.Fatalf("expected unknown user notice")
	}

	resp, _ = h.get("/tasks")
	expectRedirect(t, resp, "/")
}

func TestUserTaskFlow(t *testing.T) {
	h := newHarness(t)
	h.login("luis@example.com", "user123")

	resp, body := h.get("/tasks")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Deploy API") || strings.Contains(body, "Audit") {
		t.Fatalf("user list should only show own tasks")
	}
	if !strings.Contains(body, "<strong>Draft</strong>") {
		t.Fatalf("description should render as markdown")
	}

	resp, _ = h.post("/tasks", url.Values{
		"title": {"Rotate keys"}, "category": {"Security"}, "priority": {"High"},
		"status": {"Pending"}, "dueDate": {"2025-03-01"},
	})
	expectRedirect(t, resp, "/tasks")
	_, body = h.get("/tasks")
	if !strings.Contains(body, "Rotate keys") || !strings.Contains(body, "1 mar 2025") {
		t.Fatalf("created task missing from list")
	}

	resp, _ = h.post("/tasks/1/status", url.Values{"status": {"Completed"}})
	expectRedirect(t, resp, "/tasks")
	for _, task := range h.backend.Tasks() {
		if task.ID == "1" && (task.Status != models.StatusCompleted || task.Title != "Deploy API") {
			t.Fatalf("status update changed the wrong fields: %+v", task)
		}
	}

	resp, _ = h.post("/tasks/2/delete", nil)
	expectRedirect(t, resp, "/tasks")
	if n := len(h.backend.Tasks()); n != 3 {
		t.Fatalf("expected 3 tasks after create and delete, got %d", n)
	}
}

func TestUserTaskListKeepsFilterState(t *testing.T) {
	h := newHarness(t)
	h.login("luis@example.com", "user123")

	_, body := h.get("/tasks?status=Completed")
	if !strings.Contains(body, "Write docs") || strings.Contains(body, "Deploy API") {
		t.Fatalf("status filter not applied")
	}
	if !strings.Contains(body, "Mostrando 1 de 2 tareas") || !strings.Contains(body, `id="totalTasks">2<`) {
		t.Fatalf("counters should cover every task of the user")
	}
	if !strings.Contains(body, `action="/tasks/2/status?status=Completed"`) {
		t.Fatalf("row actions should carry the filter")
	}

	resp, _ := h.post("/tasks/2/status?status=Completed&q=docs", url.Values{"status": {"Pending"}})
	expectRedirect(t, resp, "/tasks?q=docs&status=Completed")

	resp, _ = h.post("/tasks/1/delete?page=1&q=deploy", nil)
	expectRedirect(t, resp, "/tasks?q=deploy")

	if resp, _ := h.get("/tasks?page=abc"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUserCannotTouchOthersTasks(t *testing.T) {
	h := newHarness(t)
	h.login("luis@example.com", "user123")

	_, body := h.post("/tasks/3/delete", nil)
	if !strings.Contains(body, "No puedes modificar esta tarea") {
		t.Fatalf("expected forbidden notice")
	}
	if len(h.backend.Tasks()) != 3 {
		t.Fatalf("foreign task must not be deleted")
	}
}

func TestUserCreateValidation(t *testing.T) {
	h := newHarness(t)
	h.login("luis@example.com", "user123")

	_, body := h.post("/tasks", url.Values{"title": {"Half"}, "priority": {"Urgent"}, "status": {"Pending"}})
	if !strings.Contains(body, "Revisa los campos") || !strings.Contains(body, `value="Half"`) {
		t.Fatalf("invalid form should re-render with notice and input")
	}
	if len(h.backend.Tasks()) != 3 {
		t.Fatalf("invalid task must not be stored")
	}
}

func TestAdminTaskManagement(t *testing.T) {
	h := newHarness(t)
	h.login("ana@example.com", "admin123")

	_, body := h.get("/admin/tasks?q=docs")
	if !strings.Contains(body, "Write docs") || strings.Contains(body, "Deploy API") {
		t.Fatalf("search filter not applied")
	}
	if !strings.Contains(body, "Mostrando 1 de 3 tareas") {
		t.Fatalf("missing showing counter")
	}

	_, body = h.get("/admin/tasks?edit=1")
	if !strings.Contains(body, "Edit Task") || !strings.Contains(body, `action="/admin/tasks/1"`) {
		t.Fatalf("edit mode not rendered")
	}

	resp, _ := h.post("/admin/tasks/1?status=Pending", url.Values{
		"title": {"Deploy API v2"}, "category": {"Ops"}, "priority": {"High"},
		"status": {"In Progress"}, "assignee": {"1"},
	})
	expectRedirect(t, resp, "/admin/tasks?status=Pending")
	for _, task := range h.backend.Tasks() {
		if task.ID == "1" && (task.Title != "Deploy API v2" || task.UserID != "1" || task.Assignee != "Ana Ruiz") {
			t.Fatalf("task not replaced: %+v", task)
		}
	}

	resp, _ = h.post("/admin/tasks", url.Values{
		"title": {"Backlog"}, "category": {"Misc"}, "priority": {"Low"}, "status": {"Pending"},
	})
	expectRedirect(t, resp, "/admin/tasks")
	if len(h.backend.Tasks()) != 4 {
		t.Fatalf("admin create failed")
	}

	resp, _ = h.post("/admin/tasks/3/delete?page=1", nil)
	expectRedirect(t, resp, "/admin/tasks")
	if len(h.backend.Tasks()) != 3 {
		t.Fatalf("admin delete failed")
	}
}

func TestAdminInvalidPageParam(t *testing.T) {
	h := newHarness(t)
	h.login("ana@example.com", "admin123")
	if resp, _ := h.get("/admin/tasks?page=abc"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if resp, body := h.get("/admin/tasks?page=99"); resp.StatusCode != http.StatusOK || !strings.Contains(body, "Mostrando 3 de 3") {
		t.Fatalf("out of range page should clamp")
	}
}

func TestExportCSV(t *testing.T) {
	h := newHarness(t)
	h.login("ana@example.com", "admin123")

	resp, body := h.get("/dashboard/export.csv")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected export response: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	records, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	if err != nil || len(records) != 4 || records[0][1] != "title" {
		t.Fatalf("unexpected csv (%v): %v", err, records)
	}

	h.backend.Fail(http.StatusInternalServerError)
	if resp, _ := h.get("/dashboard/export.csv"); resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 when the backend fails, got %d", resp.StatusCode)
	}
}

func TestDashboardDelete(t *testing.T) {
	h := newHarness(t)
	h.login("ana@example.com", "admin123")

	resp, _ := h.post("/dashboard/tasks/2/delete", nil)
	expectRedirect(t, resp, "/dashboard")
	_, body := h.get("/dashboard")
	if strings.Contains(body, "Write docs") || !strings.Contains(body, `id="totalTasks">2<`) {
		t.Fatalf("deleted task still counted")
	}
}

func TestProfileEditAndSave(t *testing.T) {
	h := newHarness(t)
	h.login("luis@example.com", "user123")

	_, body := h.get("/profile")
	if strings.Contains(body, `id="profileForm"`) || !strings.Contains(body, "No especificado") {
		t.Fatalf("profile should start read only")
	}
	_, body = h.get("/profile?edit=1")
	if !strings.Contains(body, `id="profileForm"`) {
		t.Fatalf("edit mode should show the form")
	}

	_, body = h.post("/profile", url.Values{"fullName": {"Luis Gil Ortega"}, "phone": {"600111222"}, "department": {"Platform"}})
	if !strings.Contains(body, "Perfil actualizado correctamente") || !strings.Contains(body, "Luis Gil Ortega") {
		t.Fatalf("profile save not reflected")
	}
	_, body = h.get("/tasks")
	if !strings.Contains(body, `id="userName">Luis Gil Ortega<`) {
		t.Fatalf("header should use the updated session")
	}

	_, body = h.post("/profile", url.Values{"fullName": {" "}})
	if !strings.Contains(body, "Revisa los campos") || !strings.Contains(body, `id="profileForm"`) {
		t.Fatalf("invalid profile should stay in edit mode")
	}

	h.backend.Fail(http.StatusInternalServerError)
	_, body = h.post("/profile", url.Values{"fullName": {"Other"}})
	if !strings.Contains(body, "Error al actualizar el perfil") {
		t.Fatalf("backend failure should show the update error")
	}
}

func TestRegisterAndLogout(t *testing.T) {
	h := newHarness(t)

	_, body := h.post("/register", url.Values{
		"fullName": {"Eva Sanz"}, "email": {"eva@example.com"},
		"password": {"secret"}, "confirmPassword": {"secret"},
	})
	if !strings.Contains(body, "Registro exitoso") || !strings.Contains(body, `http-equiv="refresh"`) {
		t.Fatalf("expected success notice with redirect")
	}
	if len(h.backend.Users()) != 3 {
		t.Fatalf("user not created")
	}

	_, body = h.post("/register", url.Values{
		"fullName": {"Eva Sanz"}, "email": {"eva@example.com"},
		"password": {"secret"}, "confirmPassword": {"secret"},
	})
	if !strings.Contains(body, "El email ya está registrado") || len(h.backend.Users()) != 3 {
		t.Fatalf("duplicate email must be rejected")
	}

	expectRedirect(t, h.login("eva@example.com", "secret"), "/tasks")
	resp, _ := h.post("/logout", nil)
	expectRedirect(t, resp, "/")
	resp, _ = h.get("/tasks")
	expectRedirect(t, resp, "/")
}

func TestBrowserCookie(t *testing.T) {
	h := newHarness(t)

	req, _ := http.NewRequest(http.MethodGet, h.server.URL+"/", nil)
	req.AddCookie(&http.Cookie{Name: BrowserCookie, Value: "not-a-uuid"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()

	var issued string
	for _, c := range resp.Cookies() {
		if c.Name == BrowserCookie {
			issued = c.Value
			if !c.HttpOnly {
				t.Fatalf("browser cookie must be http only")
			}
		}
	}
	if _, err := uuid.Parse(issued); err != nil {
		t.Fatalf("expected a fresh uuid, got %q", issued)
	}
}

func TestSeparateBrowsersHaveSeparateSessions(t *testing.T) {
	h := newHarness(t)
	h.login("luis@example.com", "user123")

	other := newHarnessClient(h)
	resp, err := other.Get(h.server.URL + "/tasks")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	expectRedirect(t, resp, "/")
}

func newHarnessClient(h *harness) *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar, CheckRedirect: h.client.CheckRedirect}
}

func TestUnknownRoutes(t *testing.T) {
	h := newHarness(t)

	resp, body := h.get("/api/nope")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "endpoint not found") {
		t.Fatalf("unexpected api 404: %d %s", resp.StatusCode, body)
	}
	if resp, _ := h.get("/missing"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 page, got %d", resp.StatusCode)
	}
	if resp, body := h.get("/static/app.js"); resp.StatusCode != http.StatusOK || !strings.Contains(body, "data-autosubmit") {
		t.Fatalf("static script not served: %d", resp.StatusCode)
	}
}

func TestRenderMarkdownDropsRawHTML(t *testing.T) {
	out := string(renderMarkdown("**done** <script>alert(1)</script>"))
	if !strings.Contains(out, "<strong>done</strong>") || strings.Contains(out, "<script>") {
		t.Fatalf("unexpected markdown output: %s", out)
	}
	if renderMarkdown("   ") != "" {
		t.Fatalf("blank description should render nothing")
	}
}

func TestRefreshContent(t *testing.T) {
	r := refresh{URL: "/", Delay: 1500 * time.Millisecond}
	if got := r.Content(); got != "1.5;url=/" {
		t.Fatalf("unexpected refresh content %q", got)
	}
}
