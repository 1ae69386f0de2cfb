package session

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"crudtask/internal/models"
)

func quietManager(storage Storage) *Manager {
	return NewManager(storage, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	m := quietManager(storage)

	want := models.Session{UserID: "2", FullName: "Luis Gil", Email: "luis@example.com", Role: models.RoleUser}
	if err := m.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if flag, ok, _ := storage.Read(ctx, KeyIsLoggedIn); !ok || flag != "true" {
		t.Fatalf("expected login flag, got %q %v", flag, ok)
	}

	got, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || *got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, key := range []string{KeyUser, KeyIsLoggedIn} {
		if _, ok, _ := storage.Read(ctx, key); ok {
			t.Fatalf("key %q survived clear", key)
		}
	}
}

func TestMalformedRecordIsTreatedAsLoggedOut(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"not json":   "{not json",
		"no user id": `{"fullName":"Ghost","role":"admin"}`,
	} {
		t.Run(name, func(t *testing.T) {
			storage := NewMemoryStorage()
			_ = storage.Write(ctx, KeyUser, raw)
			_ = storage.Write(ctx, KeyIsLoggedIn, "true")

			got, err := quietManager(storage).Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got != nil {
				t.Fatalf("expected no session, got %+v", got)
			}
			if _, ok, _ := storage.Read(ctx, KeyUser); ok {
				t.Fatalf("malformed record should be cleared")
			}
		})
	}
}

func TestCheckAuth(t *testing.T) {
	admin := models.Session{UserID: "1", FullName: "Ana", Role: models.RoleAdmin}
	user := models.Session{UserID: "2", FullName: "Luis", Role: models.RoleUser}

	tests := []struct {
		name     string
		session  *models.Session
		page     Page
		redirect string
	}{
		{name: "entry anonymous", page: PageEntry},
		{name: "entry admin", session: &admin, page: PageEntry, redirect: DashboardPath},
		{name: "entry user", session: &user, page: PageEntry, redirect: UserTasksPath},
		{name: "tasks anonymous", page: PageUserTasks, redirect: EntryPath},
		{name: "tasks user", session: &user, page: PageUserTasks},
		{name: "tasks admin", session: &admin, page: PageUserTasks, redirect: DashboardPath},
		{name: "dashboard user", session: &user, page: PageDashboard, redirect: UserTasksPath},
		{name: "dashboard admin", session: &admin, page: PageDashboard},
		{name: "admin tasks user", session: &user, page: PageAdminTasks, redirect: UserTasksPath},
		{name: "admin tasks admin", session: &admin, page: PageAdminTasks},
		{name: "profile user", session: &user, page: PageProfile},
		{name: "profile admin", session: &admin, page: PageProfile},
		{name: "profile anonymous", page: PageProfile, redirect: EntryPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m := quietManager(NewMemoryStorage())
			if tt.session != nil {
				if err := m.Save(ctx, *tt.session); err != nil {
					t.Fatalf("save: %v", err)
				}
			}

			d, err := CheckAuth(ctx, m, tt.page)
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if d.Redirect != tt.redirect {
				t.Fatalf("redirect = %q, want %q", d.Redirect, tt.redirect)
			}
			if d.Allowed() && tt.page != PageEntry && d.Session == nil {
				t.Fatalf("allowed page without session")
			}
		})
	}
}
