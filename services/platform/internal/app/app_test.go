package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/voacom/commercial-intelligence-system/pkg/domain"
	"github.com/voacom/commercial-intelligence-system/services/platform/internal/store"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (f *fakeGenerator) GenerateText(_ context.Context, _, userPrompt string) (string, error) {
	f.calls++
	f.prompt = userPrompt
	return f.response, f.err
}

func newTestApp(t *testing.T, gen *fakeGenerator) *App {
	t.Helper()
	a, err := New(Config{
		Store:       store.NewMemoryStore(),
		TokenSecret: "test-secret",
		TokenTTL:    time.Minute,
		Generator:   gen,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func seedUser(t *testing.T, a *App) domain.User {
	t.Helper()
	user, err := a.RegisterUser("admin@czbank.com", "Admin", "admin123", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	a := newTestApp(t, nil)
	seedUser(t, a)

	tok, user, err := a.Login("admin@czbank.com", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok == "" || user.Email != "admin@czbank.com" {
		t.Fatalf("unexpected login result: %q %+v", tok, user)
	}
	resolved, ok := a.UserFromToken(tok)
	if !ok || resolved.ID != user.ID {
		t.Fatalf("token should resolve the user, ok=%v got=%+v", ok, resolved)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestApp(t, nil)
	seedUser(t, a)

	if _, _, err := a.Login("admin@czbank.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	// Unknown user gets the same error, no enumeration.
	if _, _, err := a.Login("ghost@czbank.com", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestProjectLifecycle(t *testing.T) {
	a := newTestApp(t, nil)
	user := seedUser(t, a)
	content := domain.ProjectContent{Slides: []domain.Slide{
		{Title: "封面", Content: "未来城市综合体"},
	}}

	created, err := a.CreateProject(user, "manual", "未来城市综合体", content)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("store must assign an id")
	}

	list, err := a.ListProjects(user)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Title != "未来城市综合体" {
		t.Fatalf("round trip failed: %+v", list)
	}

	newContent := domain.ProjectContent{Slides: []domain.Slide{
		{Title: "封面", Content: "修改后的内容"},
	}}
	updated, err := a.UpdateProject(user, created.ID, nil, &newContent)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatal("id changed on update")
	}
	if updated.Content.Slides[0].Content != "修改后的内容" {
		t.Fatalf("content not updated: %+v", updated.Content)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) && !updated.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("updated_at went backwards: %v < %v", updated.UpdatedAt, created.UpdatedAt)
	}

	if err := a.DeleteProject(user, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := a.DeleteProject(user, created.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("re-delete should be not found, got %v", err)
	}
	list, _ = a.ListProjects(user)
	if len(list) != 0 {
		t.Fatalf("deleted project still listed: %+v", list)
	}
}

func TestOwnershipEnforced(t *testing.T) {
	a := newTestApp(t, nil)
	owner := seedUser(t, a)
	other, err := a.RegisterUser("member@czbank.com", "Member", "member123", domain.RoleMember)
	if err != nil {
		t.Fatalf("register other: %v", err)
	}
	created, err := a.CreateProject(owner, "manual", "私有手册", domain.ProjectContent{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "hijacked"
	if _, err := a.UpdateProject(other, created.ID, &title, nil); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on update, got %v", err)
	}
	if err := a.DeleteProject(other, created.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on delete, got %v", err)
	}
}

func TestGenerateManual(t *testing.T) {
	gen := &fakeGenerator{response: `{"slides":[{"title":"封面","content":"大纲"}]}`}
	a := newTestApp(t, gen)

	outline, err := a.GenerateManual(context.Background(), "未来城市综合体", "", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(outline.Slides) != 1 || outline.Slides[0].Title != "封面" {
		t.Fatalf("unexpected outline: %+v", outline)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generation call, got %d", gen.calls)
	}
	// Defaults fill in when industry/audience are omitted.
	for _, want := range []string{"未来城市综合体", "General", "Potential Investors"} {
		if !strings.Contains(gen.prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestGenerateManualRequiresTopic(t *testing.T) {
	gen := &fakeGenerator{}
	a := newTestApp(t, gen)
	if _, err := a.GenerateManual(context.Background(), "   ", "x", "y"); !errors.Is(err, ErrTopicRequired) {
		t.Fatalf("expected ErrTopicRequired, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("generator must not be called for empty topic")
	}
}

func TestGenerateManualSurfacesBackendFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	a := newTestApp(t, gen)
	if _, err := a.GenerateManual(context.Background(), "主题", "", ""); err == nil {
		t.Fatal("expected generation failure")
	}
}
