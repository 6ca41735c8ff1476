package store

import (
	"testing"
	"time"

	"github.com/voacom/commercial-intelligence-system/pkg/domain"
)

func sampleProject(id, owner, title string, updated time.Time) domain.Project {
	return domain.Project{
		ID:      id,
		OwnerID: owner,
		Type:    "manual",
		Title:   title,
		Content: domain.ProjectContent{Slides: []domain.Slide{
			{Title: "封面", Content: title},
		}},
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestMemoryStoreProjectRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()
	if err := s.CreateProject(sampleProject("p1", "u1", "招商手册A", now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, ok, err := s.GetProject("p1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Title != "招商手册A" || len(got.Content.Slides) != 1 {
		t.Fatalf("unexpected project: %+v", got)
	}

	list, err := s.ListProjectsByOwner("u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "p1" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestMemoryStoreListOrdersByUpdatedAtDesc(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now().UTC()
	_ = s.CreateProject(sampleProject("old", "u1", "旧手册", base.Add(-time.Hour)))
	_ = s.CreateProject(sampleProject("new", "u1", "新手册", base))
	_ = s.CreateProject(sampleProject("other", "u2", "他人手册", base))

	list, err := s.ListProjectsByOwner("u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(list))
	}
	if list[0].ID != "new" || list[1].ID != "old" {
		t.Fatalf("expected newest first, got %s then %s", list[0].ID, list[1].ID)
	}
}

func TestMemoryStoreUpdateProject(t *testing.T) {
	s := NewMemoryStore()
	created := time.Now().UTC().Add(-time.Minute)
	_ = s.CreateProject(sampleProject("p1", "u1", "原标题", created))

	newTitle := "新标题"
	newContent := domain.ProjectContent{Slides: []domain.Slide{
		{Title: "改过的页", Content: "内容"},
	}}
	got, ok, err := s.UpdateProject("p1", &newTitle, &newContent)
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if got.Title != newTitle || got.Content.Slides[0].Title != "改过的页" {
		t.Fatalf("update not applied: %+v", got)
	}
	if !got.UpdatedAt.After(created) {
		t.Fatalf("updated_at should advance: %v vs %v", got.UpdatedAt, created)
	}
	if got.ID != "p1" {
		t.Fatalf("id must never change, got %q", got.ID)
	}

	if _, ok, _ := s.UpdateProject("missing", &newTitle, nil); ok {
		t.Fatal("update of unknown id should report not found")
	}
}

func TestMemoryStoreDeleteProject(t *testing.T) {
	s := NewMemoryStore()
	_ = s.CreateProject(sampleProject("p1", "u1", "待删除", time.Now().UTC()))

	ok, err := s.DeleteProject("p1")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if _, found, _ := s.GetProject("p1"); found {
		t.Fatal("project should be gone after delete")
	}
	// Deleting again reports not found, never resurrects.
	ok, err = s.DeleteProject("p1")
	if err != nil || ok {
		t.Fatalf("re-delete: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreUsers(t *testing.T) {
	s := NewMemoryStore()
	u := domain.User{ID: "u1", Email: "admin@czbank.com", Role: domain.RoleAdmin, PasswordHash: "x"}
	if err := s.SaveUser(u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	got, ok, err := s.GetUserByEmail("admin@czbank.com")
	if err != nil || !ok {
		t.Fatalf("get user: ok=%v err=%v", ok, err)
	}
	if got.ID != "u1" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if _, ok, _ := s.GetUserByEmail("nobody@czbank.com"); ok {
		t.Fatal("unknown email should not resolve")
	}
}
