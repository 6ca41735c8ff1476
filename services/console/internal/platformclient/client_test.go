package platformclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voacom/commercial-intelligence-system/pkg/domain"
)

func TestLoginReturnsAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req["username"] != "admin@czbank.com" || req["password"] != "admin123" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Incorrect username or password"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1", "token_type": "bearer"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	token, err := c.Login(context.Background(), "admin@czbank.com", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("token = %q, want tok-1", token)
	}

	_, err = c.Login(context.Background(), "admin@czbank.com", "wrong")
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized classification, got %v", err)
	}
}

func TestProjectOperationsClassifyErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		switch {
		case r.URL.Path == "/api/design/projects" && r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode([]domain.Project{{ID: "p-1", Title: "测试", Type: "manual"}})
		case r.URL.Path == "/api/design/projects/missing":
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Project not found"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	projects, err := c.ListProjects(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "p-1" {
		t.Fatalf("unexpected projects: %+v", projects)
	}

	if _, err := c.ListProjects(context.Background(), "stale"); !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := c.DeleteProject(context.Background(), "tok-1", "missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDuplicateProjectComposesCreate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/design/projects" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Project{ID: "p-2", Title: captured["title"].(string)})
	}))
	defer srv.Close()

	source := domain.Project{
		ID:    "p-1",
		Type:  "manual",
		Title: "未来城市综合体",
		Content: domain.ProjectContent{
			Slides: []domain.Slide{{Title: "封面", Content: "概述"}},
		},
	}
	c := NewClient(srv.URL)
	copyProject, err := c.DuplicateProject(context.Background(), "tok-1", source)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if copyProject.ID == source.ID {
		t.Fatal("duplicate must get a fresh id")
	}
	if captured["title"] != "未来城市综合体 (副本)" {
		t.Fatalf("title = %v, want suffixed copy", captured["title"])
	}
	if captured["type"] != "manual" {
		t.Fatalf("type = %v, want manual", captured["type"])
	}
}

func TestGenerateClassifiesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("generate must not send a token, got %q", r.Header.Get("Authorization"))
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["topic"] == "bad" {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "AI Generation failed: quota exceeded"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Handbook generated successfully",
			"data":    domain.Outline{Slides: []domain.Slide{{Title: "封面"}}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	outline, err := c.Generate(context.Background(), "未来城市综合体", "", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(outline.Slides) != 1 {
		t.Fatalf("unexpected outline: %+v", outline)
	}

	_, err = c.Generate(context.Background(), "bad", "", "")
	if !IsGenerationFailure(err) {
		t.Fatalf("expected generation failure, got %v", err)
	}
}

func TestTransportFailureClassifiedAsNetwork(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.ListProjects(context.Background(), "tok-1")
	if !IsNetworkFailure(err) {
		t.Fatalf("expected network failure, got %v", err)
	}
	if IsUnauthorized(err) {
		t.Fatal("network failure must not classify as unauthorized")
	}
}
