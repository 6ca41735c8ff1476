package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voacom/commercial-intelligence-system/pkg/ai"
	"github.com/voacom/commercial-intelligence-system/pkg/auth"
	"github.com/voacom/commercial-intelligence-system/pkg/domain"
	"github.com/voacom/commercial-intelligence-system/services/platform/internal/store"
	"github.com/voacom/commercial-intelligence-system/services/platform/internal/token"
)

const (
	defaultIndustry = "General"
	defaultAudience = "Potential Investors"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	TokenSecret string
	TokenTTL    time.Duration
	Generator   ai.TextGenerator
	Store       store.Store // optional override, used by tests
}

// App wires the project store, token issuer and generation collaborator.
type App struct {
	store     store.Store
	tokens    *token.Issuer
	generator ai.TextGenerator
}

// New constructs the application service.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		gs, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		dataStore = gs
	}
	issuer, err := token.NewIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init token issuer: %w", err)
	}
	return &App{
		store:     dataStore,
		tokens:    issuer,
		generator: cfg.Generator,
	}, nil
}

// Login validates credentials and issues an access token.
func (a *App) Login(username, password string) (string, domain.User, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	user, ok, err := a.store.GetUserByEmail(username)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return "", domain.User{}, ErrInvalidCredentials
	}
	accessToken, err := a.tokens.Issue(user.Email)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("issue token: %w", err)
	}
	return accessToken, user, nil
}

// UserFromToken resolves a user from a bearer token.
func (a *App) UserFromToken(bearer string) (domain.User, bool) {
	email, err := a.tokens.Subject(bearer)
	if err != nil {
		return domain.User{}, false
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil || !ok {
		return domain.User{}, false
	}
	return user, true
}

// RegisterUser creates a user account with a hashed password. Used by seeding
// and tests; the console has no self-service signup.
func (a *App) RegisterUser(email, name, password string, role domain.UserRole) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: auth.HashPassword(password),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// ListProjects returns the caller's projects, most recently updated first.
func (a *App) ListProjects(user domain.User) ([]domain.Project, error) {
	return a.store.ListProjectsByOwner(user.ID)
}

// CreateProject persists a new project and assigns its id.
func (a *App) CreateProject(user domain.User, typ, title string, content domain.ProjectContent) (domain.Project, error) {
	if strings.TrimSpace(typ) == "" {
		return domain.Project{}, ErrTypeRequired
	}
	if strings.TrimSpace(title) == "" {
		return domain.Project{}, ErrTitleRequired
	}
	now := time.Now().UTC()
	project := domain.Project{
		ID:        uuid.NewString(),
		OwnerID:   user.ID,
		Type:      typ,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateProject(project); err != nil {
		return domain.Project{}, fmt.Errorf("save project: %w", err)
	}
	return project, nil
}

// UpdateProject applies a partial update after an ownership check.
func (a *App) UpdateProject(user domain.User, id string, title *string, content *domain.ProjectContent) (domain.Project, error) {
	existing, ok, err := a.store.GetProject(id)
	if err != nil {
		return domain.Project{}, fmt.Errorf("get project: %w", err)
	}
	if !ok {
		return domain.Project{}, ErrProjectNotFound
	}
	if existing.OwnerID != user.ID {
		return domain.Project{}, ErrNotOwner
	}
	updated, ok, err := a.store.UpdateProject(id, title, content)
	if err != nil {
		return domain.Project{}, fmt.Errorf("update project: %w", err)
	}
	if !ok {
		return domain.Project{}, ErrProjectNotFound
	}
	return updated, nil
}

// DeleteProject removes a project permanently after an ownership check.
func (a *App) DeleteProject(user domain.User, id string) error {
	existing, ok, err := a.store.GetProject(id)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if !ok {
		return ErrProjectNotFound
	}
	if existing.OwnerID != user.ID {
		return ErrNotOwner
	}
	deleted, err := a.store.DeleteProject(id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if !deleted {
		return ErrProjectNotFound
	}
	return nil
}

// GenerateManual asks the generation collaborator for a manual outline.
// Industry and audience default like the original request model; topic is
// mandatory and enforced here as well as at the console boundary.
func (a *App) GenerateManual(ctx context.Context, topic, industry, targetAudience string) (domain.Outline, error) {
	if strings.TrimSpace(topic) == "" {
		return domain.Outline{}, ErrTopicRequired
	}
	if strings.TrimSpace(industry) == "" {
		industry = defaultIndustry
	}
	if strings.TrimSpace(targetAudience) == "" {
		targetAudience = defaultAudience
	}
	if a.generator == nil {
		return domain.Outline{}, fmt.Errorf("generation backend not configured")
	}
	prompt := ai.ManualOutlinePrompt(topic, industry, targetAudience)
	raw, err := a.generator.GenerateText(ctx, ai.OutlineSystemPrompt, prompt)
	if err != nil {
		return domain.Outline{}, fmt.Errorf("AI Generation failed: %w", err)
	}
	return ai.ParseOutline(raw), nil
}
