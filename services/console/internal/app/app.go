package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voacom/commercial-intelligence-system/pkg/domain"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/authsession"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/editsession"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/features"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/gallery"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/platformclient"
)

var (
	ErrFeatureNotFound    = errors.New("unknown feature")
	ErrItemNotFound       = errors.New("item not found")
	ErrConfirmRequired    = errors.New("deletion requires explicit confirmation")
	ErrNotAuthenticated   = errors.New("not logged in")
	ErrUnsupportedFeature = errors.New("feature has no gallery")
)

// Client is the full platform surface the console consumes.
type Client interface {
	editsession.API
	gallery.Lister
	DeleteProject(ctx context.Context, token, id string) error
	DuplicateProject(ctx context.Context, token string, source domain.Project) (domain.Project, error)
	DashboardStats(ctx context.Context) (map[string]any, error)
}

// App wires the console controllers around one auth session.
type App struct {
	client  Client
	session *authsession.Session
	gallery *gallery.Controller
	edit    *editsession.Controller
}

// New constructs the console application. Gallery refreshes triggered by the
// edit session run in background goroutines so a slow platform never blocks
// an editing response.
func New(client Client) *App {
	session := authsession.New()
	galleryCtl := gallery.New(session, client)
	refresh := func(typ string) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = galleryCtl.Refresh(ctx, typ)
		}()
	}
	editCtl := editsession.New(session, client, refresh)
	session.OnLogout(editCtl.ForceClose)
	return &App{
		client:  client,
		session: session,
		gallery: galleryCtl,
		edit:    editCtl,
	}
}

// Session exposes the auth session for the HTTP layer.
func (a *App) Session() *authsession.Session { return a.session }

// EditSession exposes the edit session controller.
func (a *App) EditSession() *editsession.Controller { return a.edit }

// Login authenticates against the platform and stores the token.
func (a *App) Login(ctx context.Context, username, password string) error {
	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	a.session.Login(token)
	return nil
}

// Logout drops the token and force-closes any edit session.
func (a *App) Logout() {
	a.session.Logout()
}

// Features lists the registry.
func (a *App) Features() []features.Feature {
	return features.All()
}

// FeatureView resolves a feature's display payload by its presentation mode.
func (a *App) FeatureView(ctx context.Context, id string) (features.Feature, any, error) {
	feature, ok := features.Lookup(id)
	if !ok {
		return features.Feature{}, nil, ErrFeatureNotFound
	}
	switch feature.Mode {
	case features.ModeGallery:
		if err := a.gallery.Refresh(ctx, feature.ID); err != nil && platformclient.IsUnauthorized(err) {
			a.session.ExpireAndClose(err)
			return features.Feature{}, nil, err
		}
		return feature, map[string]any{"items": a.gallery.Items(feature.ID)}, nil
	case features.ModeAnalytics:
		stats, err := a.client.DashboardStats(ctx)
		if err != nil {
			return features.Feature{}, nil, err
		}
		return feature, map[string]any{"stats": stats, "metrics": analyticsMetrics()}, nil
	case features.ModeTable:
		return feature, map[string]any{"rows": tableRows(), "total": 128}, nil
	default:
		return features.Feature{}, nil, ErrFeatureNotFound
	}
}

// GalleryItems returns the cached list without refreshing.
func (a *App) GalleryItems(typ string) []domain.GalleryItem {
	return a.gallery.Items(typ)
}

// RefreshGallery reloads the list for typ.
func (a *App) RefreshGallery(ctx context.Context, typ string) error {
	err := a.gallery.Refresh(ctx, typ)
	if err != nil {
		a.session.ExpireAndClose(err)
	}
	return err
}

// DuplicateProject clones an already listed project and refreshes the list.
func (a *App) DuplicateProject(ctx context.Context, typ, id string) (domain.Project, error) {
	if err := galleryFeature(typ); err != nil {
		return domain.Project{}, err
	}
	token, ok := a.session.Token()
	if !ok {
		return domain.Project{}, ErrNotAuthenticated
	}
	item, ok := a.gallery.Find(typ, id)
	if !ok {
		if err := a.gallery.Refresh(ctx, typ); err != nil {
			a.session.ExpireAndClose(err)
			return domain.Project{}, err
		}
		if item, ok = a.gallery.Find(typ, id); !ok {
			return domain.Project{}, ErrItemNotFound
		}
	}
	source := domain.Project{
		ID:      item.ID,
		Type:    item.Type,
		Title:   item.Title,
		Content: item.Content,
	}
	copyProject, err := a.client.DuplicateProject(ctx, token, source)
	if err != nil {
		a.session.ExpireAndClose(err)
		return domain.Project{}, err
	}
	_ = a.gallery.Refresh(ctx, typ)
	return copyProject, nil
}

// DeleteProject removes a project. confirmed mirrors the UI confirm dialog;
// an unconfirmed delete never reaches the platform.
func (a *App) DeleteProject(ctx context.Context, typ, id string, confirmed bool) error {
	if err := galleryFeature(typ); err != nil {
		return err
	}
	if !confirmed {
		return ErrConfirmRequired
	}
	token, ok := a.session.Token()
	if !ok {
		return ErrNotAuthenticated
	}
	if err := a.client.DeleteProject(ctx, token, id); err != nil {
		a.session.ExpireAndClose(err)
		return err
	}
	_ = a.gallery.Refresh(ctx, typ)
	return nil
}

// OpenProjectForEditing looks up a listed project and enters the editor.
func (a *App) OpenProjectForEditing(ctx context.Context, typ, id string) error {
	if err := galleryFeature(typ); err != nil {
		return err
	}
	item, ok := a.gallery.Find(typ, id)
	if !ok {
		if err := a.gallery.Refresh(ctx, typ); err != nil {
			a.session.ExpireAndClose(err)
			return err
		}
		if item, ok = a.gallery.Find(typ, id); !ok {
			return ErrItemNotFound
		}
	}
	a.edit.OpenProject(domain.Project{
		ID:      item.ID,
		Type:    item.Type,
		Title:   item.Title,
		Content: item.Content,
	})
	return nil
}

func galleryFeature(typ string) error {
	f, ok := features.Lookup(typ)
	if !ok || f.Mode != features.ModeGallery {
		return ErrUnsupportedFeature
	}
	return nil
}

func analyticsMetrics() []map[string]any {
	return []map[string]any{
		{"label": "总曝光量 (Impression)", "value": "2,450,000", "trend": "+12.5%"},
		{"label": "线索转化 (Leads)", "value": "3,842", "trend": "+8.2%"},
		{"label": "投入产出比 (ROI)", "value": "1:4.5", "trend": "-2.1%"},
	}
}

func tableRows() []map[string]any {
	rows := make([]map[string]any, 0, 5)
	for i := 1; i <= 5; i++ {
		rows = append(rows, map[string]any{
			"id":         2024000 + i,
			"title":      fmt.Sprintf("示例数据记录 - %d", i),
			"status":     "运行中",
			"created_at": fmt.Sprintf("2024-03-2%d", i),
		})
	}
	return rows
}
