package gallery

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/voacom/commercial-intelligence-system/pkg/domain"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/authsession"
)

// Lister is the slice of the platform client the gallery needs.
type Lister interface {
	ListProjects(ctx context.Context, token string) ([]domain.Project, error)
}

// Controller keeps per-type gallery item lists. Lists are replaced wholesale
// on refresh; a failed refresh keeps the previous (stale) list rather than
// clearing it.
type Controller struct {
	mu      sync.Mutex
	items   map[string][]domain.GalleryItem
	session *authsession.Session
	client  Lister
	group   singleflight.Group
}

// New constructs an empty gallery controller.
func New(session *authsession.Session, client Lister) *Controller {
	return &Controller{
		items:   make(map[string][]domain.GalleryItem),
		session: session,
		client:  client,
	}
}

// Refresh replaces the item list for typ from the platform. Without a token
// it is a no-op: the platform would only reject the call. The platform
// returns every project of the caller; filtering by type happens here.
// Concurrent refreshes for the same type are coalesced into one fetch.
func (c *Controller) Refresh(ctx context.Context, typ string) error {
	token, ok := c.session.Token()
	if !ok {
		return nil
	}
	_, err, _ := c.group.Do(typ, func() (any, error) {
		projects, err := c.client.ListProjects(ctx, token)
		if err != nil {
			slog.Warn("gallery refresh failed, keeping stale items", "type", typ, "err", err)
			return nil, err
		}
		items := make([]domain.GalleryItem, 0, len(projects))
		for _, p := range projects {
			if p.Type != typ {
				continue
			}
			items = append(items, domain.ItemFromProject(p))
		}
		c.mu.Lock()
		c.items[typ] = items
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// Items returns a copy of the current list for typ.
func (c *Controller) Items(typ string) []domain.GalleryItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.GalleryItem, len(c.items[typ]))
	copy(out, c.items[typ])
	return out
}

// Find locates an item by id within typ.
func (c *Controller) Find(typ, id string) (domain.GalleryItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items[typ] {
		if item.ID == id {
			return item, true
		}
	}
	return domain.GalleryItem{}, false
}
