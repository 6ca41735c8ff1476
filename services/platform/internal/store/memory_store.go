package store

import (
	"sync"
	"time"

	"github.com/voacom/commercial-intelligence-system/pkg/domain"
)

// MemoryStore keeps users and projects in-process. It backs tests and local
// development where no Postgres is available.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User // key: user ID
	email    map[string]string      // email -> user ID
	projects map[string]domain.Project
	order    []string // project IDs in insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		email:    make(map[string]string),
		projects: make(map[string]domain.Project),
	}
}

// SaveUser stores or replaces a user record.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

// CreateProject inserts a project and tracks insertion order.
func (m *MemoryStore) CreateProject(p domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.projects[p.ID]; !exists {
		m.order = append(m.order, p.ID)
	}
	m.projects[p.ID] = p
	return nil
}

// GetProject returns a project by ID.
func (m *MemoryStore) GetProject(id string) (domain.Project, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	return p, ok, nil
}

// ListProjectsByOwner returns the owner's projects, most recently updated first.
func (m *MemoryStore) ListProjectsByOwner(ownerID string) ([]domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Project, 0, len(m.order))
	for _, id := range m.order {
		if p, ok := m.projects[id]; ok && p.OwnerID == ownerID {
			res = append(res, p)
		}
	}
	// Stable sort on updated_at, newest first, matching the SQL ordering.
	for i := 1; i < len(res); i++ {
		for j := i; j > 0 && res[j].UpdatedAt.After(res[j-1].UpdatedAt); j-- {
			res[j], res[j-1] = res[j-1], res[j]
		}
	}
	return res, nil
}

// UpdateProject applies a partial update and bumps UpdatedAt.
func (m *MemoryStore) UpdateProject(id string, title *string, content *domain.ProjectContent) (domain.Project, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return domain.Project{}, false, nil
	}
	if title != nil {
		p.Title = *title
	}
	if content != nil {
		p.Content = *content
	}
	p.UpdatedAt = time.Now().UTC()
	m.projects[id] = p
	return p, true, nil
}

// DeleteProject removes a project permanently.
func (m *MemoryStore) DeleteProject(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return false, nil
	}
	delete(m.projects, id)
	for i, pid := range m.order {
		if pid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}
