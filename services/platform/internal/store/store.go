package store

import "github.com/voacom/commercial-intelligence-system/pkg/domain"

// Store defines persistence for users and design projects.
type Store interface {
	// users
	SaveUser(domain.User) error
	GetUserByEmail(email string) (domain.User, bool, error)

	// projects
	CreateProject(domain.Project) error
	GetProject(id string) (domain.Project, bool, error)
	ListProjectsByOwner(ownerID string) ([]domain.Project, error)
	UpdateProject(id string, title *string, content *domain.ProjectContent) (domain.Project, bool, error)
	DeleteProject(id string) (bool, error)
}
