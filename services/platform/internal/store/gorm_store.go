package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/voacom/commercial-intelligence-system/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &ProjectModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "password_hash", "role"}),
	}).Create(&model).Error
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// CreateProject inserts a new project row.
func (s *GormStore) CreateProject(p domain.Project) error {
	model, err := projectToModel(p)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	return s.db.Create(&model).Error
}

// GetProject returns a project by ID.
func (s *GormStore) GetProject(id string) (domain.Project, bool, error) {
	var model ProjectModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Project{}, false, nil
		}
		return domain.Project{}, false, err
	}
	return projectFromModel(model), true, nil
}

// ListProjectsByOwner returns the owner's projects, most recently updated first.
func (s *GormStore) ListProjectsByOwner(ownerID string) ([]domain.Project, error) {
	var models []ProjectModel
	if err := s.db.Where("owner_id = ?", ownerID).Order("updated_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Project, 0, len(models))
	for _, m := range models {
		res = append(res, projectFromModel(m))
	}
	return res, nil
}

// UpdateProject applies a partial update and bumps updated_at.
// The second return is false when the id is unknown.
func (s *GormStore) UpdateProject(id string, title *string, content *domain.ProjectContent) (domain.Project, bool, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if title != nil {
		updates["title"] = *title
	}
	if content != nil {
		encoded, err := json.Marshal(content)
		if err != nil {
			return domain.Project{}, false, fmt.Errorf("encode content: %w", err)
		}
		updates["content"] = encoded
	}
	res := s.db.Model(&ProjectModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return domain.Project{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Project{}, false, nil
	}
	return s.GetProject(id)
}

// DeleteProject removes a project permanently. Returns false when the id is
// unknown.
func (s *GormStore) DeleteProject(id string) (bool, error) {
	res := s.db.Delete(&ProjectModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
