package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/voacom/commercial-intelligence-system/pkg/domain"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type ProjectModel struct {
	ID        string         `gorm:"primaryKey"`
	OwnerID   string         `gorm:"not null;index"`
	Type      string         `gorm:"not null;index"`
	Title     string         `gorm:"not null"`
	Content   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null;index"`
}

func (ProjectModel) TableName() string { return "projects" }

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Role:         domain.UserRole(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}

func projectToModel(p domain.Project) (ProjectModel, error) {
	content, err := json.Marshal(p.Content)
	if err != nil {
		return ProjectModel{}, err
	}
	return ProjectModel{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Type:      p.Type,
		Title:     p.Title,
		Content:   datatypes.JSON(content),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func projectFromModel(m ProjectModel) domain.Project {
	var content domain.ProjectContent
	// Content written by this store is always valid JSON; a decode failure
	// yields an empty slide set rather than a hard error.
	_ = json.Unmarshal(m.Content, &content)
	return domain.Project{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Type:      m.Type,
		Title:     m.Title,
		Content:   content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
