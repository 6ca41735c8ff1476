package domain

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleMember  UserRole = "member"
)

// Slide is one page of generated presentation content. Title and Content are
// user-facing text; ImageDescription and Keywords drive image generation and
// are optional.
type Slide struct {
	Title            string `json:"title"`
	Content          string `json:"content"`
	ImageDescription string `json:"image_description,omitempty"`
	Keywords         string `json:"keywords,omitempty"`
}

// Outline is an ephemeral generation result. It has no identity and is never
// persisted as-is; it exists only between a generation call and the first
// successful project create.
type Outline struct {
	Slides []Slide `json:"slides"`
}

// ProjectContent is the persisted content payload of a project.
type ProjectContent struct {
	Slides []Slide `json:"slides"`
}

// Project is a persisted, typed unit of generated content. ID is assigned by
// the store at creation and never changes.
type Project struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Content   ProjectContent `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GalleryItem is a read-only projection of a Project for list display. It is
// derived state: replaced wholesale after each store mutation, never patched
// in place.
type GalleryItem struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Type      string         `json:"type"`
	Content   ProjectContent `json:"content"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// ItemFromProject projects a Project into its gallery representation.
func ItemFromProject(p Project) GalleryItem {
	return GalleryItem{
		ID:        p.ID,
		Title:     p.Title,
		UpdatedAt: p.UpdatedAt,
		Type:      p.Type,
		Content:   p.Content,
	}
}
