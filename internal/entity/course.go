package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"size:100;uniqueIndex;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	ThumbnailURL *string   `gorm:"type:text" json:"thumbnail_url"`
	Published    bool      `gorm:"not null;default:false" json:"published"`
	InstructorID uuid.UUID `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Instructor   User      `gorm:"constraint:OnDelete:CASCADE" json:"instructor"`
	CategoryID   uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Category     Category  `gorm:"constraint:OnDelete:RESTRICT" json:"category"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// IsOwnedBy reports whether userID is the course's instructor.
func (c *Course) IsOwnedBy(userID uuid.UUID) bool {
	return c.InstructorID == userID
}

// CanBeManagedBy reports whether u may edit the course and its modules and lessons.
func (c *Course) CanBeManagedBy(u *User) bool {
	return u != nil && (u.IsAdmin() || c.IsOwnedBy(u.ID))
}
