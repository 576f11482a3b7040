package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lesson belongs to a module. Title and order index are unique per module.
type Lesson struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string    `gorm:"size:100;not null;uniqueIndex:idx_lesson_module_title" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	VideoURL        string    `gorm:"type:text" json:"video_url"`
	DurationSeconds int       `gorm:"not null;default:0" json:"duration_seconds"`
	OrderIndex      int       `gorm:"not null;uniqueIndex:idx_lesson_module_order" json:"order_index"`
	ModuleID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lesson_module_title;uniqueIndex:idx_lesson_module_order" json:"module_id"`
	Module          *Module   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}
