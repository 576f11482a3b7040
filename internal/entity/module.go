package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Module is an ordered section of a course. Title and order index are unique per course.
type Module struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null;uniqueIndex:idx_module_course_title" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	OrderIndex  int       `gorm:"not null;uniqueIndex:idx_module_course_order" json:"order_index"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_module_course_title;uniqueIndex:idx_module_course_order" json:"course_id"`
	Course      *Course   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Module) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
