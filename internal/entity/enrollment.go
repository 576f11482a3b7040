package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnrollmentInProgress = "IN_PROGRESS"
	EnrollmentCompleted  = "COMPLETED"
)

type Enrollment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	User               *User             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CourseID           uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course;index" json:"course_id"`
	Course             *Course           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	EnrolledAt         time.Time         `gorm:"not null" json:"enrolled_at"`
	Status             string            `gorm:"size:20;not null;default:IN_PROGRESS" json:"status"`
	ProgressPercentage float64           `gorm:"not null;default:0" json:"progress_percentage"`
	LastWatchedLesson  *uuid.UUID        `gorm:"type:uuid" json:"last_watched_lesson_id"`
	CompletedLessons   []CompletedLesson `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now()
	}
	if e.Status == "" {
		e.Status = EnrollmentInProgress
	}
	return
}

// CompletedLesson records that a lesson was finished within an enrollment.
type CompletedLesson struct {
	EnrollmentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"enrollment_id"`
	LessonID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"lesson_id"`
	CompletedAt  time.Time `gorm:"autoCreateTime" json:"completed_at"`
}

func (CompletedLesson) TableName() string {
	return "enrollment_completed_lessons"
}

// CanBeAccessedBy reports whether u may read or change the enrollment.
func (e *Enrollment) CanBeAccessedBy(u *User) bool {
	return u != nil && (u.IsAdmin() || e.UserID == u.ID)
}
