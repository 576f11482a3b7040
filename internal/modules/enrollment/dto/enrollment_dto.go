package dto

import (
	"time"

	"anoa.com/courseplatform/internal/entity"
	"github.com/google/uuid"
)

// EnrollRequest enrolls UserID, or the caller when it is omitted, in CourseID.
type EnrollRequest struct {
	CourseID uuid.UUID  `json:"course_id" binding:"required"`
	UserID   *uuid.UUID `json:"user_id"`
}

type UpdateProgressRequest struct {
	LessonID uuid.UUID `json:"lesson_id" binding:"required"`
}

type EnrolledUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

type EnrolledCourseResponse struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type EnrollmentResponse struct {
	ID                  uuid.UUID               `json:"id"`
	User                *EnrolledUserResponse   `json:"user,omitempty"`
	Course              *EnrolledCourseResponse `json:"course,omitempty"`
	UserID              uuid.UUID               `json:"user_id"`
	CourseID            uuid.UUID               `json:"course_id"`
	EnrolledAt          time.Time               `json:"enrolled_at"`
	Status              string                  `json:"status"`
	ProgressPercentage  float64                 `json:"progress_percentage"`
	CompletedLessonIDs  []uuid.UUID             `json:"completed_lesson_ids"`
	LastWatchedLessonID *uuid.UUID              `json:"last_watched_lesson_id"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

func NewEnrollmentResponse(e *entity.Enrollment) EnrollmentResponse {
	res := EnrollmentResponse{
		ID:                  e.ID,
		UserID:              e.UserID,
		CourseID:            e.CourseID,
		EnrolledAt:          e.EnrolledAt,
		Status:              e.Status,
		ProgressPercentage:  e.ProgressPercentage,
		CompletedLessonIDs:  make([]uuid.UUID, 0, len(e.CompletedLessons)),
		LastWatchedLessonID: e.LastWatchedLesson,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
	for _, cl := range e.CompletedLessons {
		res.CompletedLessonIDs = append(res.CompletedLessonIDs, cl.LessonID)
	}
	if e.User != nil {
		res.User = &EnrolledUserResponse{
			ID:        e.User.ID,
			Email:     e.User.Email,
			FirstName: e.User.FirstName,
			LastName:  e.User.LastName,
		}
	}
	if e.Course != nil {
		res.Course = &EnrolledCourseResponse{ID: e.Course.ID, Title: e.Course.Title}
	}
	return res
}
