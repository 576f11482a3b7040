package dto

import (
	"time"

	"anoa.com/courseplatform/internal/entity"
	commonDto "anoa.com/courseplatform/pkg/dto"
	"github.com/google/uuid"
)

type CreateCourseRequest struct {
	Title        string     `json:"title" binding:"required,min=5,max=100,course_title"`
	Description  string     `json:"description" binding:"max=500"`
	ThumbnailURL *string    `json:"thumbnail_url" binding:"omitempty,url"`
	Published    bool       `json:"published"`
	InstructorID *uuid.UUID `json:"instructor_id"`
	CategoryID   uuid.UUID  `json:"category_id" binding:"required"`
}

// UpdateCourseRequest only touches the fields that are present.
type UpdateCourseRequest struct {
	Title        *string    `json:"title" binding:"omitempty,min=5,max=100,course_title"`
	Description  *string    `json:"description" binding:"omitempty,max=500"`
	ThumbnailURL *string    `json:"thumbnail_url" binding:"omitempty,url"`
	Published    *bool      `json:"published"`
	InstructorID *uuid.UUID `json:"instructor_id"`
	CategoryID   *uuid.UUID `json:"category_id"`
}

type CourseFilter struct {
	commonDto.PageQuery
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Published  *bool  `form:"published"`
	Search     string `form:"search" binding:"max=100"`
}

type InstructorResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type CourseResponse struct {
	ID           uuid.UUID          `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	ThumbnailURL *string            `json:"thumbnail_url"`
	Published    bool               `json:"published"`
	Instructor   InstructorResponse `json:"instructor"`
	Category     CategoryResponse   `json:"category"`
	LessonCount  *int64             `json:"lesson_count,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func NewCourseResponse(c *entity.Course) CourseResponse {
	return CourseResponse{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		ThumbnailURL: c.ThumbnailURL,
		Published:    c.Published,
		Instructor: InstructorResponse{
			ID:        c.Instructor.ID,
			FirstName: c.Instructor.FirstName,
			LastName:  c.Instructor.LastName,
			Email:     c.Instructor.Email,
		},
		Category: CategoryResponse{
			ID:   c.Category.ID,
			Name: c.Category.Name,
			Slug: c.Category.Slug,
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type PaginatedCourseResponse = commonDto.Paginated[CourseResponse]
