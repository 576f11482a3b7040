package dto

import (
	"time"

	"anoa.com/courseplatform/internal/entity"
	"github.com/google/uuid"
)

type CreateLessonRequest struct {
	Title           string `json:"title" binding:"required,notblank,max=100"`
	Description     string `json:"description" binding:"max=2000"`
	VideoURL        string `json:"video_url" binding:"omitempty,url,max=500"`
	DurationSeconds int    `json:"duration_seconds" binding:"min=0"`
	OrderIndex      int    `json:"order_index" binding:"required,min=1"`
}

type UpdateLessonRequest struct {
	Title           *string `json:"title" binding:"omitempty,notblank,max=100"`
	Description     *string `json:"description" binding:"omitempty,max=2000"`
	VideoURL        *string `json:"video_url" binding:"omitempty,url,max=500"`
	DurationSeconds *int    `json:"duration_seconds" binding:"omitempty,min=0"`
	OrderIndex      *int    `json:"order_index" binding:"omitempty,min=1"`
}

type LessonResponse struct {
	ID              uuid.UUID `json:"id"`
	ModuleID        uuid.UUID `json:"module_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	VideoURL        string    `json:"video_url"`
	DurationSeconds int       `json:"duration_seconds"`
	OrderIndex      int       `json:"order_index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewLessonResponse(l *entity.Lesson) LessonResponse {
	return LessonResponse{
		ID:              l.ID,
		ModuleID:        l.ModuleID,
		Title:           l.Title,
		Description:     l.Description,
		VideoURL:        l.VideoURL,
		DurationSeconds: l.DurationSeconds,
		OrderIndex:      l.OrderIndex,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}
