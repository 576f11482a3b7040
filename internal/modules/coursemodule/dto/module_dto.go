package dto

import (
	"time"

	"anoa.com/courseplatform/internal/entity"
	"github.com/google/uuid"
)

type CreateModuleRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=100"`
	Description string `json:"description" binding:"max=1000"`
	OrderIndex  int    `json:"order_index" binding:"required,min=1"`
}

type UpdateModuleRequest struct {
	Title       *string `json:"title" binding:"omitempty,notblank,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	OrderIndex  *int    `json:"order_index" binding:"omitempty,min=1"`
}

type ModuleResponse struct {
	ID          uuid.UUID `json:"id"`
	CourseID    uuid.UUID `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewModuleResponse(m *entity.Module) ModuleResponse {
	return ModuleResponse{
		ID:          m.ID,
		CourseID:    m.CourseID,
		Title:       m.Title,
		Description: m.Description,
		OrderIndex:  m.OrderIndex,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
