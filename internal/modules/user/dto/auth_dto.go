package dto

import (
	"time"

	"anoa.com/courseplatform/internal/entity"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,min=6,max=30"`
	FirstName string `json:"first_name" binding:"required,notblank,max=100"`
	LastName  string `json:"last_name" binding:"required,notblank,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateMeRequest only touches the fields that are present.
type UpdateMeRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=100"`
	FirstName *string `json:"first_name" binding:"omitempty,notblank,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,notblank,max=100"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

func NewUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt,
	}
}
