package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/courseplatform/internal/modules/user/dto"
	"anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/sanitizer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	// UpdateMe applies the present fields and returns a fresh token for the updated user.
	UpdateMe(ctx context.Context, userID uuid.UUID, req dto.UpdateMeRequest) (*dto.AuthResponse, error)
}

type userService struct {
	repo repository.UserRepository
	auth AuthService
}

func NewUserService(repo repository.UserRepository, auth AuthService) UserService {
	return &userService{repo: repo, auth: auth}
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) UpdateMe(ctx context.Context, userID uuid.UUID, req dto.UpdateMeRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			taken, err := s.repo.EmailTaken(ctx, email, user.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
			}
			user.Email = email
		}
	}
	if req.FirstName != nil {
		if user.FirstName = sanitizer.Text(*req.FirstName); user.FirstName == "" {
			return nil, fmt.Errorf("first_name must contain text: %w", apperror.ErrBadRequest)
		}
	}
	if req.LastName != nil {
		if user.LastName = sanitizer.Text(*req.LastName); user.LastName == "" {
			return nil, fmt.Errorf("last_name must contain text: %w", apperror.ErrBadRequest)
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.auth.IssueToken(user)
}
