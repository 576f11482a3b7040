package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/courseplatform/internal/entity"
	"anoa.com/courseplatform/internal/modules/admin/dto"
	userDto "anoa.com/courseplatform/internal/modules/user/dto"
	"anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/pkg/apperror"
	commonDto "anoa.com/courseplatform/pkg/dto"
	"anoa.com/courseplatform/pkg/logger"
	"anoa.com/courseplatform/pkg/sanitizer"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminService interface {
	CreateUser(ctx context.Context, input dto.CreateUserInput) (*userDto.UserResponse, error)
	GetAllUsers(ctx context.Context, filter dto.UserFilter) (*dto.PaginatedUserResponse, error)
	UpdateUserRoles(ctx context.Context, id uuid.UUID, input dto.UpdateRolesInput) (*userDto.UserResponse, error)
	DeleteUser(ctx context.Context, adminID, id uuid.UUID) error
}

type adminService struct {
	repo repository.UserRepository
	log  *logger.Logger
}

func NewAdminService(repo repository.UserRepository, log *logger.Logger) AdminService {
	return &adminService{
		repo: repo,
		log:  log,
	}
}

func (s *adminService) CreateUser(ctx context.Context, input dto.CreateUserInput) (*userDto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	taken, err := s.repo.EmailTaken(ctx, email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("email %s is already registered: %w", email, apperror.ErrConflict)
	}

	roles, err := s.findRoles(ctx, input.Roles)
	if err != nil {
		return nil, err
	}

	firstName, lastName := sanitizer.Text(input.FirstName), sanitizer.Text(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("first and last name are required: %w", apperror.ErrBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    firstName,
		LastName:     lastName,
		Roles:        roles,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user created by admin", "user_id", user.ID, "roles", user.RoleNames())
	return userDto.NewUserResponse(user), nil
}

func (s *adminService) GetAllUsers(ctx context.Context, filter dto.UserFilter) (*dto.PaginatedUserResponse, error) {
	filter.Normalize()

	users, total, err := s.repo.FindAll(ctx, filter.PageQuery, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, err
	}

	data := make([]userDto.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, *userDto.NewUserResponse(u))
	}

	return &dto.PaginatedUserResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(filter.PageQuery, total),
	}, nil
}

func (s *adminService) UpdateUserRoles(ctx context.Context, id uuid.UUID, input dto.UpdateRolesInput) (*userDto.UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	roles, err := s.findRoles(ctx, input.Roles)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceRoles(ctx, user, roles); err != nil {
		return nil, err
	}

	updated, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info("user roles replaced", "user_id", id, "roles", updated.RoleNames())
	return userDto.NewUserResponse(updated), nil
}

func (s *adminService) DeleteUser(ctx context.Context, adminID, id uuid.UUID) error {
	if adminID == id {
		return fmt.Errorf("admins cannot delete their own account: %w", apperror.ErrBadRequest)
	}

	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}

	courses, err := s.repo.CountOwnedCourses(ctx, id)
	if err != nil {
		return err
	}
	if courses > 0 {
		return fmt.Errorf("user still teaches %d course(s), reassign or delete them first: %w", courses, apperror.ErrConflict)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("user deleted", "user_id", id, "by", adminID)
	return nil
}

func (s *adminService) findRoles(ctx context.Context, names []string) ([]entity.Role, error) {
	unique := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}

	roles, err := s.repo.FindRolesByNames(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(roles) != len(unique) {
		return nil, fmt.Errorf("unknown role in %v: %w", names, apperror.ErrBadRequest)
	}
	return roles, nil
}

func (s *adminService) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}
