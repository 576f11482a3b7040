package coursemodule

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/courseplatform/internal/entity"
	courseRepo "anoa.com/courseplatform/internal/modules/course/repository"
	"anoa.com/courseplatform/internal/modules/coursemodule/dto"
	"anoa.com/courseplatform/internal/modules/coursemodule/repository"
	lessonCache "anoa.com/courseplatform/internal/modules/lesson/cache"
	userRepo "anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/logger"
	"anoa.com/courseplatform/pkg/sanitizer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModuleService interface {
	CreateModule(ctx context.Context, userID, courseID uuid.UUID, req dto.CreateModuleRequest) (*dto.ModuleResponse, error)
	GetModules(ctx context.Context, courseID uuid.UUID) ([]dto.ModuleResponse, error)
	GetModule(ctx context.Context, courseID, moduleID uuid.UUID) (*dto.ModuleResponse, error)
	UpdateModule(ctx context.Context, userID, courseID, moduleID uuid.UUID, req dto.UpdateModuleRequest) (*dto.ModuleResponse, error)
	DeleteModule(ctx context.Context, userID, courseID, moduleID uuid.UUID) error
}

type moduleService struct {
	repo        repository.ModuleRepository
	courseRepo  courseRepo.CourseRepository
	userRepo    userRepo.UserRepository
	lessonCount lessonCache.CountCache
	log         *logger.Logger
}

func NewModuleService(
	repo repository.ModuleRepository,
	courseRepo courseRepo.CourseRepository,
	userRepo userRepo.UserRepository,
	lessonCount lessonCache.CountCache,
	log *logger.Logger,
) ModuleService {
	return &moduleService{
		repo:        repo,
		courseRepo:  courseRepo,
		userRepo:    userRepo,
		lessonCount: lessonCount,
		log:         log,
	}
}

func (s *moduleService) CreateModule(ctx context.Context, userID, courseID uuid.UUID, req dto.CreateModuleRequest) (*dto.ModuleResponse, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkManager(ctx, userID, course); err != nil {
		return nil, err
	}

	title := sanitizer.Text(req.Title)
	if err := s.checkUnique(ctx, course.ID, title, req.OrderIndex, uuid.Nil); err != nil {
		return nil, err
	}

	module := &entity.Module{
		Title:       title,
		Description: sanitizer.RichText(req.Description),
		OrderIndex:  req.OrderIndex,
		CourseID:    course.ID,
	}
	if err := s.repo.Create(ctx, module); err != nil {
		return nil, err
	}

	res := dto.NewModuleResponse(module)
	return &res, nil
}

func (s *moduleService) GetModules(ctx context.Context, courseID uuid.UUID) ([]dto.ModuleResponse, error) {
	if _, err := s.findCourse(ctx, courseID); err != nil {
		return nil, err
	}

	modules, err := s.repo.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ModuleResponse, 0, len(modules))
	for _, m := range modules {
		res = append(res, dto.NewModuleResponse(m))
	}
	return res, nil
}

func (s *moduleService) GetModule(ctx context.Context, courseID, moduleID uuid.UUID) (*dto.ModuleResponse, error) {
	module, err := s.findModule(ctx, courseID, moduleID)
	if err != nil {
		return nil, err
	}
	res := dto.NewModuleResponse(module)
	return &res, nil
}

func (s *moduleService) UpdateModule(ctx context.Context, userID, courseID, moduleID uuid.UUID, req dto.UpdateModuleRequest) (*dto.ModuleResponse, error) {
	module, err := s.findModule(ctx, courseID, moduleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkManager(ctx, userID, module.Course); err != nil {
		return nil, err
	}

	title := module.Title
	if req.Title != nil {
		title = sanitizer.Text(*req.Title)
	}
	order := module.OrderIndex
	if req.OrderIndex != nil {
		order = *req.OrderIndex
	}
	if err := s.checkUnique(ctx, module.CourseID, title, order, module.ID); err != nil {
		return nil, err
	}

	module.Title = title
	module.OrderIndex = order
	if req.Description != nil {
		module.Description = sanitizer.RichText(*req.Description)
	}

	if err := s.repo.Update(ctx, module); err != nil {
		return nil, err
	}

	res := dto.NewModuleResponse(module)
	return &res, nil
}

func (s *moduleService) DeleteModule(ctx context.Context, userID, courseID, moduleID uuid.UUID) error {
	module, err := s.findModule(ctx, courseID, moduleID)
	if err != nil {
		return err
	}
	if err := s.checkManager(ctx, userID, module.Course); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, module.ID); err != nil {
		return err
	}

	if err := s.lessonCount.Invalidate(ctx, module.CourseID); err != nil {
		s.log.Warn("failed to invalidate lesson count", "course_id", module.CourseID, "error", err)
	}

	s.log.Info("module deleted", "module_id", module.ID, "course_id", module.CourseID, "by", userID)
	return nil
}

func (s *moduleService) checkUnique(ctx context.Context, courseID uuid.UUID, title string, order int, self uuid.UUID) error {
	if title == "" {
		return fmt.Errorf("module title is required: %w", apperror.ErrBadRequest)
	}

	taken, err := s.repo.TitleTaken(ctx, courseID, title, self)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("module %q already exists in this course: %w", title, apperror.ErrConflict)
	}

	taken, err = s.repo.OrderTaken(ctx, courseID, order, self)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("order index %d is already used in this course: %w", order, apperror.ErrConflict)
	}
	return nil
}

func (s *moduleService) checkManager(ctx context.Context, userID uuid.UUID, course *entity.Course) error {
	actor, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrUnauthorized)
		}
		return err
	}
	if !course.CanBeManagedBy(actor) {
		return fmt.Errorf("only the course instructor or an admin can manage its modules: %w", apperror.ErrForbidden)
	}
	return nil
}

func (s *moduleService) findCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return course, nil
}

// findModule loads the module and checks it belongs to courseID.
func (s *moduleService) findModule(ctx context.Context, courseID, moduleID uuid.UUID) (*entity.Module, error) {
	module, err := s.repo.FindByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("module not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if module.CourseID != courseID || module.Course == nil {
		return nil, fmt.Errorf("module not found in course %s: %w", courseID, apperror.ErrNotFound)
	}
	return module, nil
}
