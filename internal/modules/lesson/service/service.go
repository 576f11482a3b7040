package lesson

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/courseplatform/internal/entity"
	moduleRepo "anoa.com/courseplatform/internal/modules/coursemodule/repository"
	"anoa.com/courseplatform/internal/modules/lesson/cache"
	"anoa.com/courseplatform/internal/modules/lesson/dto"
	"anoa.com/courseplatform/internal/modules/lesson/repository"
	userRepo "anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/logger"
	"anoa.com/courseplatform/pkg/sanitizer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonService interface {
	CreateLesson(ctx context.Context, userID, moduleID uuid.UUID, req dto.CreateLessonRequest) (*dto.LessonResponse, error)
	GetLessons(ctx context.Context, moduleID uuid.UUID) ([]dto.LessonResponse, error)
	GetLesson(ctx context.Context, moduleID, lessonID uuid.UUID) (*dto.LessonResponse, error)
	UpdateLesson(ctx context.Context, userID, moduleID, lessonID uuid.UUID, req dto.UpdateLessonRequest) (*dto.LessonResponse, error)
	DeleteLesson(ctx context.Context, userID, moduleID, lessonID uuid.UUID) error
}

type lessonService struct {
	repo        repository.LessonRepository
	moduleRepo  moduleRepo.ModuleRepository
	userRepo    userRepo.UserRepository
	lessonCount cache.CountCache
	log         *logger.Logger
}

func NewLessonService(
	repo repository.LessonRepository,
	moduleRepo moduleRepo.ModuleRepository,
	userRepo userRepo.UserRepository,
	lessonCount cache.CountCache,
	log *logger.Logger,
) LessonService {
	return &lessonService{
		repo:        repo,
		moduleRepo:  moduleRepo,
		userRepo:    userRepo,
		lessonCount: lessonCount,
		log:         log,
	}
}

func (s *lessonService) CreateLesson(ctx context.Context, userID, moduleID uuid.UUID, req dto.CreateLessonRequest) (*dto.LessonResponse, error) {
	module, err := s.findModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkManager(ctx, userID, module); err != nil {
		return nil, err
	}

	title := sanitizer.Text(req.Title)
	if err := s.checkUnique(ctx, module.ID, title, req.OrderIndex, uuid.Nil); err != nil {
		return nil, err
	}

	lesson := &entity.Lesson{
		Title:           title,
		Description:     sanitizer.RichText(req.Description),
		VideoURL:        strings.TrimSpace(req.VideoURL),
		DurationSeconds: req.DurationSeconds,
		OrderIndex:      req.OrderIndex,
		ModuleID:        module.ID,
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, err
	}

	s.invalidate(ctx, module.CourseID)

	res := dto.NewLessonResponse(lesson)
	return &res, nil
}

func (s *lessonService) GetLessons(ctx context.Context, moduleID uuid.UUID) ([]dto.LessonResponse, error) {
	if _, err := s.findModule(ctx, moduleID); err != nil {
		return nil, err
	}

	lessons, err := s.repo.FindByModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	res := make([]dto.LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		res = append(res, dto.NewLessonResponse(l))
	}
	return res, nil
}

func (s *lessonService) GetLesson(ctx context.Context, moduleID, lessonID uuid.UUID) (*dto.LessonResponse, error) {
	lesson, err := s.findLesson(ctx, moduleID, lessonID)
	if err != nil {
		return nil, err
	}
	res := dto.NewLessonResponse(lesson)
	return &res, nil
}

func (s *lessonService) UpdateLesson(ctx context.Context, userID, moduleID, lessonID uuid.UUID, req dto.UpdateLessonRequest) (*dto.LessonResponse, error) {
	lesson, err := s.findLesson(ctx, moduleID, lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.checkManager(ctx, userID, lesson.Module); err != nil {
		return nil, err
	}

	title := lesson.Title
	if req.Title != nil {
		title = sanitizer.Text(*req.Title)
	}
	order := lesson.OrderIndex
	if req.OrderIndex != nil {
		order = *req.OrderIndex
	}
	if err := s.checkUnique(ctx, lesson.ModuleID, title, order, lesson.ID); err != nil {
		return nil, err
	}

	lesson.Title = title
	lesson.OrderIndex = order
	if req.Description != nil {
		lesson.Description = sanitizer.RichText(*req.Description)
	}
	if req.VideoURL != nil {
		lesson.VideoURL = strings.TrimSpace(*req.VideoURL)
	}
	if req.DurationSeconds != nil {
		lesson.DurationSeconds = *req.DurationSeconds
	}

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, err
	}

	res := dto.NewLessonResponse(lesson)
	return &res, nil
}

func (s *lessonService) DeleteLesson(ctx context.Context, userID, moduleID, lessonID uuid.UUID) error {
	lesson, err := s.findLesson(ctx, moduleID, lessonID)
	if err != nil {
		return err
	}
	if err := s.checkManager(ctx, userID, lesson.Module); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, lesson.ID); err != nil {
		return err
	}

	s.invalidate(ctx, lesson.Module.CourseID)
	s.log.Info("lesson deleted", "lesson_id", lesson.ID, "module_id", lesson.ModuleID, "by", userID)
	return nil
}

func (s *lessonService) invalidate(ctx context.Context, courseID uuid.UUID) {
	if err := s.lessonCount.Invalidate(ctx, courseID); err != nil {
		s.log.Warn("failed to invalidate lesson count", "course_id", courseID, "error", err)
	}
}

func (s *lessonService) checkUnique(ctx context.Context, moduleID uuid.UUID, title string, order int, self uuid.UUID) error {
	if title == "" {
		return fmt.Errorf("lesson title is required: %w", apperror.ErrBadRequest)
	}

	taken, err := s.repo.TitleTaken(ctx, moduleID, title, self)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("lesson %q already exists in this module: %w", title, apperror.ErrConflict)
	}

	taken, err = s.repo.OrderTaken(ctx, moduleID, order, self)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("order index %d is already used in this module: %w", order, apperror.ErrConflict)
	}
	return nil
}

// checkManager allows admins and the instructor owning the module's course.
func (s *lessonService) checkManager(ctx context.Context, userID uuid.UUID, module *entity.Module) error {
	actor, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrUnauthorized)
		}
		return err
	}
	if module == nil || module.Course == nil || !module.Course.CanBeManagedBy(actor) {
		return fmt.Errorf("only the course instructor or an admin can manage its lessons: %w", apperror.ErrForbidden)
	}
	return nil
}

func (s *lessonService) findModule(ctx context.Context, id uuid.UUID) (*entity.Module, error) {
	module, err := s.moduleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("module not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return module, nil
}

// findLesson loads the lesson with its module and course, and checks it belongs to moduleID.
func (s *lessonService) findLesson(ctx context.Context, moduleID, lessonID uuid.UUID) (*entity.Lesson, error) {
	lesson, err := s.repo.FindByIDWithCourse(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if lesson.ModuleID != moduleID || lesson.Module == nil {
		return nil, fmt.Errorf("lesson not found in module %s: %w", moduleID, apperror.ErrNotFound)
	}
	return lesson, nil
}
