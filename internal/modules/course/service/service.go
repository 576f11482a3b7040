package course

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"anoa.com/courseplatform/internal/entity"
	categoryRepo "anoa.com/courseplatform/internal/modules/category/repository"
	"anoa.com/courseplatform/internal/modules/course/dto"
	"anoa.com/courseplatform/internal/modules/course/repository"
	lessonCache "anoa.com/courseplatform/internal/modules/lesson/cache"
	userRepo "anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/pkg/apperror"
	commonDto "anoa.com/courseplatform/pkg/dto"
	"anoa.com/courseplatform/pkg/logger"
	"anoa.com/courseplatform/pkg/sanitizer"
	"anoa.com/courseplatform/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	CreateCourse(ctx context.Context, userID uuid.UUID, req dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetCourses(ctx context.Context, filter dto.CourseFilter) (*dto.PaginatedCourseResponse, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, userID, id uuid.UUID, req dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, userID, id uuid.UUID) error
	UploadThumbnail(ctx context.Context, userID, id uuid.UUID, file commonDto.ImageFile) (*dto.CourseResponse, error)
}

type service struct {
	repo         repository.CourseRepository
	userRepo     userRepo.UserRepository
	categoryRepo categoryRepo.CategoryRepository
	lessonCount  lessonCache.CountCache
	imageStorage storage.ImageStorage
	uploadFolder string
	log          *logger.Logger
}

// NewService wires the course service. imageStorage may be nil, in which case thumbnail
// uploads answer 503.
func NewService(
	repo repository.CourseRepository,
	userRepo userRepo.UserRepository,
	categoryRepo categoryRepo.CategoryRepository,
	lessonCount lessonCache.CountCache,
	imageStorage storage.ImageStorage,
	uploadFolder string,
	log *logger.Logger,
) Service {
	return &service{
		repo:         repo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		lessonCount:  lessonCount,
		imageStorage: imageStorage,
		uploadFolder: uploadFolder,
		log:          log,
	}
}

func (s *service) CreateCourse(ctx context.Context, userID uuid.UUID, req dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	actor, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	instructorID := actor.ID
	if req.InstructorID != nil && *req.InstructorID != uuid.Nil {
		instructorID = *req.InstructorID
	}
	if instructorID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("only admins can create courses for another instructor: %w", apperror.ErrForbidden)
	}
	if err := s.checkInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	title, err := s.cleanTitle(ctx, req.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	course := &entity.Course{
		Title:        title,
		Description:  sanitizer.RichText(req.Description),
		ThumbnailURL: req.ThumbnailURL,
		Published:    req.Published,
		InstructorID: instructorID,
		CategoryID:   req.CategoryID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.log.Info("course created", "course_id", course.ID, "instructor_id", instructorID)
	return s.GetCourse(ctx, course.ID)
}

func (s *service) GetCourses(ctx context.Context, filter dto.CourseFilter) (*dto.PaginatedCourseResponse, error) {
	filter.Normalize()

	q := repository.CourseQuery{
		Page:      filter.PageQuery,
		Published: filter.Published,
		Search:    strings.TrimSpace(filter.Search),
	}
	if filter.CategoryID != "" {
		id, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id: %w", apperror.ErrBadRequest)
		}
		q.CategoryID = &id
	}

	courses, total, err := s.repo.FindAll(ctx, q)
	if err != nil {
		return nil, err
	}

	data := make([]dto.CourseResponse, 0, len(courses))
	for _, c := range courses {
		data = append(data, dto.NewCourseResponse(c))
	}

	return &dto.PaginatedCourseResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(filter.PageQuery, total),
	}, nil
}

func (s *service) GetCourse(ctx context.Context, id uuid.UUID) (*dto.CourseResponse, error) {
	course, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	res := dto.NewCourseResponse(course)
	if n, err := s.lessonCount.Count(ctx, course.ID); err == nil {
		res.LessonCount = &n
	} else {
		s.log.Warn("failed to count lessons", "course_id", course.ID, "error", err)
	}
	return &res, nil
}

func (s *service) UpdateCourse(ctx context.Context, userID, id uuid.UUID, req dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	actor, course, err := s.authorize(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title, err := s.cleanTitle(ctx, *req.Title, course.ID)
		if err != nil {
			return nil, err
		}
		course.Title = title
	}
	if req.Description != nil {
		course.Description = sanitizer.RichText(*req.Description)
	}
	if req.ThumbnailURL != nil {
		course.ThumbnailURL = req.ThumbnailURL
	}
	if req.Published != nil {
		course.Published = *req.Published
	}
	if req.CategoryID != nil && *req.CategoryID != course.CategoryID {
		if err := s.checkCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		course.CategoryID = *req.CategoryID
	}
	if req.InstructorID != nil && *req.InstructorID != course.InstructorID {
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("only admins can reassign a course: %w", apperror.ErrForbidden)
		}
		if err := s.checkInstructor(ctx, *req.InstructorID); err != nil {
			return nil, err
		}
		course.InstructorID = *req.InstructorID
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}

	return s.GetCourse(ctx, course.ID)
}

func (s *service) DeleteCourse(ctx context.Context, userID, id uuid.UUID) error {
	_, course, err := s.authorize(ctx, userID, id)
	if err != nil {
		return err
	}

	modules, err := s.repo.CountModules(ctx, course.ID)
	if err != nil {
		return err
	}
	if modules > 0 {
		return fmt.Errorf("course still has %d module(s), delete them first: %w", modules, apperror.ErrConflict)
	}

	if err := s.repo.Delete(ctx, course.ID); err != nil {
		return err
	}

	if course.ThumbnailURL != nil && s.imageStorage != nil && storage.ExtractPublicID(*course.ThumbnailURL) != "" {
		if err := s.imageStorage.DeleteImage(ctx, *course.ThumbnailURL); err != nil {
			s.log.Warn("failed to delete course thumbnail", "course_id", course.ID, "error", err)
		}
	}

	s.log.Info("course deleted", "course_id", course.ID, "by", userID)
	return nil
}

func (s *service) UploadThumbnail(ctx context.Context, userID, id uuid.UUID, file commonDto.ImageFile) (*dto.CourseResponse, error) {
	if s.imageStorage == nil {
		return nil, fmt.Errorf("image storage is not configured: %w", apperror.ErrUnavailable)
	}

	_, course, err := s.authorize(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	url, err := s.imageStorage.UploadImage(ctx, file.Reader, s.uploadFolder+"/courses", file.FileName)
	if err != nil {
		return nil, err
	}

	previous := course.ThumbnailURL
	course.ThumbnailURL = &url
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}

	if previous != nil && storage.ExtractPublicID(*previous) != "" {
		if err := s.imageStorage.DeleteImage(ctx, *previous); err != nil {
			s.log.Warn("failed to delete previous thumbnail", "course_id", course.ID, "error", err)
		}
	}

	return s.GetCourse(ctx, course.ID)
}

// authorize loads the acting user and the course, and checks the user may manage it.
func (s *service) authorize(ctx context.Context, userID, courseID uuid.UUID) (*entity.User, *entity.Course, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if !course.CanBeManagedBy(actor) {
		return nil, nil, fmt.Errorf("only the course instructor or an admin can modify this course: %w", apperror.ErrForbidden)
	}
	return actor, course, nil
}

func (s *service) cleanTitle(ctx context.Context, raw string, self uuid.UUID) (string, error) {
	title := sanitizer.Text(raw)
	if utf8.RuneCountInString(title) < 5 {
		return "", fmt.Errorf("title must be at least 5 characters: %w", apperror.ErrBadRequest)
	}

	taken, err := s.repo.TitleTaken(ctx, title, self)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("a course titled %q already exists: %w", title, apperror.ErrConflict)
	}
	return title, nil
}

func (s *service) checkInstructor(ctx context.Context, id uuid.UUID) error {
	instructor, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("instructor not found: %w", apperror.ErrBadRequest)
		}
		return err
	}
	if !instructor.HasRole(entity.RoleInstructor, entity.RoleAdmin) {
		return fmt.Errorf("user %s is not an instructor: %w", id, apperror.ErrBadRequest)
	}
	return nil
}

func (s *service) checkCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category not found: %w", apperror.ErrBadRequest)
		}
		return err
	}
	return nil
}

func (s *service) findCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return course, nil
}

func (s *service) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}
