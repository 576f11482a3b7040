package enrollment

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/courseplatform/internal/entity"
	courseRepo "anoa.com/courseplatform/internal/modules/course/repository"
	"anoa.com/courseplatform/internal/modules/enrollment/dto"
	"anoa.com/courseplatform/internal/modules/enrollment/repository"
	lessonCache "anoa.com/courseplatform/internal/modules/lesson/cache"
	lessonRepo "anoa.com/courseplatform/internal/modules/lesson/repository"
	userRepo "anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, userID uuid.UUID, req dto.EnrollRequest) (*dto.EnrollmentResponse, error)
	GetUserEnrollments(ctx context.Context, userID, targetID uuid.UUID) ([]dto.EnrollmentResponse, error)
	GetCourseEnrollments(ctx context.Context, userID, courseID uuid.UUID) ([]dto.EnrollmentResponse, error)
	GetEnrollment(ctx context.Context, userID, id uuid.UUID) (*dto.EnrollmentResponse, error)
	UpdateProgress(ctx context.Context, userID, id uuid.UUID, req dto.UpdateProgressRequest) (*dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, userID, id uuid.UUID) error
}

type enrollmentService struct {
	repo        repository.EnrollmentRepository
	courseRepo  courseRepo.CourseRepository
	userRepo    userRepo.UserRepository
	lessonRepo  lessonRepo.LessonRepository
	lessonCount lessonCache.CountCache
	log         *logger.Logger
}

func NewEnrollmentService(
	repo repository.EnrollmentRepository,
	courseRepo courseRepo.CourseRepository,
	userRepo userRepo.UserRepository,
	lessonRepo lessonRepo.LessonRepository,
	lessonCount lessonCache.CountCache,
	log *logger.Logger,
) EnrollmentService {
	return &enrollmentService{
		repo:        repo,
		courseRepo:  courseRepo,
		userRepo:    userRepo,
		lessonRepo:  lessonRepo,
		lessonCount: lessonCount,
		log:         log,
	}
}

// CalculateProgress returns completed/total as a whole percentage, rounding half up.
// A course without lessons has no progress.
func CalculateProgress(completed, total int64) float64 {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return float64((completed*200 + total) / (2 * total))
}

func (s *enrollmentService) Enroll(ctx context.Context, userID uuid.UUID, req dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	actor, err := s.findUser(ctx, userID, apperror.ErrUnauthorized)
	if err != nil {
		return nil, err
	}

	target := actor
	if req.UserID != nil && *req.UserID != uuid.Nil && *req.UserID != actor.ID {
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("you can only enroll yourself: %w", apperror.ErrForbidden)
		}
		if target, err = s.findUser(ctx, *req.UserID, apperror.ErrNotFound); err != nil {
			return nil, err
		}
	}

	course, err := s.findCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, target.ID, course.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("user %s is already enrolled in course %s: %w", target.ID, course.ID, apperror.ErrConflict)
	}

	enrollment := &entity.Enrollment{
		UserID:   target.ID,
		CourseID: course.ID,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("user %s is already enrolled in course %s: %w", target.ID, course.ID, apperror.ErrConflict)
		}
		return nil, err
	}

	s.log.Info("user enrolled", "enrollment_id", enrollment.ID, "user_id", target.ID, "course_id", course.ID)
	return s.response(ctx, enrollment.ID)
}

func (s *enrollmentService) GetUserEnrollments(ctx context.Context, userID, targetID uuid.UUID) ([]dto.EnrollmentResponse, error) {
	actor, err := s.findUser(ctx, userID, apperror.ErrUnauthorized)
	if err != nil {
		return nil, err
	}
	if actor.ID != targetID && !actor.IsAdmin() {
		return nil, fmt.Errorf("you can only list your own enrollments: %w", apperror.ErrForbidden)
	}
	if _, err := s.findUser(ctx, targetID, apperror.ErrNotFound); err != nil {
		return nil, err
	}

	enrollments, err := s.repo.FindByUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return toResponses(enrollments), nil
}

func (s *enrollmentService) GetCourseEnrollments(ctx context.Context, userID, courseID uuid.UUID) ([]dto.EnrollmentResponse, error) {
	actor, err := s.findUser(ctx, userID, apperror.ErrUnauthorized)
	if err != nil {
		return nil, err
	}
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.CanBeManagedBy(actor) {
		return nil, fmt.Errorf("only the course instructor or an admin can list its enrollments: %w", apperror.ErrForbidden)
	}

	enrollments, err := s.repo.FindByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	return toResponses(enrollments), nil
}

func (s *enrollmentService) GetEnrollment(ctx context.Context, userID, id uuid.UUID) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.authorize(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewEnrollmentResponse(enrollment)
	return &res, nil
}

func (s *enrollmentService) UpdateProgress(ctx context.Context, userID, id uuid.UUID, req dto.UpdateProgressRequest) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.authorize(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	lesson, err := s.lessonRepo.FindByIDWithCourse(ctx, req.LessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if lesson.Module == nil || lesson.Module.CourseID != enrollment.CourseID {
		return nil, fmt.Errorf("lesson does not belong to the enrolled course: %w", apperror.ErrBadRequest)
	}

	total, err := s.lessonCount.Count(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RecordProgress(ctx, enrollment.ID, enrollment.CourseID, lesson.ID, func(completed int64) (float64, string) {
		percentage := CalculateProgress(completed, total)
		if percentage >= 100 {
			return percentage, entity.EnrollmentCompleted
		}
		return percentage, entity.EnrollmentInProgress
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("enrollment not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	return s.response(ctx, enrollment.ID)
}

func (s *enrollmentService) Unenroll(ctx context.Context, userID, id uuid.UUID) error {
	enrollment, err := s.authorize(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, enrollment.ID); err != nil {
		return err
	}

	s.log.Info("user unenrolled", "enrollment_id", enrollment.ID, "by", userID)
	return nil
}

// authorize loads the enrollment and checks the caller owns it or is an admin.
func (s *enrollmentService) authorize(ctx context.Context, userID, id uuid.UUID) (*entity.Enrollment, error) {
	actor, err := s.findUser(ctx, userID, apperror.ErrUnauthorized)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("enrollment not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !enrollment.CanBeAccessedBy(actor) {
		return nil, fmt.Errorf("you do not have access to this enrollment: %w", apperror.ErrForbidden)
	}
	return enrollment, nil
}

func (s *enrollmentService) response(ctx context.Context, id uuid.UUID) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewEnrollmentResponse(enrollment)
	return &res, nil
}

func (s *enrollmentService) findUser(ctx context.Context, id uuid.UUID, missing error) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", missing)
		}
		return nil, err
	}
	return user, nil
}

func (s *enrollmentService) findCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return course, nil
}

func toResponses(enrollments []*entity.Enrollment) []dto.EnrollmentResponse {
	res := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		res = append(res, dto.NewEnrollmentResponse(e))
	}
	return res
}
