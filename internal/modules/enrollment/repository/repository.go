package repository

import (
	"context"

	"anoa.com/courseplatform/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	// FindByID loads the enrollment with its user, course and completed lessons.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error)
	Exists(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Enrollment, error)
	FindByCourse(ctx context.Context, courseID uuid.UUID) ([]*entity.Enrollment, error)
	// RecordProgress marks lessonID completed and stores the percentage and status that
	// progress derives from the number of completed lessons still in courseID. The
	// enrollment row stays locked from the insert until the new values are written.
	// Completing a lesson twice records it once.
	RecordProgress(ctx context.Context, enrollmentID, courseID, lessonID uuid.UUID, progress ProgressFunc) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProgressFunc turns a completed-lesson count into a percentage and status.
type ProgressFunc func(completed int64) (percentage float64, status string)

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(enrollment).Error
}

func (r *enrollmentRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Preload("CompletedLessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("completed_at ASC")
		})
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	if err := r.preloaded(ctx).First(&enrollment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) Exists(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *enrollmentRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Enrollment, error) {
	var enrollments []*entity.Enrollment
	if err := r.preloaded(ctx).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) FindByCourse(ctx context.Context, courseID uuid.UUID) ([]*entity.Enrollment, error) {
	var enrollments []*entity.Enrollment
	if err := r.preloaded(ctx).
		Where("course_id = ?", courseID).
		Order("enrolled_at ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) RecordProgress(ctx context.Context, enrollmentID, courseID, lessonID uuid.UUID, progress ProgressFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked entity.Enrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&locked, "id = ?", enrollmentID).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&entity.CompletedLesson{EnrollmentID: enrollmentID, LessonID: lessonID}).Error; err != nil {
			return err
		}

		var completed int64
		if err := tx.Model(&entity.CompletedLesson{}).
			Joins("JOIN lessons ON lessons.id = enrollment_completed_lessons.lesson_id").
			Joins("JOIN modules ON modules.id = lessons.module_id").
			Where("enrollment_completed_lessons.enrollment_id = ? AND modules.course_id = ?", enrollmentID, courseID).
			Count(&completed).Error; err != nil {
			return err
		}

		percentage, status := progress(completed)
		return tx.Model(&entity.Enrollment{}).
			Where("id = ?", enrollmentID).
			Updates(map[string]interface{}{
				"progress_percentage": percentage,
				"status":              status,
				"last_watched_lesson": lessonID,
			}).Error
	})
}

func (r *enrollmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("enrollment_id = ?", id).Delete(&entity.CompletedLesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Enrollment{}, "id = ?", id).Error
	})
}
