package repository

import (
	"context"
	"strings"

	"anoa.com/courseplatform/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonRepository interface {
	Create(ctx context.Context, lesson *entity.Lesson) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error)
	// FindByIDWithCourse also loads the lesson's module and the module's course.
	FindByIDWithCourse(ctx context.Context, id uuid.UUID) (*entity.Lesson, error)
	FindByModule(ctx context.Context, moduleID uuid.UUID) ([]*entity.Lesson, error)
	TitleTaken(ctx context.Context, moduleID uuid.UUID, title string, excludeID uuid.UUID) (bool, error)
	OrderTaken(ctx context.Context, moduleID uuid.UUID, order int, excludeID uuid.UUID) (bool, error)
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
	Update(ctx context.Context, lesson *entity.Lesson) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) Create(ctx context.Context, lesson *entity.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error) {
	var lesson entity.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) FindByIDWithCourse(ctx context.Context, id uuid.UUID) (*entity.Lesson, error) {
	var lesson entity.Lesson
	if err := r.db.WithContext(ctx).
		Preload("Module").
		Preload("Module.Course").
		First(&lesson, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) FindByModule(ctx context.Context, moduleID uuid.UUID) ([]*entity.Lesson, error) {
	var lessons []*entity.Lesson
	if err := r.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("order_index ASC").
		Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepository) TitleTaken(ctx context.Context, moduleID uuid.UUID, title string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Lesson{}).
		Where("module_id = ? AND LOWER(title) = ?", moduleID, strings.ToLower(title))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *lessonRepository) OrderTaken(ctx context.Context, moduleID uuid.UUID, order int, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Lesson{}).
		Where("module_id = ? AND order_index = ?", moduleID, order)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *lessonRepository) CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *lessonRepository) Update(ctx context.Context, lesson *entity.Lesson) error {
	return r.db.WithContext(ctx).Omit("Module").Save(lesson).Error
}

// Delete removes the lesson and every completion recorded against it.
func (r *lessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", id).Delete(&entity.CompletedLesson{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Enrollment{}).
			Where("last_watched_lesson = ?", id).
			Update("last_watched_lesson", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Lesson{}, "id = ?", id).Error
	})
}
