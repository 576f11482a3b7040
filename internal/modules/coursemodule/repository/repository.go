package repository

import (
	"context"
	"strings"

	"anoa.com/courseplatform/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModuleRepository interface {
	Create(ctx context.Context, module *entity.Module) error
	// FindByID loads the module together with its course.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Module, error)
	FindByCourse(ctx context.Context, courseID uuid.UUID) ([]*entity.Module, error)
	TitleTaken(ctx context.Context, courseID uuid.UUID, title string, excludeID uuid.UUID) (bool, error)
	OrderTaken(ctx context.Context, courseID uuid.UUID, order int, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, module *entity.Module) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type moduleRepository struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) Create(ctx context.Context, module *entity.Module) error {
	return r.db.WithContext(ctx).Omit("Course").Create(module).Error
}

func (r *moduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Module, error) {
	var module entity.Module
	if err := r.db.WithContext(ctx).Preload("Course").First(&module, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepository) FindByCourse(ctx context.Context, courseID uuid.UUID) ([]*entity.Module, error) {
	var modules []*entity.Module
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("order_index ASC").
		Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *moduleRepository) TitleTaken(ctx context.Context, courseID uuid.UUID, title string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Module{}).
		Where("course_id = ? AND LOWER(title) = ?", courseID, strings.ToLower(title))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *moduleRepository) OrderTaken(ctx context.Context, courseID uuid.UUID, order int, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Module{}).
		Where("course_id = ? AND order_index = ?", courseID, order)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *moduleRepository) Update(ctx context.Context, module *entity.Module) error {
	return r.db.WithContext(ctx).Omit("Course").Save(module).Error
}

// Delete removes the module, its lessons and any progress recorded against those lessons.
func (r *moduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lessonIDs := func() *gorm.DB {
			return tx.Model(&entity.Lesson{}).Select("id").Where("module_id = ?", id)
		}

		if err := tx.Where("lesson_id IN (?)", lessonIDs()).Delete(&entity.CompletedLesson{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Enrollment{}).
			Where("last_watched_lesson IN (?)", lessonIDs()).
			Update("last_watched_lesson", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id = ?", id).Delete(&entity.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Module{}, "id = ?", id).Error
	})
}
