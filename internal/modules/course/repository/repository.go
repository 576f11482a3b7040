package repository

import (
	"context"
	"strings"

	"anoa.com/courseplatform/internal/entity"
	commonDto "anoa.com/courseplatform/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseQuery struct {
	Page       commonDto.PageQuery
	CategoryID *uuid.UUID
	Published  *bool
	Search     string
}

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	FindAll(ctx context.Context, q CourseQuery) ([]*entity.Course, int64, error)
	// TitleTaken compares titles case-insensitively, ignoring excludeID.
	TitleTaken(ctx context.Context, title string, excludeID uuid.UUID) (bool, error)
	CountModules(ctx context.Context, id uuid.UUID) (int64, error)
	Update(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Omit("Instructor", "Category").Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Category").
		First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindAll(ctx context.Context, q CourseQuery) ([]*entity.Course, int64, error) {
	var (
		courses []*entity.Course
		total   int64
	)

	query := r.db.WithContext(ctx).Model(&entity.Course{})
	if q.CategoryID != nil {
		query = query.Where("category_id = ?", *q.CategoryID)
	}
	if q.Published != nil {
		query = query.Where("published = ?", *q.Published)
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Instructor").
		Preload("Category").
		Order("created_at DESC").
		Offset(q.Page.Offset()).
		Limit(q.Page.Limit).
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func (r *courseRepository) TitleTaken(ctx context.Context, title string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Course{}).Where("LOWER(title) = ?", strings.ToLower(title))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *courseRepository) CountModules(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Module{}).Where("course_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *courseRepository) Update(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Omit("Instructor", "Category").Save(course).Error
}

// Delete removes the course and its enrollments. Modules must already be gone.
func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollments := tx.Model(&entity.Enrollment{}).Select("id").Where("course_id = ?", id)
		if err := tx.Where("enrollment_id IN (?)", enrollments).Delete(&entity.CompletedLesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&entity.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Course{}, "id = ?", id).Error
	})
}
