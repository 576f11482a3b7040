package repository

import (
	"context"

	"anoa.com/courseplatform/internal/entity"
	"anoa.com/courseplatform/internal/modules/stat/dto"
	"gorm.io/gorm"
)

type StatRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountUsersByRole(ctx context.Context) (map[string]int64, error)
	// CountCourses counts every course, or only published ones when publishedOnly is set.
	CountCourses(ctx context.Context, publishedOnly bool) (int64, error)
	// CountEnrollments counts every enrollment, or only those in status when it is not empty.
	CountEnrollments(ctx context.Context, status string) (int64, error)
	PopularCourses(ctx context.Context, limit int) ([]dto.PopularCourse, error)
}

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{db: db}
}

func (r *statRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error
	return count, err
}

func (r *statRepository) CountUsersByRole(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Name  string
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Table("roles").
		Select("roles.name AS name, COUNT(user_roles.user_id) AS total").
		Joins("LEFT JOIN user_roles ON user_roles.role_id = roles.id").
		Group("roles.name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Total
	}
	return out, nil
}

func (r *statRepository) CountCourses(ctx context.Context, publishedOnly bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Course{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *statRepository) CountEnrollments(ctx context.Context, status string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Enrollment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *statRepository) PopularCourses(ctx context.Context, limit int) ([]dto.PopularCourse, error) {
	var courses []dto.PopularCourse
	if err := r.db.WithContext(ctx).
		Table("courses").
		Select("courses.id AS id, courses.title AS title, COUNT(enrollments.id) AS enrollments").
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id").
		Where("courses.published = ?", true).
		Group("courses.id, courses.title").
		Order("enrollments DESC, courses.title ASC").
		Limit(limit).
		Scan(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}
