package service

import (
	"context"

	"anoa.com/courseplatform/internal/entity"
	"anoa.com/courseplatform/internal/modules/stat/dto"
	"anoa.com/courseplatform/internal/modules/stat/repository"
)

const defaultPopularLimit = 10

type StatService interface {
	GetPlatformStats(ctx context.Context) (*dto.PlatformStats, error)
	GetPopularCourses(ctx context.Context, limit int) ([]dto.PopularCourse, error)
}

type statService struct {
	repo repository.StatRepository
}

func NewStatService(repo repository.StatRepository) StatService {
	return &statService{
		repo: repo,
	}
}

func (s *statService) GetPlatformStats(ctx context.Context) (*dto.PlatformStats, error) {
	var (
		stats dto.PlatformStats
		err   error
	)

	if stats.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.UsersByRole, err = s.repo.CountUsersByRole(ctx); err != nil {
		return nil, err
	}
	if stats.TotalCourses, err = s.repo.CountCourses(ctx, false); err != nil {
		return nil, err
	}
	if stats.PublishedCourses, err = s.repo.CountCourses(ctx, true); err != nil {
		return nil, err
	}
	if stats.TotalEnrollments, err = s.repo.CountEnrollments(ctx, ""); err != nil {
		return nil, err
	}
	if stats.CompletedEnrollments, err = s.repo.CountEnrollments(ctx, entity.EnrollmentCompleted); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *statService) GetPopularCourses(ctx context.Context, limit int) ([]dto.PopularCourse, error) {
	if limit <= 0 {
		limit = defaultPopularLimit
	}
	courses, err := s.repo.PopularCourses(ctx, limit)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []dto.PopularCourse{}
	}
	return courses, nil
}
