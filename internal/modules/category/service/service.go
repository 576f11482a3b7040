package category

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/courseplatform/internal/entity"
	"anoa.com/courseplatform/internal/modules/category/dto"
	"anoa.com/courseplatform/internal/modules/category/repository"
	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/sanitizer"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "category"
	}
	return slug
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := sanitizer.Text(req.Name)
	if name == "" {
		return nil, fmt.Errorf("category name is required: %w", apperror.ErrBadRequest)
	}

	taken, err := s.repo.NameTaken(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("category with name %s already exists: %w", name, apperror.ErrConflict)
	}

	slug, err := s.uniqueSlug(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	category := &entity.Category{
		Name: name,
		Slug: slug,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	res := dto.NewCategoryResponse(category)
	return &res, nil
}

func (s *categoryService) GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.FindAll(ctx, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, err
	}

	res := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		res = append(res, dto.NewCategoryResponse(cat))
	}
	return res, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewCategoryResponse(category)
	return &res, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	name := sanitizer.Text(req.Name)
	if name == "" {
		return nil, fmt.Errorf("category name is required: %w", apperror.ErrBadRequest)
	}

	taken, err := s.repo.NameTaken(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("category with name %s already exists: %w", name, apperror.ErrConflict)
	}

	if name != category.Name {
		slug, err := s.uniqueSlug(ctx, name, id)
		if err != nil {
			return nil, err
		}
		category.Name = name
		category.Slug = slug
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	res := dto.NewCategoryResponse(category)
	return &res, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	courses, err := s.repo.CountCourses(ctx, id)
	if err != nil {
		return err
	}
	if courses > 0 {
		return fmt.Errorf("category is still used by %d course(s): %w", courses, apperror.ErrConflict)
	}

	return s.repo.Delete(ctx, id)
}

func (s *categoryService) find(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) uniqueSlug(ctx context.Context, name string, self uuid.UUID) (string, error) {
	base := Slugify(name)
	slug := base
	for i := 2; ; i++ {
		existing, err := s.repo.FindBySlug(ctx, slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
		if existing.ID == self {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
