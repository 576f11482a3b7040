package repository

import (
	"context"
	"strings"

	"anoa.com/courseplatform/internal/entity"
	commonDto "anoa.com/courseplatform/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// EmailTaken reports whether another user (not excludeID) already uses email.
	EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	FindRoleByName(ctx context.Context, name string) (*entity.Role, error)
	FindRolesByNames(ctx context.Context, names []string) ([]entity.Role, error)
	Update(ctx context.Context, user *entity.User) error
	ReplaceRoles(ctx context.Context, user *entity.User, roles []entity.Role) error
	FindAll(ctx context.Context, page commonDto.PageQuery, search string) ([]*entity.User, int64, error)
	CountOwnedCourses(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.User{}).Where("LOWER(email) = ?", strings.ToLower(email))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	var role entity.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *userRepository) FindRolesByNames(ctx context.Context, names []string) ([]entity.Role, error) {
	var roles []entity.Role
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *userRepository) ReplaceRoles(ctx context.Context, user *entity.User, roles []entity.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(user).Association("Roles").Replace(roles)
	})
}

func (r *userRepository) FindAll(ctx context.Context, page commonDto.PageQuery, search string) ([]*entity.User, int64, error) {
	var (
		users []*entity.User
		total int64
	)

	query := r.db.WithContext(ctx).Model(&entity.User{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Roles").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) CountOwnedCourses(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Course{}).Where("instructor_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes the user together with their role links and enrollments.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollments := tx.Model(&entity.Enrollment{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("enrollment_id IN (?)", enrollments).Delete(&entity.CompletedLesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entity.Enrollment{}).Error; err != nil {
			return err
		}
		user := &entity.User{ID: id}
		if err := tx.Model(user).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}
