package bootstrap

import (
	"errors"
	"strings"

	"anoa.com/courseplatform/internal/entity"
	"anoa.com/courseplatform/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Category{},
		&entity.Course{},
		&entity.Module{},
		&entity.Lesson{},
		&entity.Enrollment{},
		&entity.CompletedLesson{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Platform administrator"},
		{Name: entity.RoleInstructor, Description: "Creates and manages courses"},
		{Name: entity.RoleStudent, Description: "Enrolls in courses"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedAdminUser creates the admin account when no user holds the given email yet.
func SeedAdminUser(db *gorm.DB, email, password string, log *logger.Logger) error {
	if email == "" || password == "" {
		return errors.New("admin seed requires email and password")
	}
	email = strings.ToLower(email)

	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("LOWER(email) = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug("admin user already exists, skipping seed", "email", email)
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    "Platform",
		LastName:     "Admin",
		Roles:        []entity.Role{adminRole},
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Info("admin user seeded", "email", email)
	return nil
}
