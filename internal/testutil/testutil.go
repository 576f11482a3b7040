// Package testutil provides throwaway databases and redis servers for package tests.
package testutil

import (
	"testing"

	"anoa.com/courseplatform/internal/bootstrap"
	"anoa.com/courseplatform/internal/entity"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory sqlite database with the default roles seeded.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard, TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, bootstrap.Migrate(db))
	require.NoError(t, bootstrap.SeedRoles(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// NewRedis starts a miniredis server bound to the test lifetime.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb, mr
}

// CreateUser inserts a user holding roleNames. The password is always "password123".
func CreateUser(t *testing.T, db *gorm.DB, email string, roleNames ...string) *entity.User {
	t.Helper()

	var roles []entity.Role
	if len(roleNames) > 0 {
		require.NoError(t, db.Where("name IN ?", roleNames).Find(&roles).Error)
		require.Len(t, roles, len(roleNames))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    "Test",
		LastName:     "User",
		Roles:        roles,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Password is the plain text password of every user made by CreateUser.
const Password = "password123"

func CreateCategory(t *testing.T, db *gorm.DB, name string) *entity.Category {
	t.Helper()
	c := &entity.Category{Name: name, Slug: uuid.NewString()}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateCourse(t *testing.T, db *gorm.DB, title string, instructorID, categoryID uuid.UUID) *entity.Course {
	t.Helper()
	c := &entity.Course{Title: title, InstructorID: instructorID, CategoryID: categoryID}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateModule(t *testing.T, db *gorm.DB, courseID uuid.UUID, title string, order int) *entity.Module {
	t.Helper()
	m := &entity.Module{CourseID: courseID, Title: title, OrderIndex: order}
	require.NoError(t, db.Create(m).Error)
	return m
}

func CreateLesson(t *testing.T, db *gorm.DB, moduleID uuid.UUID, title string, order int) *entity.Lesson {
	t.Helper()
	l := &entity.Lesson{ModuleID: moduleID, Title: title, OrderIndex: order}
	require.NoError(t, db.Create(l).Error)
	return l
}
