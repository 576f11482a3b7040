package coursemodule

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/courseplatform/internal/entity"
	courseRepo "anoa.com/courseplatform/internal/modules/course/repository"
	"anoa.com/courseplatform/internal/modules/coursemodule/dto"
	"anoa.com/courseplatform/internal/modules/coursemodule/repository"
	lessonCache "anoa.com/courseplatform/internal/modules/lesson/cache"
	lessonRepo "anoa.com/courseplatform/internal/modules/lesson/repository"
	userRepo "anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/internal/testutil"
	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc        ModuleService
	db         *gorm.DB
	mr         *miniredis.Miniredis
	cache      lessonCache.CountCache
	admin      *entity.User
	instructor *entity.User
	other      *entity.User
	course     *entity.Course
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)

	f := &fixture{
		db:         db,
		mr:         mr,
		admin:      testutil.CreateUser(t, db, "admin@example.com", entity.RoleAdmin),
		instructor: testutil.CreateUser(t, db, "teacher@example.com", entity.RoleInstructor),
		other:      testutil.CreateUser(t, db, "other@example.com", entity.RoleInstructor),
	}
	category := testutil.CreateCategory(t, db, "Programming")
	f.course = testutil.CreateCourse(t, db, "Go Fundamentals", f.instructor.ID, category.ID)

	f.cache = lessonCache.NewCountCache(rdb, lessonRepo.NewLessonRepository(db), time.Minute, logger.Nop())
	f.svc = NewModuleService(
		repository.NewModuleRepository(db),
		courseRepo.NewCourseRepository(db),
		userRepo.NewUserRepository(db),
		f.cache,
		logger.Nop(),
	)
	return f
}

func TestCreateModule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateModule(ctx, f.instructor.ID, f.course.ID, dto.CreateModuleRequest{
		Title:      " Getting   Started ",
		OrderIndex: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Getting Started", res.Title)
	assert.Equal(t, f.course.ID, res.CourseID)

	_, err = f.svc.CreateModule(ctx, f.instructor.ID, f.course.ID, dto.CreateModuleRequest{Title: "getting started", OrderIndex: 2})
	assert.True(t, errors.Is(err, apperror.ErrConflict), "duplicate title")

	_, err = f.svc.CreateModule(ctx, f.instructor.ID, f.course.ID, dto.CreateModuleRequest{Title: "Basics", OrderIndex: 1})
	assert.True(t, errors.Is(err, apperror.ErrConflict), "duplicate order")

	_, err = f.svc.CreateModule(ctx, f.other.ID, f.course.ID, dto.CreateModuleRequest{Title: "Basics", OrderIndex: 2})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.svc.CreateModule(ctx, f.admin.ID, f.course.ID, dto.CreateModuleRequest{Title: "Basics", OrderIndex: 2})
	require.NoError(t, err)

	_, err = f.svc.CreateModule(ctx, f.admin.ID, uuid.New(), dto.CreateModuleRequest{Title: "Basics", OrderIndex: 2})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestGetModulesOrdered(t *testing.T) {
	f := newFixture(t)
	testutil.CreateModule(t, f.db, f.course.ID, "Third", 3)
	testutil.CreateModule(t, f.db, f.course.ID, "First", 1)
	testutil.CreateModule(t, f.db, f.course.ID, "Second", 2)

	modules, err := f.svc.GetModules(context.Background(), f.course.ID)
	require.NoError(t, err)
	require.Len(t, modules, 3)
	assert.Equal(t, "First", modules[0].Title)
	assert.Equal(t, "Second", modules[1].Title)
	assert.Equal(t, "Third", modules[2].Title)

	_, err = f.svc.GetModules(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestModuleMustBelongToCourse(t *testing.T) {
	f := newFixture(t)
	category := testutil.CreateCategory(t, f.db, "Design")
	otherCourse := testutil.CreateCourse(t, f.db, "Color Theory", f.instructor.ID, category.ID)
	module := testutil.CreateModule(t, f.db, otherCourse.ID, "Intro", 1)

	_, err := f.svc.GetModule(context.Background(), f.course.ID, module.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	res, err := f.svc.GetModule(context.Background(), otherCourse.ID, module.ID)
	require.NoError(t, err)
	assert.Equal(t, module.ID, res.ID)
}

func TestUpdateModule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := testutil.CreateModule(t, f.db, f.course.ID, "First", 1)
	testutil.CreateModule(t, f.db, f.course.ID, "Second", 2)

	order := 2
	_, err := f.svc.UpdateModule(ctx, f.instructor.ID, f.course.ID, first.ID, dto.UpdateModuleRequest{OrderIndex: &order})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	title := "Renamed"
	_, err = f.svc.UpdateModule(ctx, f.other.ID, f.course.ID, first.ID, dto.UpdateModuleRequest{Title: &title})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	order = 3
	res, err := f.svc.UpdateModule(ctx, f.instructor.ID, f.course.ID, first.ID, dto.UpdateModuleRequest{Title: &title, OrderIndex: &order})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", res.Title)
	assert.Equal(t, 3, res.OrderIndex)
}

func TestDeleteModuleRemovesLessons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	module := testutil.CreateModule(t, f.db, f.course.ID, "Intro", 1)
	lesson := testutil.CreateLesson(t, f.db, module.ID, "Welcome", 1)
	testutil.CreateLesson(t, f.db, module.ID, "Setup", 2)

	student := testutil.CreateUser(t, f.db, "student@example.com", entity.RoleStudent)
	enrollment := &entity.Enrollment{UserID: student.ID, CourseID: f.course.ID, LastWatchedLesson: &lesson.ID}
	require.NoError(t, f.db.Create(enrollment).Error)
	require.NoError(t, f.db.Create(&entity.CompletedLesson{EnrollmentID: enrollment.ID, LessonID: lesson.ID}).Error)

	n, err := f.cache.Count(ctx, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, f.mr.Exists("course:lesson_count:"+f.course.ID.String()))

	err = f.svc.DeleteModule(ctx, f.other.ID, f.course.ID, module.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	require.NoError(t, f.svc.DeleteModule(ctx, f.instructor.ID, f.course.ID, module.ID))
	assert.False(t, f.mr.Exists("course:lesson_count:"+f.course.ID.String()))

	var lessons, completed int64
	require.NoError(t, f.db.Model(&entity.Lesson{}).Where("module_id = ?", module.ID).Count(&lessons).Error)
	require.NoError(t, f.db.Model(&entity.CompletedLesson{}).Count(&completed).Error)
	assert.Zero(t, lessons)
	assert.Zero(t, completed)

	var reloaded entity.Enrollment
	require.NoError(t, f.db.First(&reloaded, "id = ?", enrollment.ID).Error)
	assert.Nil(t, reloaded.LastWatchedLesson)

	n, err = f.cache.Count(ctx, f.course.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
