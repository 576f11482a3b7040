package lesson

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/courseplatform/internal/entity"
	moduleRepo "anoa.com/courseplatform/internal/modules/coursemodule/repository"
	"anoa.com/courseplatform/internal/modules/lesson/cache"
	"anoa.com/courseplatform/internal/modules/lesson/dto"
	"anoa.com/courseplatform/internal/modules/lesson/repository"
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
	svc        LessonService
	db         *gorm.DB
	mr         *miniredis.Miniredis
	counter    cache.CountCache
	instructor *entity.User
	other      *entity.User
	admin      *entity.User
	course     *entity.Course
	module     *entity.Module
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)

	f := &fixture{
		db:         db,
		mr:         mr,
		instructor: testutil.CreateUser(t, db, "teacher@example.com", entity.RoleInstructor),
		other:      testutil.CreateUser(t, db, "other@example.com", entity.RoleInstructor),
		admin:      testutil.CreateUser(t, db, "admin@example.com", entity.RoleAdmin),
	}
	category := testutil.CreateCategory(t, db, "Programming")
	f.course = testutil.CreateCourse(t, db, "Go Fundamentals", f.instructor.ID, category.ID)
	f.module = testutil.CreateModule(t, db, f.course.ID, "Intro", 1)

	lessons := repository.NewLessonRepository(db)
	f.counter = cache.NewCountCache(rdb, lessons, time.Minute, logger.Nop())
	f.svc = NewLessonService(lessons, moduleRepo.NewModuleRepository(db), userRepo.NewUserRepository(db), f.counter, logger.Nop())
	return f
}

func (f *fixture) cacheKey() string {
	return "course:lesson_count:" + f.course.ID.String()
}

func TestCreateLesson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.counter.Count(ctx, f.course.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.True(t, f.mr.Exists(f.cacheKey()))

	res, err := f.svc.CreateLesson(ctx, f.instructor.ID, f.module.ID, dto.CreateLessonRequest{
		Title:           "Welcome",
		VideoURL:        "https://videos.example.com/welcome.mp4",
		DurationSeconds: 90,
		OrderIndex:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", res.Title)
	assert.Equal(t, 90, res.DurationSeconds)
	assert.False(t, f.mr.Exists(f.cacheKey()), "create invalidates the lesson count")

	n, err = f.counter.Count(ctx, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.svc.CreateLesson(ctx, f.instructor.ID, f.module.ID, dto.CreateLessonRequest{Title: "WELCOME", OrderIndex: 2})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	_, err = f.svc.CreateLesson(ctx, f.instructor.ID, f.module.ID, dto.CreateLessonRequest{Title: "Setup", OrderIndex: 1})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	_, err = f.svc.CreateLesson(ctx, f.other.ID, f.module.ID, dto.CreateLessonRequest{Title: "Setup", OrderIndex: 2})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.svc.CreateLesson(ctx, f.admin.ID, f.module.ID, dto.CreateLessonRequest{Title: "Setup", OrderIndex: 2})
	require.NoError(t, err)

	_, err = f.svc.CreateLesson(ctx, f.admin.ID, uuid.New(), dto.CreateLessonRequest{Title: "Setup", OrderIndex: 2})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestSameTitleInDifferentModules(t *testing.T) {
	f := newFixture(t)
	second := testutil.CreateModule(t, f.db, f.course.ID, "Advanced", 2)
	testutil.CreateLesson(t, f.db, f.module.ID, "Recap", 1)

	_, err := f.svc.CreateLesson(context.Background(), f.instructor.ID, second.ID, dto.CreateLessonRequest{Title: "Recap", OrderIndex: 1})
	require.NoError(t, err)
}

func TestGetLessons(t *testing.T) {
	f := newFixture(t)
	testutil.CreateLesson(t, f.db, f.module.ID, "Second", 2)
	first := testutil.CreateLesson(t, f.db, f.module.ID, "First", 1)

	lessons, err := f.svc.GetLessons(context.Background(), f.module.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "First", lessons[0].Title)

	res, err := f.svc.GetLesson(context.Background(), f.module.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, res.ID)

	other := testutil.CreateModule(t, f.db, f.course.ID, "Elsewhere", 2)
	_, err = f.svc.GetLesson(context.Background(), other.ID, first.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateLesson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lesson := testutil.CreateLesson(t, f.db, f.module.ID, "Draft", 1)
	testutil.CreateLesson(t, f.db, f.module.ID, "Taken", 2)

	title := "Taken"
	_, err := f.svc.UpdateLesson(ctx, f.instructor.ID, f.module.ID, lesson.ID, dto.UpdateLessonRequest{Title: &title})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	title = "Final"
	_, err = f.svc.UpdateLesson(ctx, f.other.ID, f.module.ID, lesson.ID, dto.UpdateLessonRequest{Title: &title})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	duration := 300
	res, err := f.svc.UpdateLesson(ctx, f.instructor.ID, f.module.ID, lesson.ID, dto.UpdateLessonRequest{Title: &title, DurationSeconds: &duration})
	require.NoError(t, err)
	assert.Equal(t, "Final", res.Title)
	assert.Equal(t, 300, res.DurationSeconds)
	assert.Equal(t, 1, res.OrderIndex)
}

func TestDeleteLesson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lesson := testutil.CreateLesson(t, f.db, f.module.ID, "Gone Soon", 1)

	student := testutil.CreateUser(t, f.db, "student@example.com", entity.RoleStudent)
	enrollment := &entity.Enrollment{UserID: student.ID, CourseID: f.course.ID, LastWatchedLesson: &lesson.ID}
	require.NoError(t, f.db.Create(enrollment).Error)
	require.NoError(t, f.db.Create(&entity.CompletedLesson{EnrollmentID: enrollment.ID, LessonID: lesson.ID}).Error)

	_, err := f.counter.Count(ctx, f.course.ID)
	require.NoError(t, err)

	err = f.svc.DeleteLesson(ctx, f.other.ID, f.module.ID, lesson.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	require.NoError(t, f.svc.DeleteLesson(ctx, f.instructor.ID, f.module.ID, lesson.ID))
	assert.False(t, f.mr.Exists(f.cacheKey()))

	_, err = f.svc.GetLesson(ctx, f.module.ID, lesson.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	var completed int64
	require.NoError(t, f.db.Model(&entity.CompletedLesson{}).Where("lesson_id = ?", lesson.ID).Count(&completed).Error)
	assert.Zero(t, completed)

	var reloaded entity.Enrollment
	require.NoError(t, f.db.First(&reloaded, "id = ?", enrollment.ID).Error)
	assert.Nil(t, reloaded.LastWatchedLesson)
}
