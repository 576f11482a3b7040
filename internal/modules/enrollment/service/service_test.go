package enrollment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"anoa.com/courseplatform/internal/entity"
	courseRepo "anoa.com/courseplatform/internal/modules/course/repository"
	moduleRepo "anoa.com/courseplatform/internal/modules/coursemodule/repository"
	"anoa.com/courseplatform/internal/modules/enrollment/dto"
	"anoa.com/courseplatform/internal/modules/enrollment/repository"
	lessonCache "anoa.com/courseplatform/internal/modules/lesson/cache"
	lessonDto "anoa.com/courseplatform/internal/modules/lesson/dto"
	lessonRepo "anoa.com/courseplatform/internal/modules/lesson/repository"
	lessonService "anoa.com/courseplatform/internal/modules/lesson/service"
	userRepo "anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/internal/testutil"
	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCalculateProgress(t *testing.T) {
	cases := []struct {
		completed, total int64
		want             float64
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{1, 8, 13},
		{1, 200, 1},
		{1, 201, 0},
		{3, 3, 100},
		{5, 3, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CalculateProgress(tc.completed, tc.total), "%d/%d", tc.completed, tc.total)
	}
}

type fixture struct {
	svc         EnrollmentService
	db          *gorm.DB
	lessonCount lessonCache.CountCache
	modules     []*entity.Module
	admin       *entity.User
	instructor  *entity.User
	student     *entity.User
	other       *entity.User
	course      *entity.Course
	lessons     []*entity.Lesson
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)

	f := &fixture{
		db:         db,
		admin:      testutil.CreateUser(t, db, "admin@example.com", entity.RoleAdmin),
		instructor: testutil.CreateUser(t, db, "teacher@example.com", entity.RoleInstructor),
		student:    testutil.CreateUser(t, db, "student@example.com", entity.RoleStudent),
		other:      testutil.CreateUser(t, db, "other@example.com", entity.RoleStudent),
	}
	category := testutil.CreateCategory(t, db, "Programming")
	f.course = testutil.CreateCourse(t, db, "Go Fundamentals", f.instructor.ID, category.ID)
	m1 := testutil.CreateModule(t, db, f.course.ID, "Intro", 1)
	m2 := testutil.CreateModule(t, db, f.course.ID, "Deep Dive", 2)
	f.lessons = []*entity.Lesson{
		testutil.CreateLesson(t, db, m1.ID, "Welcome", 1),
		testutil.CreateLesson(t, db, m1.ID, "Setup", 2),
		testutil.CreateLesson(t, db, m2.ID, "Goroutines", 1),
	}

	f.modules = []*entity.Module{m1, m2}

	lessons := lessonRepo.NewLessonRepository(db)
	f.lessonCount = lessonCache.NewCountCache(rdb, lessons, time.Minute, logger.Nop())
	f.svc = f.service(repository.NewEnrollmentRepository(db))
	return f
}

func (f *fixture) service(repo repository.EnrollmentRepository) EnrollmentService {
	return NewEnrollmentService(
		repo,
		courseRepo.NewCourseRepository(f.db),
		userRepo.NewUserRepository(f.db),
		lessonRepo.NewLessonRepository(f.db),
		f.lessonCount,
		logger.Nop(),
	)
}

func (f *fixture) enroll(t *testing.T, user *entity.User) *dto.EnrollmentResponse {
	t.Helper()
	res, err := f.svc.Enroll(context.Background(), user.ID, dto.EnrollRequest{CourseID: f.course.ID})
	require.NoError(t, err)
	return res
}

func TestEnroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.enroll(t, f.student)
	assert.Equal(t, f.student.ID, res.UserID)
	assert.Equal(t, entity.EnrollmentInProgress, res.Status)
	assert.Zero(t, res.ProgressPercentage)
	assert.Empty(t, res.CompletedLessonIDs)
	require.NotNil(t, res.Course)
	assert.Equal(t, "Go Fundamentals", res.Course.Title)

	_, err := f.svc.Enroll(ctx, f.student.ID, dto.EnrollRequest{CourseID: f.course.ID})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	_, err = f.svc.Enroll(ctx, f.student.ID, dto.EnrollRequest{CourseID: uuid.New()})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestEnrollSomeoneElse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Enroll(ctx, f.student.ID, dto.EnrollRequest{CourseID: f.course.ID, UserID: &f.other.ID})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	res, err := f.svc.Enroll(ctx, f.admin.ID, dto.EnrollRequest{CourseID: f.course.ID, UserID: &f.other.ID})
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, res.UserID)

	missing := uuid.New()
	_, err = f.svc.Enroll(ctx, f.admin.ID, dto.EnrollRequest{CourseID: f.course.ID, UserID: &missing})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	enrollment := f.enroll(t, f.student)

	res, err := f.svc.UpdateProgress(ctx, f.student.ID, enrollment.ID, dto.UpdateProgressRequest{LessonID: f.lessons[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 33.0, res.ProgressPercentage)
	assert.Equal(t, entity.EnrollmentInProgress, res.Status)
	assert.Equal(t, []uuid.UUID{f.lessons[0].ID}, res.CompletedLessonIDs)
	require.NotNil(t, res.LastWatchedLessonID)
	assert.Equal(t, f.lessons[0].ID, *res.LastWatchedLessonID)

	res, err = f.svc.UpdateProgress(ctx, f.student.ID, enrollment.ID, dto.UpdateProgressRequest{LessonID: f.lessons[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 33.0, res.ProgressPercentage, "completing a lesson twice counts once")
	assert.Len(t, res.CompletedLessonIDs, 1)

	res, err = f.svc.UpdateProgress(ctx, f.student.ID, enrollment.ID, dto.UpdateProgressRequest{LessonID: f.lessons[1].ID})
	require.NoError(t, err)
	assert.Equal(t, 67.0, res.ProgressPercentage)

	res, err = f.svc.UpdateProgress(ctx, f.admin.ID, enrollment.ID, dto.UpdateProgressRequest{LessonID: f.lessons[2].ID})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.ProgressPercentage)
	assert.Equal(t, entity.EnrollmentCompleted, res.Status)
	assert.Equal(t, f.lessons[2].ID, *res.LastWatchedLessonID)
}

func TestUpdateProgressRejectsForeignLessons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	enrollment := f.enroll(t, f.student)

	category := testutil.CreateCategory(t, f.db, "Design")
	otherCourse := testutil.CreateCourse(t, f.db, "Color Theory", f.instructor.ID, category.ID)
	module := testutil.CreateModule(t, f.db, otherCourse.ID, "Intro", 1)
	foreign := testutil.CreateLesson(t, f.db, module.ID, "Hue", 1)

	_, err := f.svc.UpdateProgress(ctx, f.student.ID, enrollment.ID, dto.UpdateProgressRequest{LessonID: foreign.ID})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))

	_, err = f.svc.UpdateProgress(ctx, f.student.ID, enrollment.ID, dto.UpdateProgressRequest{LessonID: uuid.New()})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.svc.UpdateProgress(ctx, f.other.ID, enrollment.ID, dto.UpdateProgressRequest{LessonID: f.lessons[0].ID})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestEnrollmentAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	enrollment := f.enroll(t, f.student)
	f.enroll(t, f.other)

	_, err := f.svc.GetEnrollment(ctx, f.other.ID, enrollment.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	res, err := f.svc.GetEnrollment(ctx, f.admin.ID, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.ID, res.ID)

	_, err = f.svc.GetEnrollment(ctx, f.student.ID, uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	mine, err := f.svc.GetUserEnrollments(ctx, f.student.ID, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.svc.GetUserEnrollments(ctx, f.other.ID, f.student.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	byCourse, err := f.svc.GetCourseEnrollments(ctx, f.instructor.ID, f.course.ID)
	require.NoError(t, err)
	assert.Len(t, byCourse, 2)

	_, err = f.svc.GetCourseEnrollments(ctx, f.student.ID, f.course.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestUnenroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	enrollment := f.enroll(t, f.student)
	_, err := f.svc.UpdateProgress(ctx, f.student.ID, enrollment.ID, dto.UpdateProgressRequest{LessonID: f.lessons[0].ID})
	require.NoError(t, err)

	err = f.svc.Unenroll(ctx, f.other.ID, enrollment.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	require.NoError(t, f.svc.Unenroll(ctx, f.student.ID, enrollment.ID))

	_, err = f.svc.GetEnrollment(ctx, f.student.ID, enrollment.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	var completed int64
	require.NoError(t, f.db.Model(&entity.CompletedLesson{}).Where("enrollment_id = ?", enrollment.ID).Count(&completed).Error)
	assert.Zero(t, completed)

	f.enroll(t, f.student)
}

// staleExistsRepo never sees an existing enrollment, like a request racing another insert.
type staleExistsRepo struct {
	repository.EnrollmentRepository
}

func (staleExistsRepo) Exists(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func TestEnrollDuplicateInsertIsConflict(t *testing.T) {
	f := newFixture(t)
	svc := f.service(staleExistsRepo{repository.NewEnrollmentRepository(f.db)})
	ctx := context.Background()

	_, err := svc.Enroll(ctx, f.student.ID, dto.EnrollRequest{CourseID: f.course.ID})
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, f.student.ID, dto.EnrollRequest{CourseID: f.course.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))
}

func TestUpdateProgressFallsBackWhenLessonAdded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	enrollment := f.enroll(t, f.student)

	var res *dto.EnrollmentResponse
	var err error
	for _, lesson := range f.lessons {
		res, err = f.svc.UpdateProgress(ctx, f.student.ID, enrollment.ID, dto.UpdateProgressRequest{LessonID: lesson.ID})
		require.NoError(t, err)
	}
	assert.Equal(t, 100.0, res.ProgressPercentage)
	assert.Equal(t, entity.EnrollmentCompleted, res.Status)

	lessons := lessonService.NewLessonService(
		lessonRepo.NewLessonRepository(f.db),
		moduleRepo.NewModuleRepository(f.db),
		userRepo.NewUserRepository(f.db),
		f.lessonCount,
		logger.Nop(),
	)
	_, err = lessons.CreateLesson(ctx, f.instructor.ID, f.modules[1].ID, lessonDto.CreateLessonRequest{
		Title:      "Channels",
		OrderIndex: 2,
	})
	require.NoError(t, err)

	res, err = f.svc.UpdateProgress(ctx, f.student.ID, enrollment.ID, dto.UpdateProgressRequest{LessonID: f.lessons[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 75.0, res.ProgressPercentage)
	assert.Equal(t, entity.EnrollmentInProgress, res.Status)
}

func TestConcurrentProgressUpdatesKeepLatestCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	lessons := append([]*entity.Lesson{}, f.lessons...)
	for i := 2; i <= 6; i++ {
		lessons = append(lessons, testutil.CreateLesson(t, f.db, f.modules[1].ID, fmt.Sprintf("Extra %d", i), i))
	}
	enrollment := f.enroll(t, f.student)

	var wg sync.WaitGroup
	errs := make(chan error, len(lessons))
	for _, lesson := range lessons {
		wg.Add(1)
		go func(lessonID uuid.UUID) {
			defer wg.Done()
			_, err := f.svc.UpdateProgress(ctx, f.student.ID, enrollment.ID, dto.UpdateProgressRequest{LessonID: lessonID})
			errs <- err
		}(lesson.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var stored entity.Enrollment
	require.NoError(t, f.db.First(&stored, "id = ?", enrollment.ID).Error)
	var completed int64
	require.NoError(t, f.db.Model(&entity.CompletedLesson{}).Where("enrollment_id = ?", enrollment.ID).Count(&completed).Error)

	assert.Equal(t, int64(len(lessons)), completed)
	assert.Equal(t, 100.0, stored.ProgressPercentage)
	assert.Equal(t, entity.EnrollmentCompleted, stored.Status)
}
