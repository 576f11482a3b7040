package course

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"anoa.com/courseplatform/internal/entity"
	categoryRepo "anoa.com/courseplatform/internal/modules/category/repository"
	"anoa.com/courseplatform/internal/modules/course/dto"
	"anoa.com/courseplatform/internal/modules/course/repository"
	lessonCache "anoa.com/courseplatform/internal/modules/lesson/cache"
	lessonRepo "anoa.com/courseplatform/internal/modules/lesson/repository"
	userRepo "anoa.com/courseplatform/internal/modules/user/repository"
	"anoa.com/courseplatform/internal/testutil"
	"anoa.com/courseplatform/pkg/apperror"
	commonDto "anoa.com/courseplatform/pkg/dto"
	"anoa.com/courseplatform/pkg/logger"
	"anoa.com/courseplatform/pkg/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStorage struct {
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/" + fileName
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStorage) DeleteImage(_ context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

type fixture struct {
	svc        Service
	db         *gorm.DB
	store      *fakeStorage
	admin      *entity.User
	instructor *entity.User
	other      *entity.User
	student    *entity.User
	category   *entity.Category
}

func newFixture(t *testing.T, withStorage bool) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	f := &fixture{
		db:         db,
		admin:      testutil.CreateUser(t, db, "admin@example.com", entity.RoleAdmin),
		instructor: testutil.CreateUser(t, db, "teacher@example.com", entity.RoleInstructor),
		other:      testutil.CreateUser(t, db, "other@example.com", entity.RoleInstructor),
		student:    testutil.CreateUser(t, db, "student@example.com", entity.RoleStudent),
		category:   testutil.CreateCategory(t, db, "Programming"),
	}

	var imageStorage storage.ImageStorage
	if withStorage {
		f.store = &fakeStorage{}
		imageStorage = f.store
	}

	counter := lessonCache.NewCountCache(nil, lessonRepo.NewLessonRepository(db), time.Minute, logger.Nop())
	f.svc = NewService(
		repository.NewCourseRepository(db),
		userRepo.NewUserRepository(db),
		categoryRepo.NewCategoryRepository(db),
		counter,
		imageStorage,
		"course_platform",
		logger.Nop(),
	)
	return f
}

func (f *fixture) create(t *testing.T, actor *entity.User, title string) *dto.CourseResponse {
	t.Helper()
	res, err := f.svc.CreateCourse(context.Background(), actor.ID, dto.CreateCourseRequest{
		Title:       title,
		Description: "A course",
		CategoryID:  f.category.ID,
	})
	require.NoError(t, err)
	return res
}

func TestCreateCourseDefaultsInstructorToCaller(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.svc.CreateCourse(context.Background(), f.instructor.ID, dto.CreateCourseRequest{
		Title:       "  Go   Fundamentals ",
		Description: `<p>Learn <em>Go</em></p><script>alert(1)</script>`,
		Published:   true,
		CategoryID:  f.category.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Go Fundamentals", res.Title)
	assert.Equal(t, f.instructor.ID, res.Instructor.ID)
	assert.Equal(t, "Programming", res.Category.Name)
	assert.NotContains(t, res.Description, "script")
	assert.Contains(t, res.Description, "<em>Go</em>")
	require.NotNil(t, res.LessonCount)
	assert.Equal(t, int64(0), *res.LessonCount)
}

func TestCreateCourseDuplicateTitle(t *testing.T) {
	f := newFixture(t, false)
	f.create(t, f.instructor, "Go Fundamentals")

	_, err := f.svc.CreateCourse(context.Background(), f.other.ID, dto.CreateCourseRequest{
		Title:      "go fundamentals",
		CategoryID: f.category.ID,
	})
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestCreateCourseInstructorRules(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.CreateCourse(ctx, f.instructor.ID, dto.CreateCourseRequest{
		Title:        "Someone Else's Course",
		CategoryID:   f.category.ID,
		InstructorID: &f.other.ID,
	})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	res, err := f.svc.CreateCourse(ctx, f.admin.ID, dto.CreateCourseRequest{
		Title:        "Assigned By Admin",
		CategoryID:   f.category.ID,
		InstructorID: &f.other.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, res.Instructor.ID)

	_, err = f.svc.CreateCourse(ctx, f.admin.ID, dto.CreateCourseRequest{
		Title:        "Student Taught",
		CategoryID:   f.category.ID,
		InstructorID: &f.student.ID,
	})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))

	missing := uuid.New()
	_, err = f.svc.CreateCourse(ctx, f.admin.ID, dto.CreateCourseRequest{
		Title:        "Ghost Taught",
		CategoryID:   f.category.ID,
		InstructorID: &missing,
	})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}

func TestCreateCourseUnknownCategory(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.CreateCourse(context.Background(), f.instructor.ID, dto.CreateCourseRequest{
		Title:      "Lost Course",
		CategoryID: uuid.New(),
	})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}

func TestUpdateCourseOwnership(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	course := f.create(t, f.instructor, "Original Title")

	title := "Hijacked Title"
	_, err := f.svc.UpdateCourse(ctx, f.other.ID, course.ID, dto.UpdateCourseRequest{Title: &title})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	published := true
	title = "Renamed Title"
	res, err := f.svc.UpdateCourse(ctx, f.instructor.ID, course.ID, dto.UpdateCourseRequest{Title: &title, Published: &published})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Title", res.Title)
	assert.True(t, res.Published)
	assert.Equal(t, "A course", res.Description)

	_, err = f.svc.UpdateCourse(ctx, f.instructor.ID, course.ID, dto.UpdateCourseRequest{InstructorID: &f.other.ID})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	res, err = f.svc.UpdateCourse(ctx, f.admin.ID, course.ID, dto.UpdateCourseRequest{InstructorID: &f.other.ID})
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, res.Instructor.ID)

	_, err = f.svc.UpdateCourse(ctx, f.admin.ID, uuid.New(), dto.UpdateCourseRequest{})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateCourseKeepsOwnTitle(t *testing.T) {
	f := newFixture(t, false)
	course := f.create(t, f.instructor, "Stable Title")

	title := "STABLE TITLE"
	res, err := f.svc.UpdateCourse(context.Background(), f.instructor.ID, course.ID, dto.UpdateCourseRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "STABLE TITLE", res.Title)
}

func TestDeleteCourseWithModules(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	course := f.create(t, f.instructor, "Course With Modules")
	module := testutil.CreateModule(t, f.db, course.ID, "Intro", 1)

	err := f.svc.DeleteCourse(ctx, f.instructor.ID, course.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	require.NoError(t, f.db.Delete(module).Error)
	require.NoError(t, f.db.Create(&entity.Enrollment{UserID: f.student.ID, CourseID: course.ID}).Error)

	err = f.svc.DeleteCourse(ctx, f.other.ID, course.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	require.NoError(t, f.svc.DeleteCourse(ctx, f.instructor.ID, course.ID))

	_, err = f.svc.GetCourse(ctx, course.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	var enrollments int64
	require.NoError(t, f.db.Model(&entity.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollments).Error)
	assert.Zero(t, enrollments)
}

func TestGetCoursesFilters(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	design := testutil.CreateCategory(t, f.db, "Design")

	for _, title := range []string{"Go Basics", "Go Advanced", "Rust Basics"} {
		f.create(t, f.instructor, title)
	}
	published := true
	_, err := f.svc.CreateCourse(ctx, f.instructor.ID, dto.CreateCourseRequest{
		Title:      "Color Theory",
		Published:  published,
		CategoryID: design.ID,
	})
	require.NoError(t, err)

	all, err := f.svc.GetCourses(ctx, dto.CourseFilter{PageQuery: commonDto.PageQuery{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, all.Data, 2)
	assert.Equal(t, int64(4), all.Meta.TotalItems)
	assert.Equal(t, 2, all.Meta.TotalPages)

	goCourses, err := f.svc.GetCourses(ctx, dto.CourseFilter{Search: "go"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), goCourses.Meta.TotalItems)

	byCategory, err := f.svc.GetCourses(ctx, dto.CourseFilter{CategoryID: design.ID.String()})
	require.NoError(t, err)
	require.Len(t, byCategory.Data, 1)
	assert.Equal(t, "Color Theory", byCategory.Data[0].Title)

	onlyPublished, err := f.svc.GetCourses(ctx, dto.CourseFilter{Published: &published})
	require.NoError(t, err)
	assert.Equal(t, int64(1), onlyPublished.Meta.TotalItems)
}

func TestUploadThumbnail(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	course := f.create(t, f.instructor, "Pretty Course")

	file := commonDto.ImageFile{Reader: strings.NewReader("img"), FileName: "cover.png"}
	_, err := f.svc.UploadThumbnail(ctx, f.other.ID, course.ID, file)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	res, err := f.svc.UploadThumbnail(ctx, f.instructor.ID, course.ID, file)
	require.NoError(t, err)
	require.NotNil(t, res.ThumbnailURL)
	assert.Contains(t, *res.ThumbnailURL, "course_platform/courses/cover.png")

	first := *res.ThumbnailURL
	res, err = f.svc.UploadThumbnail(ctx, f.instructor.ID, course.ID, commonDto.ImageFile{Reader: strings.NewReader("img2"), FileName: "cover2.png"})
	require.NoError(t, err)
	assert.Equal(t, []string{first}, f.store.deleted)
	assert.NotEqual(t, first, *res.ThumbnailURL)
}

func TestUploadThumbnailWithoutStorage(t *testing.T) {
	f := newFixture(t, false)
	course := f.create(t, f.instructor, "Plain Course")

	_, err := f.svc.UploadThumbnail(context.Background(), f.instructor.ID, course.ID, commonDto.ImageFile{Reader: strings.NewReader("x"), FileName: "a.png"})
	assert.True(t, errors.Is(err, apperror.ErrUnavailable))
}

func TestGetCourseCountsLessons(t *testing.T) {
	f := newFixture(t, false)
	course := f.create(t, f.instructor, "Counted Course")
	m1 := testutil.CreateModule(t, f.db, course.ID, "One", 1)
	m2 := testutil.CreateModule(t, f.db, course.ID, "Two", 2)
	testutil.CreateLesson(t, f.db, m1.ID, "A", 1)
	testutil.CreateLesson(t, f.db, m1.ID, "B", 2)
	testutil.CreateLesson(t, f.db, m2.ID, "C", 1)

	res, err := f.svc.GetCourse(context.Background(), course.ID)
	require.NoError(t, err)
	require.NotNil(t, res.LessonCount)
	assert.Equal(t, int64(3), *res.LessonCount)
}
