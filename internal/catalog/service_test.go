package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"learning-system/internal/apperr"
	"learning-system/internal/models"
	"learning-system/internal/seed"
	"learning-system/internal/testutil"
	"learning-system/pkg/cache"
	"learning-system/pkg/logger"
)

type memoryCache struct {
	courses map[uint]*models.Course
	hits    int
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{courses: make(map[uint]*models.Course)}
}

func (c *memoryCache) GetCourse(_ context.Context, id uint) (*models.Course, error) {
	course, ok := c.courses[id]
	if !ok {
		return nil, cache.ErrMiss
	}
	c.hits++
	return course, nil
}

func (c *memoryCache) SetCourse(_ context.Context, course *models.Course) error {
	c.courses[course.ID] = course
	return nil
}

func (c *memoryCache) DeleteCourse(_ context.Context, id uint) error {
	delete(c.courses, id)
	c.deletes++
	return nil
}

func newService(t *testing.T, courseCache Cache) *Service {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := logger.NewNop()
	return NewService(NewRepository(db, log), courseCache, log)
}

func TestCreateCourseRecomputesTotals(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	course := seed.SampleCourse()
	course.TotalLessons = 1
	course.TotalDuration = 1
	require.NoError(t, svc.CreateCourse(ctx, course))

	stored, err := svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Equal(t, 9, stored.TotalLessons)
	require.Equal(t, 135, stored.TotalDuration)
	require.Len(t, stored.Modules, 3)
	require.Equal(t, "Tooling", stored.Modules[0].Lessons[0].Title)
	require.Len(t, stored.Quizzes[0].Questions, 3)
}

func TestCreateCourseIgnoresClientIDs(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	first := seed.SampleCourse()
	require.NoError(t, svc.CreateCourse(ctx, first))

	second := seed.SampleCourse()
	second.ID = first.ID
	second.Modules[0].ID = first.Modules[0].ID
	second.Modules[0].Lessons[0].ID = first.Modules[0].Lessons[0].ID
	second.Quizzes[0].ID = first.Quizzes[0].ID
	second.Quizzes[0].Questions[0].ID = first.Quizzes[0].Questions[0].ID
	second.Assignments[0].ID = first.Assignments[0].ID
	stale := first.Modules[1].ID
	second.Assignments[0].ModuleID = &stale
	require.NoError(t, svc.CreateCourse(ctx, second))

	require.NotEqual(t, first.ID, second.ID)
	stored, err := svc.GetCourse(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, 9, stored.TotalLessons)
	require.Len(t, stored.Modules, 3)
	require.Len(t, stored.Modules[0].Lessons, 3)
	require.NotEqual(t, first.Modules[0].ID, stored.Modules[0].ID)
	require.NotEqual(t, first.Modules[0].Lessons[0].ID, stored.Modules[0].Lessons[0].ID)
	require.Len(t, stored.Quizzes[0].Questions, 3)
	require.NotEqual(t, first.Quizzes[0].ID, stored.Quizzes[0].ID)
	require.Nil(t, stored.Assignments[0].ModuleID)

	original, err := svc.GetCourse(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, original.Modules[0].Lessons, 3)
	require.Equal(t, 9, original.TotalLessons)
}

func TestCreateCourseValidation(t *testing.T) {
	svc := newService(t, nil)

	err := svc.CreateCourse(context.Background(), &models.Course{Title: "  "})
	require.True(t, apperr.Is(err, apperr.CodeValidation))

	course := seed.SampleCourse()
	course.Quizzes[0].PassingScore = 120
	err = svc.CreateCourse(context.Background(), course)
	require.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestGetCourseReadsThroughCache(t *testing.T) {
	mem := newMemoryCache()
	svc := newService(t, mem)
	ctx := context.Background()

	course := seed.SampleCourse()
	require.NoError(t, svc.CreateCourse(ctx, course))

	_, err := svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Equal(t, 0, mem.hits)
	require.Contains(t, mem.courses, course.ID)

	_, err = svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Equal(t, 1, mem.hits)

	_, err = svc.GetCourse(ctx, 404)
	require.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = svc.GetCourse(ctx, 0)
	require.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestAddLessonUpdatesTotalsAndInvalidatesCache(t *testing.T) {
	mem := newMemoryCache()
	svc := newService(t, mem)
	ctx := context.Background()

	course := seed.SampleCourse()
	require.NoError(t, svc.CreateCourse(ctx, course))
	_, err := svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)

	grown, err := svc.AddLesson(ctx, course.ID, course.Modules[1].ID, models.AddLessonRequest{Title: "Reflection", Duration: 25, Order: 4})
	require.NoError(t, err)
	require.Equal(t, 10, grown.TotalLessons)
	require.Equal(t, 160, grown.TotalDuration)
	require.Equal(t, 1, mem.deletes)
	require.NotContains(t, mem.courses, course.ID)

	fresh, err := svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Equal(t, 10, fresh.TotalLessons)
	require.Len(t, fresh.Modules[1].Lessons, 4)

	_, err = svc.AddLesson(ctx, course.ID, 999, models.AddLessonRequest{Title: "Nowhere"})
	require.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestListCoursesOnlyPublished(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	published := seed.SampleCourse()
	require.NoError(t, svc.CreateCourse(ctx, published))
	draft := seed.SampleCourse()
	draft.Title = "Draft"
	draft.IsPublished = false
	require.NoError(t, svc.CreateCourse(ctx, draft))

	courses, err := svc.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, published.ID, courses[0].ID)
}

type brokenCache struct{ memoryCache }

func (brokenCache) GetCourse(context.Context, uint) (*models.Course, error) {
	return nil, errors.New("connection refused")
}

func TestGetCourseLogsCacheFailures(t *testing.T) {
	db := testutil.NewTestDB(t)
	core, logs := observer.New(zap.WarnLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	ctx := context.Background()

	broken := &brokenCache{memoryCache: *newMemoryCache()}
	svc := NewService(NewRepository(db, log), broken, log)
	course := seed.SampleCourse()
	require.NoError(t, svc.CreateCourse(ctx, course))

	got, err := svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Equal(t, course.ID, got.ID)

	failures := logs.FilterMessage("read cached course failed").All()
	require.Len(t, failures, 1)
	require.Equal(t, "connection refused", failures[0].ContextMap()["error"])

	mem := newMemoryCache()
	svc = NewService(NewRepository(db, log), mem, log)
	_, err = svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, logs.FilterMessage("read cached course failed").All(), 1)
}
