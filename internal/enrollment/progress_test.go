package enrollment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"learning-system/internal/models"
)

func twoModuleCourse() *models.Course {
	course := &models.Course{
		Modules: []models.Module{
			{ID: 1, Lessons: []models.Lesson{{ID: 11}, {ID: 12}}},
			{ID: 2, Lessons: []models.Lesson{{ID: 21}}},
		},
	}
	course.RecomputeTotals()
	return course
}

func TestOverallPercent(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{2, 9, 22},
		{1, 3, 33},
		{2, 3, 67},
		{9, 9, 100},
		{10, 9, 100},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, overallPercent(tc.completed, tc.total), "%d/%d", tc.completed, tc.total)
	}
}

func TestMarkLessonCompletedCreatesEntriesLazily(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tree, changed := markLessonCompleted(nil, 1, 11, now)
	require.True(t, changed)
	require.Len(t, tree, 1)
	require.Equal(t, uint(1), tree[0].ModuleID)
	require.Len(t, tree[0].Lessons, 1)
	require.True(t, tree[0].Lessons[0].Completed)
	require.Equal(t, now, *tree[0].Lessons[0].CompletedAt)

	again, changed := markLessonCompleted(tree, 1, 11, now.Add(time.Hour))
	require.False(t, changed)
	require.Equal(t, now, *again[0].Lessons[0].CompletedAt)
}

func TestCloneTreeDoesNotAlias(t *testing.T) {
	original := []models.ModuleProgress{{ModuleID: 1, Lessons: []models.LessonProgress{{LessonID: 11}}}}

	clone := cloneTree(original)
	clone[0].Lessons[0].Completed = true

	require.False(t, original[0].Lessons[0].Completed)
}

func TestRecordWatchedOnlyRaises(t *testing.T) {
	tree, lesson, changed := recordWatched(nil, 1, 11, 120)
	require.True(t, changed)
	require.Equal(t, 120, lesson.WatchedDuration)

	tree, lesson, changed = recordWatched(tree, 1, 11, 60)
	require.False(t, changed)
	require.Equal(t, 120, lesson.WatchedDuration)
	require.False(t, lesson.Completed)
	require.Equal(t, 0, countCompleted(tree))
}

func TestApplyAggregatesRollsUpModules(t *testing.T) {
	course := twoModuleCourse()
	now := time.Now()
	e := &models.Enrollment{}

	tree, _ := markLessonCompleted(nil, 1, 11, now)
	applyAggregates(e, tree, course, now)
	require.Equal(t, 1, e.CompletedLessons)
	require.Equal(t, 3, e.TotalLessons)
	require.Equal(t, 33, e.OverallProgress)
	require.False(t, e.Progress.Data()[0].Completed)

	tree, _ = markLessonCompleted(cloneTree(e.Progress.Data()), 1, 12, now)
	applyAggregates(e, tree, course, now)
	require.True(t, e.Progress.Data()[0].Completed)
	require.False(t, e.IsCompleted)

	tree, _ = markLessonCompleted(cloneTree(e.Progress.Data()), 2, 21, now)
	applyAggregates(e, tree, course, now)
	require.Equal(t, 100, e.OverallProgress)
	require.True(t, e.IsCompleted)
	require.NotNil(t, e.CompletedAt)
}

func TestApplyAggregatesKeepsCompletionWhenCourseGrows(t *testing.T) {
	course := twoModuleCourse()
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := &models.Enrollment{}

	var tree []models.ModuleProgress
	tree, _ = markLessonCompleted(tree, 1, 11, first)
	tree, _ = markLessonCompleted(tree, 1, 12, first)
	tree, _ = markLessonCompleted(tree, 2, 21, first)
	applyAggregates(e, tree, course, first)
	require.True(t, e.IsCompleted)

	course.Modules[1].Lessons = append(course.Modules[1].Lessons, models.Lesson{ID: 22})
	course.RecomputeTotals()

	later := first.Add(24 * time.Hour)
	applyAggregates(e, cloneTree(e.Progress.Data()), course, later)
	require.Equal(t, 4, e.TotalLessons)
	require.Equal(t, 75, e.OverallProgress)
	require.True(t, e.IsCompleted)
	require.Equal(t, first, *e.CompletedAt)
	require.False(t, e.Progress.Data()[1].Completed)
}

func TestLessonInModule(t *testing.T) {
	course := twoModuleCourse()

	require.True(t, lessonInModule(course, 1, 12))
	require.False(t, lessonInModule(course, 2, 12))
	require.False(t, lessonInModule(course, 9, 11))
}
