package enrollment

import (
	"math"
	"time"

	"gorm.io/datatypes"

	"learning-system/internal/models"
)

// cloneTree deep-copies a progress tree so mutations never alias the loaded document.
func cloneTree(tree []models.ModuleProgress) []models.ModuleProgress {
	out := make([]models.ModuleProgress, len(tree))
	for i, m := range tree {
		out[i] = m
		out[i].Lessons = append([]models.LessonProgress(nil), m.Lessons...)
	}
	return out
}

// upsertLesson locates the lesson entry under the module entry, creating either one
// when absent. It returns the indexes of the entry and whether it was created.
func upsertLesson(tree []models.ModuleProgress, moduleID, lessonID uint) ([]models.ModuleProgress, int, int, bool) {
	mi := -1
	for i := range tree {
		if tree[i].ModuleID == moduleID {
			mi = i
			break
		}
	}
	if mi < 0 {
		tree = append(tree, models.ModuleProgress{ModuleID: moduleID, Lessons: []models.LessonProgress{}})
		mi = len(tree) - 1
	}

	lessons := tree[mi].Lessons
	for li := range lessons {
		if lessons[li].LessonID == lessonID {
			return tree, mi, li, false
		}
	}
	tree[mi].Lessons = append(lessons, models.LessonProgress{LessonID: lessonID})
	return tree, mi, len(tree[mi].Lessons) - 1, true
}

// markLessonCompleted flips the lesson to completed. Completion is monotonic: an
// already completed lesson reports changed=false and the tree is untouched.
func markLessonCompleted(tree []models.ModuleProgress, moduleID, lessonID uint, now time.Time) ([]models.ModuleProgress, bool) {
	for _, m := range tree {
		if m.ModuleID != moduleID {
			continue
		}
		for _, l := range m.Lessons {
			if l.LessonID == lessonID && l.Completed {
				return tree, false
			}
		}
	}

	tree, mi, li, _ := upsertLesson(tree, moduleID, lessonID)
	completedAt := now
	tree[mi].Lessons[li].Completed = true
	tree[mi].Lessons[li].CompletedAt = &completedAt
	return tree, true
}

// recordWatched raises the watched duration of a lesson, creating the entry lazily.
func recordWatched(tree []models.ModuleProgress, moduleID, lessonID uint, watched int) ([]models.ModuleProgress, models.LessonProgress, bool) {
	tree, mi, li, created := upsertLesson(tree, moduleID, lessonID)
	lesson := &tree[mi].Lessons[li]
	if watched > lesson.WatchedDuration {
		lesson.WatchedDuration = watched
		return tree, *lesson, true
	}
	return tree, *lesson, created
}

// countCompleted rescans the whole tree rather than trusting a stored counter.
func countCompleted(tree []models.ModuleProgress) int {
	n := 0
	for _, m := range tree {
		for _, l := range m.Lessons {
			if l.Completed {
				n++
			}
		}
	}
	return n
}

// overallPercent is round(100*completed/total), 0 for an empty course, capped at 100.
func overallPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(completed) / float64(total)))
	if pct > 100 {
		return 100
	}
	return pct
}

// refreshModuleRollups marks a module entry completed when every lesson of the
// catalog module has a completed entry.
func refreshModuleRollups(tree []models.ModuleProgress, course *models.Course) {
	for i := range tree {
		module := course.FindModule(tree[i].ModuleID)
		if module == nil || len(module.Lessons) == 0 {
			tree[i].Completed = false
			continue
		}
		done := make(map[uint]bool, len(tree[i].Lessons))
		for _, l := range tree[i].Lessons {
			if l.Completed {
				done[l.LessonID] = true
			}
		}
		complete := true
		for _, l := range module.Lessons {
			if !done[l.ID] {
				complete = false
				break
			}
		}
		tree[i].Completed = complete
	}
}

// applyAggregates stores tree on e and recomputes every derived field. isCompleted is a
// one-way ratchet: growth of the course never clears it and completedAt is set once.
func applyAggregates(e *models.Enrollment, tree []models.ModuleProgress, course *models.Course, now time.Time) {
	refreshModuleRollups(tree, course)

	e.Progress = datatypes.NewJSONType(tree)
	e.CompletedLessons = countCompleted(tree)
	e.TotalLessons = course.TotalLessons
	e.OverallProgress = overallPercent(e.CompletedLessons, e.TotalLessons)

	if e.OverallProgress >= 100 && !e.IsCompleted {
		completedAt := now
		e.IsCompleted = true
		e.CompletedAt = &completedAt
	}

	accessed := now
	e.LastAccessedAt = &accessed
}

// lessonInModule reports whether lessonID belongs to moduleID in the course catalog.
func lessonInModule(course *models.Course, moduleID, lessonID uint) bool {
	module := course.FindModule(moduleID)
	if module == nil {
		return false
	}
	for _, l := range module.Lessons {
		if l.ID == lessonID {
			return true
		}
	}
	return false
}
