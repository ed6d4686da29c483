package quiz

import (
	"math"
	"time"

	"learning-system/internal/models"
)

type gradedAttempt struct {
	Answers    []models.Answer
	Score      int
	MaxScore   int
	Percentage int
	Passed     bool
}

// grade scores answers against the quiz definition. It reads nothing but its
// arguments, so equal inputs always produce equal results.
//
// Answers referencing an unknown question, or repeating an already graded one, are
// recorded as incorrect and add nothing to maxScore. An unanswered (-1) or
// out-of-range option is incorrect.
func grade(quiz *models.Quiz, answers []models.AnswerInput) gradedAttempt {
	out := gradedAttempt{Answers: make([]models.Answer, 0, len(answers))}
	graded := make(map[uint]bool, len(answers))

	for _, in := range answers {
		selected := -1
		if in.SelectedOption != nil {
			selected = *in.SelectedOption
		}
		answer := models.Answer{QuestionID: in.QuestionID, SelectedOption: selected}

		question := quiz.FindQuestion(in.QuestionID)
		if question != nil && !graded[question.ID] {
			graded[question.ID] = true
			out.MaxScore += question.Points
			answer.IsCorrect = selected >= 0 &&
				selected < len(question.Options) &&
				selected == question.CorrectAnswer
			if answer.IsCorrect {
				answer.Points = question.Points
				out.Score += question.Points
			}
		}
		out.Answers = append(out.Answers, answer)
	}

	out.Percentage = percentage(out.Score, out.MaxScore)
	out.Passed = out.Percentage >= quiz.PassingScore
	return out
}

func percentage(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(maxScore)))
}

// elapsedSeconds is now-startedAt in whole seconds, never negative.
func elapsedSeconds(startedAt, now time.Time) int {
	d := now.Sub(startedAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// overtime reports whether a timed quiz took longer than its limit plus grace.
func overtime(quiz *models.Quiz, timeSpent int, grace time.Duration) bool {
	if quiz.TimeLimit <= 0 {
		return false
	}
	limit := time.Duration(quiz.TimeLimit)*time.Minute + grace
	return time.Duration(timeSpent)*time.Second > limit
}
