package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"learning-system/internal/apperr"
	"learning-system/internal/models"
)

func TestDecodeJSONValidates(t *testing.T) {
	cases := []struct {
		name string
		body string
		msg  string
	}{
		{name: "ok", body: `{"moduleId": 1, "lessonId": 2}`},
		{name: "missing lesson", body: `{"moduleId": 1}`, msg: "LessonID is required"},
		{name: "malformed", body: `{"moduleId": `, msg: "invalid request body"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst models.LessonCompletionRequest
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			if tc.msg == "" {
				require.NoError(t, err)
				require.Equal(t, uint(2), dst.LessonID)
				return
			}
			require.True(t, apperr.Is(err, apperr.CodeValidation))
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestAnswerOptionBounds(t *testing.T) {
	minusOne, zero, minusTwo := -1, 0, -2

	require.NoError(t, Validate(models.AnswerInput{QuestionID: 1, SelectedOption: &minusOne}))
	require.NoError(t, Validate(models.AnswerInput{QuestionID: 1, SelectedOption: &zero}))
	require.Error(t, Validate(models.AnswerInput{QuestionID: 1, SelectedOption: &minusTwo}))
	require.Error(t, Validate(models.AnswerInput{QuestionID: 1}))
}

func TestPathAndQueryIDs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/enrollments/12?courseId=3&quizId=x", nil)
	req = mux.SetURLVars(req, map[string]string{"enrollmentId": "12", "bad": "0"})

	id, err := PathID(req, "enrollmentId")
	require.NoError(t, err)
	require.Equal(t, uint(12), id)

	_, err = PathID(req, "bad")
	require.True(t, apperr.Is(err, apperr.CodeValidation))

	id, err = QueryID(req, "courseId")
	require.NoError(t, err)
	require.Equal(t, uint(3), id)

	id, err = QueryID(req, "status")
	require.NoError(t, err)
	require.Zero(t, id)

	_, err = QueryID(req, "quizId")
	require.Error(t, err)
}
