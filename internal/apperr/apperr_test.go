package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusOfWrappedError(t *testing.T) {
	err := fmt.Errorf("record completion: %w", NotFound("enrollment %d not found", 4))

	require.Equal(t, http.StatusNotFound, StatusOf(err))
	require.True(t, Is(err, CodeNotFound))
	require.False(t, Is(err, CodeForbidden))
	require.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestWriteTypedError(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, Validation("Grade must be between 0 and %d", 100))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Grade must be between 0 and 100", body["error"])
	require.Equal(t, CodeValidation, body["code"])
}

func TestWriteHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "pq:")
}
