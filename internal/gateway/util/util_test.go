package util

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"closercollege/internal/shared"
)

func TestHandleServiceError_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", shared.NewNotFound("course", "c1"), http.StatusNotFound},
		{"conflict", shared.NewConflict("enrollment", "e1", "already enrolled"), http.StatusConflict},
		{"invalid state", shared.NewInvalidState("enrollment is revoked"), http.StatusUnprocessableEntity},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleServiceError(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ExtractToken(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Bearer abc123")
	token, err := ExtractToken(r)
	assert.NoError(t, err)
	assert.Equal(t, "abc123", token)

	r.Header.Set("Authorization", "Basic abc123")
	_, err = ExtractToken(r)
	assert.Error(t, err)
}
