package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/crewdeck/crewdeck/internal/errors"
)

func TestWriteAppError_StatusMapping(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.NotFound("job not found"), http.StatusNotFound},
		{"conflict", apperrors.Conflict("already exists"), http.StatusConflict},
		{"validation", apperrors.Validation("bad input"), http.StatusBadRequest},
		{"unauthorized", apperrors.Unauthorized("invalid email or password"), http.StatusUnauthorized},
		{"forbidden", apperrors.Forbidden("account is pending admin approval"), http.StatusForbidden},
		{"internal", apperrors.Internal("boom"), http.StatusInternalServerError},
		{"untyped", assertAnError{}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			WriteAppError(w, tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

type assertAnError struct{}

func (assertAnError) Error() string { return "plain failure" }

func TestWriteAppError_MasksInternalMessage(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	WriteAppError(w, apperrors.Internal("connection string leaked"))

	assert.NotContains(t, w.Body.String(), "connection string")
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestWriteAppError_IncludesField(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	WriteAppError(w, apperrors.ValidationField("email", "email is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"email"`)
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	t.Parallel()
	var dst struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	w := httptest.NewRecorder()

	ok := DecodeJSON(w, r, &dst)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWriteJSON_SetsContentType(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusTeapot, map[string]string{"k": "v"})

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"k":"v"}`, w.Body.String())
}
