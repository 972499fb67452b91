package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", ErrNotFound, http.StatusNotFound, "record not found"},
		{"wrapped not found", Wrap(ErrNotFound, "item not found"), http.StatusNotFound, "item not found"},
		{"fmt wrapped", fmt.Errorf("lookup: %w", Wrap(ErrNotFound, "user not found")), http.StatusNotFound, "user not found"},
		{"conflict", Wrap(ErrConflict, "email already registered"), http.StatusConflict, "email already registered"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "not enough permissions"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "could not validate credentials"},
		{"credentials", ErrInvalidCredentials, http.StatusBadRequest, "incorrect username or password"},
		{"validation", Wrap(ErrValidation, "invalid request body"), http.StatusUnprocessableEntity, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			require.NotNil(t, httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.msg, httpErr.Message)
		})
	}
}

func TestMapErrorToHTTP_ValidationFields(t *testing.T) {
	httpErr := MapErrorToHTTP(NewValidationError("email", "must be a valid email address"))
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)

	resp := httpErr.ToErrorResponse()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, map[string]string{"email": "must be a valid email address"}, resp.Data)
}

func TestMapErrorToHTTP_Unmapped(t *testing.T) {
	assert.Nil(t, MapErrorToHTTP(errors.New("disk on fire")))
}

func TestWrap_KeepsSentinel(t *testing.T) {
	err := Wrap(ErrConflict, "username already registered")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "username already registered", err.Error())
	assert.True(t, errors.Is(NewValidationError("id", "bad"), ErrValidation))
}
