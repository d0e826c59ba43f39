package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrStorageRead, "finding index records", cause)

	assert.ErrorIs(t, err, ErrStorageRead)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "finding index records")
	assert.Nil(t, Wrap(ErrStorageRead, "noop", nil))
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{New(ErrInvalidInput, http.StatusUnprocessableEntity, "bad"), http.StatusUnprocessableEntity},
		{fmt.Errorf("get: %w", ErrDocumentNotFound), http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrLockHeld, http.StatusConflict},
		{Wrap(ErrStorageWrite, "insert", errors.New("x")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatusCode(tt.err), tt.err.Error())
	}
}

func TestAppError(t *testing.T) {
	err := Newf(ErrDocumentNotFound, http.StatusNotFound, "document %s", "abc")
	assert.Equal(t, "document not found: document abc", err.Error())
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
