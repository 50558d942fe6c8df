package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatching(t *testing.T) {
	notFound := NewError(http.StatusNotFound, "no frame has been processed yet")
	wrapped := fmt.Errorf("latest frame: %w", notFound)

	assert.ErrorIs(t, wrapped, notFound)
	assert.ErrorIs(t, NewError(http.StatusNotFound, "no frame has been processed yet"), notFound)
	assert.NotErrorIs(t, NewError(http.StatusBadRequest, "no frame has been processed yet"), notFound)
	assert.NotErrorIs(t, errors.New("no frame has been processed yet"), notFound)
}

func TestStatus(t *testing.T) {
	tooLarge := NewError(http.StatusRequestEntityTooLarge, "frame exceeds the maximum camera size")

	assert.Equal(t, http.StatusRequestEntityTooLarge, Status(tooLarge, 0))
	assert.Equal(t, http.StatusRequestEntityTooLarge, Status(fmt.Errorf("ingest: %w", tooLarge), 0))
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("boom"), http.StatusInternalServerError))
}
