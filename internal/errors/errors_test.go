package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation(CodeMissingHolderIdentity, "holder required"), http.StatusBadRequest},
		{"conflict", Conflict(CodeInsufficientCapacity, "sector full"), http.StatusConflict},
		{"state", State(CodeNoTransitionDefined, "event closed"), http.StatusConflict},
		{"not found", NotFound("ticket", 42), http.StatusNotFound},
		{"consistency", Consistency("sum mismatch"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := Conflict(CodeAlreadyCancelled, "ticket 7 already cancelled")
	wrapped := fmt.Errorf("cancel ticket: %w", inner)

	assert.True(t, IsConflict(wrapped))
	assert.Equal(t, CodeAlreadyCancelled, CodeOf(wrapped))
	assert.Equal(t, http.StatusConflict, HTTPStatus(wrapped))
}

func TestConsistencyIsNeverClientFacing(t *testing.T) {
	err := Consistency("transaction 3: attached tickets sum 120.00, declared 100.00")
	assert.True(t, IsConsistency(err))
	assert.False(t, IsConflict(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("pq: deadlock detected")
	err := Wrap(KindConflict, CodeInsufficientCapacity, cause, "reserve failed")
	assert.ErrorIs(t, err, cause)
}
