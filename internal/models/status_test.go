package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventStatusAdvancesStrictlyForward(t *testing.T) {
	next, ok := EventDraft.Next()
	assert.True(t, ok)
	assert.Equal(t, EventScheduled, next)

	next, ok = next.Next()
	assert.True(t, ok)
	assert.Equal(t, EventOngoing, next)

	next, ok = next.Next()
	assert.True(t, ok)
	assert.Equal(t, EventClosed, next)
}

func TestEventStatusClosedIsTerminal(t *testing.T) {
	_, ok := EventClosed.Next()
	assert.False(t, ok)
}

func TestEventStatusNoSkipping(t *testing.T) {
	// Walking the chain from draft must visit every state exactly once.
	seen := []EventStatus{EventDraft}
	cur := EventDraft
	for {
		next, ok := cur.Next()
		if !ok {
			break
		}
		seen = append(seen, next)
		cur = next
	}
	assert.Equal(t, []EventStatus{EventDraft, EventScheduled, EventOngoing, EventClosed}, seen)
}

func TestUnknownStatusHasNoTransition(t *testing.T) {
	_, ok := EventStatus("archived").Next()
	assert.False(t, ok)
	assert.False(t, EventStatus("archived").Valid())
}

func TestTicketingSuspendResumeGating(t *testing.T) {
	assert.True(t, TicketingActive.CanSuspend(EventOngoing))
	assert.True(t, TicketingSuspended.CanResume(EventScheduled))

	// Paused ticketing on a closed event stays frozen in both directions.
	assert.False(t, TicketingActive.CanSuspend(EventClosed))
	assert.False(t, TicketingSuspended.CanResume(EventClosed))

	// Only the active<->suspended pair is reachable through pause/resume.
	assert.False(t, TicketingDraft.CanSuspend(EventOngoing))
	assert.False(t, TicketingClosed.CanResume(EventOngoing))
	assert.False(t, TicketingActive.CanResume(EventOngoing))
}

func TestResaleCausaleValidation(t *testing.T) {
	for _, c := range []ResaleCausale{CausaleImpediment, CausaleRenunciation, CausaleError, CausaleOther} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, ResaleCausale("whim").Valid())
}

func TestTicketTypeValidation(t *testing.T) {
	assert.True(t, TicketIntero.Valid())
	assert.True(t, TicketRidotto.Valid())
	assert.False(t, TicketType("omaggio").Valid())
}
