package feed

import (
	"fmt"
	"testing"

	"serata/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestActivitiesAreBounded(t *testing.T) {
	f := New(nil)

	for i := 0; i < ActivityCap+20; i++ {
		f.Publish(1, models.SubjectTicketIssued, fmt.Sprintf("payload-%d", i))
	}

	entries := f.Activities(1)
	assert.Len(t, entries, ActivityCap)
	// Oldest entries are evicted first.
	assert.Equal(t, "payload-20", entries[0].Payload)
	assert.Equal(t, fmt.Sprintf("payload-%d", ActivityCap+19), entries[len(entries)-1].Payload)
}

func TestActivitiesArePerEvent(t *testing.T) {
	f := New(nil)
	f.Publish(1, models.SubjectTicketIssued, "a")
	f.Publish(2, models.SubjectTicketIssued, "b")

	assert.Len(t, f.Activities(1), 1)
	assert.Len(t, f.Activities(2), 1)
	assert.Empty(t, f.Activities(3))
}

func TestSubscriberReceivesFrames(t *testing.T) {
	f := New(nil)
	ch, cancel := f.Subscribe(1)
	defer cancel()

	f.Publish(1, models.SubjectTicketIssued, "hello")

	frame := <-ch
	assert.Equal(t, models.FrameActivity, frame.Type)
	assert.Equal(t, models.SubjectTicketIssued, frame.Subject)
	assert.Equal(t, "hello", frame.Payload)
}

func TestSubscriberForOtherEventSeesNothing(t *testing.T) {
	f := New(nil)
	ch, cancel := f.Subscribe(2)
	defer cancel()

	f.Publish(1, models.SubjectTicketIssued, "hello")

	select {
	case frame := <-ch:
		t.Fatalf("unexpected frame: %+v", frame)
	default:
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	f := New(nil)
	_, cancel := f.Subscribe(1)
	defer cancel()

	// Overflow the subscriber buffer; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			f.Publish(1, models.SubjectTicketIssued, i)
		}
		close(done)
	}()
	<-done

	// The buffer retains at most its capacity; the ring keeps everything
	// up to the cap.
	assert.Len(t, f.Activities(1), subscriberBuffer*3)
}

func TestAlertsAreDismissible(t *testing.T) {
	f := New(nil)
	a := f.Alert(1, "warning", "sector almost full")
	b := f.Alert(1, "error", "scanner offline")

	assert.Len(t, f.Alerts(1), 2)
	assert.True(t, f.DismissAlert(1, a.ID))
	assert.False(t, f.DismissAlert(1, a.ID))

	remaining := f.Alerts(1)
	assert.Len(t, remaining, 1)
	assert.Equal(t, b.ID, remaining[0].ID)
}

func TestRefreshIsNotBuffered(t *testing.T) {
	f := New(nil)
	ch, cancel := f.Subscribe(1)
	defer cancel()

	f.Refresh(1)

	frame := <-ch
	assert.Equal(t, models.FrameRefresh, frame.Type)
	assert.Empty(t, f.Activities(1))
}

func TestCancelIsIdempotent(t *testing.T) {
	f := New(nil)
	_, cancel := f.Subscribe(1)
	cancel()
	cancel()

	// Publishing after cancel must not panic on the closed channel.
	f.Publish(1, models.SubjectTicketIssued, "after cancel")
}
