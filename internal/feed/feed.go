package feed

import (
	"sync"
	"time"

	"serata/internal/logger"
	"serata/internal/messaging"
	"serata/internal/metrics"
	"serata/internal/models"
)

// ActivityCap bounds the retained activity entries per event.
const ActivityCap = 50

const subscriberBuffer = 16

// Feed is the in-process push channel for dashboards. It is observational
// only: frames may be dropped or duplicated and must never be read back as
// ledger state. Publishing never blocks the caller.
type Feed struct {
	mu          sync.Mutex
	activities  map[int64][]models.Frame
	alerts      map[int64][]models.Alert
	nextAlertID int64
	subs        map[int64]map[chan models.Frame]struct{}
	nats        *messaging.NATSClient
}

func New(nats *messaging.NATSClient) *Feed {
	return &Feed{
		activities: make(map[int64][]models.Frame),
		alerts:     make(map[int64][]models.Alert),
		subs:       make(map[int64]map[chan models.Frame]struct{}),
		nats:       nats,
	}
}

// Publish appends an activity frame and fans it out to subscribers and
// NATS. Fire-and-forget on both legs.
func (f *Feed) Publish(eventID int64, subject string, payload any) {
	frame := models.Frame{
		Type:      models.FrameActivity,
		EventID:   eventID,
		Subject:   subject,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	f.mu.Lock()
	entries := append(f.activities[eventID], frame)
	if len(entries) > ActivityCap {
		entries = entries[len(entries)-ActivityCap:]
	}
	f.activities[eventID] = entries
	f.fanOutLocked(eventID, frame)
	f.mu.Unlock()

	if err := f.nats.Publish(subject, payload); err != nil {
		logger.Get().Error("Failed to publish feed event", "error", err, "subject", subject)
	}
}

// Refresh tells connected dashboards to refetch; it is not buffered.
func (f *Feed) Refresh(eventID int64) {
	frame := models.Frame{
		Type:      models.FrameRefresh,
		EventID:   eventID,
		Timestamp: time.Now(),
	}

	f.mu.Lock()
	f.fanOutLocked(eventID, frame)
	f.mu.Unlock()
}

// Alert records a dismissible notification and pushes it.
func (f *Feed) Alert(eventID int64, severity, message string) models.Alert {
	f.mu.Lock()
	f.nextAlertID++
	alert := models.Alert{
		ID:        f.nextAlertID,
		EventID:   eventID,
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now(),
	}
	f.alerts[eventID] = append(f.alerts[eventID], alert)
	f.fanOutLocked(eventID, models.Frame{
		Type:      models.FrameAlert,
		EventID:   eventID,
		Payload:   alert,
		Timestamp: alert.Timestamp,
	})
	f.mu.Unlock()

	return alert
}

// DismissAlert removes an alert; false when the id is unknown.
func (f *Feed) DismissAlert(eventID, alertID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	alerts := f.alerts[eventID]
	for i, a := range alerts {
		if a.ID == alertID {
			f.alerts[eventID] = append(alerts[:i], alerts[i+1:]...)
			return true
		}
	}
	return false
}

// Activities returns the retained recent entries, oldest first.
func (f *Feed) Activities(eventID int64) []models.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Frame, len(f.activities[eventID]))
	copy(out, f.activities[eventID])
	return out
}

func (f *Feed) Alerts(eventID int64) []models.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Alert, len(f.alerts[eventID]))
	copy(out, f.alerts[eventID])
	return out
}

// Subscribe registers a live frame channel for one event. The returned
// cancel func must be called when the client disconnects.
func (f *Feed) Subscribe(eventID int64) (<-chan models.Frame, func()) {
	ch := make(chan models.Frame, subscriberBuffer)

	f.mu.Lock()
	if f.subs[eventID] == nil {
		f.subs[eventID] = make(map[chan models.Frame]struct{})
	}
	f.subs[eventID][ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subs[eventID][ch]; ok {
			delete(f.subs[eventID], ch)
			close(ch)
		}
		f.mu.Unlock()
	}

	return ch, cancel
}

// fanOutLocked delivers to subscribers without blocking; a full subscriber
// loses the frame.
func (f *Feed) fanOutLocked(eventID int64, frame models.Frame) {
	for ch := range f.subs[eventID] {
		select {
		case ch <- frame:
		default:
			metrics.FeedFrameDropped()
		}
	}
}
