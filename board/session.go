package board

import (
	"context"
	"errors"
	"sync"
	"time"
)

// subscriberBuffer is the channel buffer of each subscriber.
const subscriberBuffer = 100

// EventType names the kind of change an [Event] reports.
type EventType string

const (
	EventLoaded    EventType = "loaded"
	EventAdded     EventType = "added"
	EventRemoved   EventType = "removed"
	EventUpdated   EventType = "updated"
	EventLayouts   EventType = "layouts"
	EventSelection EventType = "selection"
	EventSeries    EventType = "series"
	EventReloaded  EventType = "reloaded"
)

// Event reports one change to the session's dashboard.
type Event struct {
	Type    EventType `json:"type"`
	PanelID string    `json:"panel_id,omitempty"`
	At      time.Time `json:"at"`
}

// Session is the application state handle shared by every view.
//
// It holds the single live [Dashboard] for a process, serialises mutations
// through its [Store], and publishes an [Event] after each change.
// Accessors return [ErrNoDashboard] until [Session.Open] has run.
//
// Subscribers receive events on buffered channels (buffer size 100). Sends
// are non-blocking; a subscriber with a full buffer misses events rather
// than stalling mutations.
type Session struct {
	store *Store

	mu        sync.RWMutex
	dashboard *Dashboard

	subMu       sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewSession creates a session over store. Call [Session.Open] before use.
func NewSession(store *Store) *Session {
	return &Session{
		store:       store,
		subscribers: make(map[chan Event]struct{}),
	}
}

// Store returns the underlying store.
func (s *Session) Store() *Store {
	return s.store
}

// Open loads the dashboard from the store if it has not been loaded yet.
// Open is idempotent.
func (s *Session) Open(ctx context.Context) {
	s.mu.Lock()
	if s.dashboard != nil {
		s.mu.Unlock()
		return
	}
	s.dashboard = s.store.Load(ctx)
	s.mu.Unlock()

	s.publish(Event{Type: EventLoaded})
}

// Reload discards the in-memory dashboard and loads it again.
// Used when the backend was changed by another process. The read and the
// swap happen under the mutation lock, so a change finishing concurrently
// is either part of the reloaded document or applied after it.
func (s *Session) Reload(ctx context.Context) {
	s.mu.Lock()
	s.dashboard = s.store.Load(ctx)
	s.mu.Unlock()

	s.publish(Event{Type: EventReloaded})
}

// SetDashboard replaces the live dashboard without persisting it.
func (s *Session) SetDashboard(d *Dashboard) {
	s.mu.Lock()
	s.dashboard = d
	s.mu.Unlock()

	s.publish(Event{Type: EventReloaded})
}

// Snapshot returns a deep copy of the dashboard.
func (s *Session) Snapshot() (*Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dashboard == nil {
		return nil, ErrNoDashboard
	}
	return s.dashboard.Clone(), nil
}

// Selection returns a copy of the selected panel. It reports false when
// nothing is selected or the selection no longer resolves.
func (s *Session) Selection() (*Panel, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dashboard == nil {
		return nil, false, ErrNoDashboard
	}
	p, ok := s.dashboard.Selection()
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

// AddPanel adds a panel; see [Store.AddPanel]. Returns a copy of the panel.
func (s *Session) AddPanel(ctx context.Context, title string) (*Panel, error) {
	var p *Panel
	err := s.mutate(func(d *Dashboard) error {
		var err error
		p, err = s.store.AddPanel(ctx, d, title)
		if p != nil {
			p = p.Clone()
		}
		return err
	})
	if p != nil {
		s.publish(Event{Type: EventAdded, PanelID: p.ID})
	}
	return p, err
}

// RemovePanel removes a panel; see [Store.RemoveItem].
func (s *Session) RemovePanel(ctx context.Context, id string) error {
	err := s.mutate(func(d *Dashboard) error {
		return s.store.RemoveItem(ctx, d, id)
	})
	if changed(err) {
		s.publish(Event{Type: EventRemoved, PanelID: id})
	}
	return err
}

// SetLayouts replaces the layouts; see [Store.SetLayouts].
func (s *Session) SetLayouts(ctx context.Context, layouts Layouts) (int, error) {
	var dropped int
	err := s.mutate(func(d *Dashboard) error {
		var err error
		dropped, err = s.store.SetLayouts(ctx, d, layouts)
		return err
	})
	if changed(err) {
		s.publish(Event{Type: EventLayouts})
	}
	return dropped, err
}

// SetChartKind changes a panel's chart kind; see [Store.SetChartKind].
func (s *Session) SetChartKind(ctx context.Context, id string, kind ChartKind) error {
	err := s.mutate(func(d *Dashboard) error {
		return s.store.SetChartKind(ctx, d, id, kind)
	})
	if changed(err) {
		s.publish(Event{Type: EventUpdated, PanelID: id})
	}
	return err
}

// RenamePanel changes a panel's title; see [Store.RenamePanel].
func (s *Session) RenamePanel(ctx context.Context, id, title string) error {
	err := s.mutate(func(d *Dashboard) error {
		return s.store.RenamePanel(ctx, d, id, title)
	})
	if changed(err) {
		s.publish(Event{Type: EventUpdated, PanelID: id})
	}
	return err
}

// Select sets the current selection; see [Store.Select].
func (s *Session) Select(ctx context.Context, id string) error {
	err := s.mutate(func(d *Dashboard) error {
		return s.store.Select(ctx, d, id)
	})
	if changed(err) {
		s.publish(Event{Type: EventSelection, PanelID: id})
	}
	return err
}

// ClearSelection clears the current selection.
func (s *Session) ClearSelection(ctx context.Context) error {
	err := s.mutate(func(d *Dashboard) error {
		return s.store.ClearSelection(ctx, d)
	})
	if changed(err) {
		s.publish(Event{Type: EventSelection})
	}
	return err
}

// RefreshSeries regenerates every panel's sample data.
func (s *Session) RefreshSeries() error {
	err := s.mutate(func(d *Dashboard) error {
		s.store.RefreshSeries(d)
		return nil
	})
	if changed(err) {
		s.publish(Event{Type: EventSeries})
	}
	return err
}

// mutate runs fn on the live dashboard with the write lock held, so the
// change and its persistence complete before any other operation starts.
func (s *Session) mutate(fn func(d *Dashboard) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dashboard == nil {
		return ErrNoDashboard
	}
	return fn(s.dashboard)
}

// changed reports whether an operation that returned err still modified
// the dashboard. Persistence failures leave the change in place; rejected
// preconditions do not.
func changed(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNoDashboard),
		errors.Is(err, ErrPanelNotFound),
		errors.Is(err, ErrUnknownChartKind):
		return false
	default:
		return true
	}
}

// Subscribe returns a channel receiving every subsequent [Event].
//
// Caller must call [Session.Unsubscribe] when done to prevent resource leaks.
func (s *Session) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// multiple times or with an unknown channel.
func (s *Session) Unsubscribe(ch <-chan Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for subCh := range s.subscribers {
		if subCh == ch {
			delete(s.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// publish sends ev to all subscribers without blocking.
func (s *Session) publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// subscriber is slow, drop the event
		}
	}
}
