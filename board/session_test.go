package board

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(newTestStore(newMapKV()))
	s.Open(context.Background())
	return s
}

func TestSession_AccessBeforeOpen(t *testing.T) {
	s := NewSession(newTestStore(newMapKV()))

	if _, err := s.Snapshot(); !errors.Is(err, ErrNoDashboard) {
		t.Errorf("Snapshot() error = %v, want %v", err, ErrNoDashboard)
	}
	if _, err := s.AddPanel(context.Background(), ""); !errors.Is(err, ErrNoDashboard) {
		t.Errorf("AddPanel() error = %v, want %v", err, ErrNoDashboard)
	}
	if _, _, err := s.Selection(); !errors.Is(err, ErrNoDashboard) {
		t.Errorf("Selection() error = %v, want %v", err, ErrNoDashboard)
	}
}

func TestSession_OpenIsIdempotent(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	if _, err := s.AddPanel(ctx, ""); err != nil {
		t.Fatalf("AddPanel() error = %v", err)
	}
	s.Open(ctx)

	d, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(d.Panels) != 1 {
		t.Errorf("len(Panels) = %d, want 1 (second Open must not reload)", len(d.Panels))
	}
}

func TestSession_SnapshotIsIsolated(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	if _, err := s.AddPanel(ctx, ""); err != nil {
		t.Fatalf("AddPanel() error = %v", err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	snap.Panels["dashboard-item-1"].Title = "mutated"
	snap.Layouts["lg"][0].X = 99

	d, _ := s.Snapshot()
	if got := d.Panels["dashboard-item-1"].Title; got != "Panel 1" {
		t.Errorf("live Title = %q, want %q", got, "Panel 1")
	}
	if got := d.Layouts["lg"][0].X; got != 0 {
		t.Errorf("live lg[0].X = %d, want 0", got)
	}
}

func TestSession_SelectionAfterRemove(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	if _, err := s.AddPanel(ctx, ""); err != nil {
		t.Fatalf("AddPanel() error = %v", err)
	}
	if err := s.Select(ctx, "dashboard-item-1"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if err := s.RemovePanel(ctx, "dashboard-item-1"); err != nil {
		t.Fatalf("RemovePanel() error = %v", err)
	}

	p, ok, err := s.Selection()
	if err != nil {
		t.Fatalf("Selection() error = %v", err)
	}
	if ok || p != nil {
		t.Errorf("Selection() = %v, %v; want nil, false", p, ok)
	}
}

func TestSession_ReloadReadsBackend(t *testing.T) {
	ctx := context.Background()
	kv := newMapKV()
	s := NewSession(newTestStore(kv))
	s.Open(ctx)

	// another writer adds a panel to the same backend
	other := newTestStore(kv)
	d := other.Load(ctx)
	if _, err := other.AddPanel(ctx, d, "External"); err != nil {
		t.Fatalf("AddPanel() error = %v", err)
	}

	s.Reload(ctx)

	live, _ := s.Snapshot()
	p, ok := live.Panel("dashboard-item-1")
	if !ok || p.Title != "External" {
		t.Errorf("after Reload panel = %v, %v; want External", p, ok)
	}
}

// gatedKV pauses the next Get after arm until release is closed.
type gatedKV struct {
	*mapKV
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedKV() *gatedKV {
	return &gatedKV{
		mapKV:   newMapKV(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return g.mapKV.Get(ctx, key)
}

func TestSession_ReloadDoesNotLoseConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	kv := newGatedKV()
	s := NewSession(newTestStore(kv))
	s.Open(ctx)
	if _, err := s.AddPanel(ctx, "A"); err != nil {
		t.Fatalf("AddPanel() error = %v", err)
	}

	kv.armed.Store(true)
	reloaded := make(chan struct{})
	go func() {
		s.Reload(ctx)
		close(reloaded)
	}()
	<-kv.entered

	added := make(chan error, 1)
	go func() {
		_, err := s.AddPanel(ctx, "B")
		added <- err
	}()

	select {
	case err := <-added:
		t.Fatalf("AddPanel() returned during reload (err = %v), want it to wait", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(kv.release)
	<-reloaded
	if err := <-added; err != nil {
		t.Fatalf("AddPanel() error = %v", err)
	}

	d, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if p, ok := d.Panel("dashboard-item-2"); !ok || p.Title != "B" {
		t.Errorf("in memory dashboard-item-2 = %v, %v; want B", p, ok)
	}

	stored := newTestStore(kv.mapKV).Load(ctx)
	if _, ok := stored.Panel("dashboard-item-2"); !ok {
		t.Errorf("dashboard-item-2 not persisted, panels = %v", stored.PanelIDs())
	}
}

func TestSession_SubscribeReceivesEvents(t *testing.T) {
	s := newTestSession(t)
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	go func() {
		_, _ = s.AddPanel(context.Background(), "")
	}()

	select {
	case ev := <-ch:
		if ev.Type != EventAdded {
			t.Errorf("Type = %v, want %v", ev.Type, EventAdded)
		}
		if ev.PanelID != "dashboard-item-1" {
			t.Errorf("PanelID = %v, want dashboard-item-1", ev.PanelID)
		}
		if ev.At.IsZero() {
			t.Error("At should be set")
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive event")
	}
}

func TestSession_RejectedOperationsPublishNothing(t *testing.T) {
	s := newTestSession(t)
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	ctx := context.Background()
	if err := s.SetChartKind(ctx, "missing", ChartBar); !errors.Is(err, ErrPanelNotFound) {
		t.Fatalf("SetChartKind() error = %v, want %v", err, ErrPanelNotFound)
	}
	if err := s.Select(ctx, "missing"); !errors.Is(err, ErrPanelNotFound) {
		t.Fatalf("Select() error = %v, want %v", err, ErrPanelNotFound)
	}

	select {
	case ev := <-ch:
		t.Errorf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSession_MultipleSubscribers(t *testing.T) {
	s := newTestSession(t)

	ch1 := s.Subscribe()
	ch2 := s.Subscribe()
	ch3 := s.Subscribe()

	go func() {
		_ = s.RefreshSeries()
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 events", received)
		}
	}
}

func TestSession_Unsubscribe(t *testing.T) {
	s := newTestSession(t)

	ch := s.Subscribe()
	s.Unsubscribe(ch)
	s.Unsubscribe(ch) // safe twice

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}
}

func TestSession_SlowSubscriberDoesNotBlock(t *testing.T) {
	s := newTestSession(t)

	// subscriber that never reads
	_ = s.Subscribe()

	done := make(chan bool)
	go func() {
		for i := 0; i < 200; i++ {
			_ = s.RefreshSeries()
		}
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("RefreshSeries() blocked on slow subscriber")
	}
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	numGoroutines := 8
	numOps := 20

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				p, err := s.AddPanel(ctx, "")
				if err != nil {
					t.Errorf("AddPanel() error = %v", err)
					return
				}
				if j%2 == 0 {
					_ = s.RemovePanel(ctx, p.ID)
				}
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				_, _ = s.Snapshot()
			}
		}()
	}

	wg.Wait()

	d, _ := s.Snapshot()
	want := numGoroutines * numOps / 2
	if len(d.Panels) != want {
		t.Errorf("len(Panels) = %d, want %d", len(d.Panels), want)
	}
	seen := make(map[string]bool)
	for _, p := range d.Layouts["lg"] {
		if seen[p.PanelID] {
			t.Errorf("duplicate placement for %s", p.PanelID)
		}
		seen[p.PanelID] = true
		if _, ok := d.Panels[p.PanelID]; !ok {
			t.Errorf("placement for missing panel %s", p.PanelID)
		}
	}
}
