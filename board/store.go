package board

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// DefaultKey is the key the dashboard document is stored under.
const DefaultKey = "dashboard"

// KV is the persistent key-value backend a [Store] serialises to.
//
// Get reports ok=false with a nil error when the key does not exist.
// Implementations must be safe for concurrent use.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}

// StoreOption configures a [Store].
type StoreOption func(*Store)

// WithKey sets the key the document is stored under. Empty keys are ignored.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for soft failures. Nil is ignored.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGenerator sets the sample series generator. Nil is ignored.
func WithGenerator(g *Generator) StoreOption {
	return func(s *Store) {
		if g != nil {
			s.gen = g
		}
	}
}

// Store owns every mutation of a [Dashboard] and its persistence.
//
// Every mutating method writes the document to the backend before it
// returns. The in-memory document stays the source of truth: when the
// write fails the mutation is kept and the error is returned.
//
// A Store may be shared, but a single Dashboard must not be mutated from
// several goroutines at once; wrap it in a [Session] for that.
type Store struct {
	kv     KV
	key    string
	gen    *Generator
	logger *slog.Logger

	// mu serialises document writes to the backend.
	mu sync.Mutex
}

// NewStore creates a [Store] persisting to kv.
func NewStore(kv KV, opts ...StoreOption) *Store {
	s := &Store{
		kv:     kv,
		key:    DefaultKey,
		gen:    NewGenerator(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the backend key of the document.
func (s *Store) Key() string {
	return s.key
}

// storedPanel is the persisted form of a Panel. Series is deliberately absent.
type storedPanel struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Kind  ChartKind `json:"type"`
}

// storedDashboard is the persisted form of a Dashboard.
type storedDashboard struct {
	Panels   map[string]storedPanel `json:"items"`
	Layouts  Layouts                `json:"layouts"`
	Selected string                 `json:"current,omitempty"`
}

// Load reads the document from the backend.
//
// A missing key yields an empty dashboard. Malformed content and backend
// read errors are logged and also yield an empty dashboard; Load never
// fails. Panels without samples get a fresh series, unknown chart kinds
// fall back to [ChartLine], and dangling placements are dropped.
func (s *Store) Load(ctx context.Context) *Dashboard {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("dashboard read failed, starting empty", "key", s.key, "error", err)
		return NewDashboard()
	}
	if !ok {
		return NewDashboard()
	}

	d, err := decodeDashboard(raw)
	if err != nil {
		s.logger.Warn("stored dashboard is malformed, starting empty", "key", s.key, "error", err)
		return NewDashboard()
	}

	for id, p := range d.Panels {
		if !p.Kind.Valid() {
			s.logger.Warn("unknown chart kind, using line", "panel_id", id, "kind", p.Kind)
			p.Kind = ChartLine
		}
		if len(p.Series) == 0 {
			p.Series = s.gen.Series()
		}
	}

	clean, dropped := sanitizeLayouts(d.Layouts, d.Panels)
	if dropped > 0 {
		s.logger.Warn("dropped dangling placements on load", "count", dropped)
	}
	d.Layouts = clean
	ensurePlacements(d)

	if _, ok := d.Selection(); !ok {
		d.Selected = ""
	}

	return d
}

// decodeDashboard parses stored content. Panel ids are taken from the map
// keys; nil entries are discarded.
func decodeDashboard(raw []byte) (*Dashboard, error) {
	var doc struct {
		Panels  map[string]*Panel `json:"items"`
		Layouts Layouts           `json:"layouts"`
		Current json.RawMessage   `json:"current"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	d := Dashboard{
		Panels:   doc.Panels,
		Layouts:  doc.Layouts,
		Selected: decodeSelection(doc.Current),
	}

	if d.Panels == nil {
		d.Panels = make(map[string]*Panel)
	}
	for id, p := range d.Panels {
		if p == nil {
			delete(d.Panels, id)
			continue
		}
		p.ID = id
	}
	if d.Layouts == nil {
		d.Layouts = make(Layouts)
	}
	return &d, nil
}

// decodeSelection accepts the selection either as a panel id or as a
// whole stored panel object, the form the browser build writes. Anything
// else reads as no selection.
func decodeSelection(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ID
	}
	return ""
}

// ensurePlacements gives every panel a default placement in each
// breakpoint where it has none, in allocation order.
func ensurePlacements(d *Dashboard) {
	for _, b := range breakpoints {
		layout := d.Layouts[b.Name]
		placed := make(map[string]struct{}, len(layout))
		for _, p := range layout {
			placed[p.PanelID] = struct{}{}
		}
		for _, id := range d.PanelIDs() {
			if _, ok := placed[id]; ok {
				continue
			}
			layout = append(layout, nextPlacement(layout, b, id))
		}
		if layout != nil {
			d.Layouts[b.Name] = layout
		}
	}
}

// Save writes d to the backend with every panel's series omitted.
//
// The caller's document is not modified: the persisted form is a separate
// projection, so no intermediate stripped state is ever observable.
func (s *Store) Save(ctx context.Context, d *Dashboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := storedDashboard{
		Panels:   make(map[string]storedPanel, len(d.Panels)),
		Layouts:  d.Layouts,
		Selected: d.Selected,
	}
	if doc.Layouts == nil {
		doc.Layouts = Layouts{}
	}
	for id, p := range d.Panels {
		doc.Panels[id] = storedPanel{ID: p.ID, Title: p.Title, Kind: p.Kind}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding dashboard: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("writing dashboard %q: %w", s.key, err)
	}
	return nil
}

// AddPanel creates a line chart panel with the next unused id, places it in
// every breakpoint and saves the document.
//
// An empty (or blank) title defaults to "Panel <n>". The panel is added to
// d even if the save fails, in which case the error is also returned.
func (s *Store) AddPanel(ctx context.Context, d *Dashboard, title string) (*Panel, error) {
	if d.Panels == nil {
		d.Panels = make(map[string]*Panel)
	}

	n := nextPanelNumber(d)
	id := panelID(n)

	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("Panel %d", n)
	}

	p := &Panel{
		ID:     id,
		Title:  title,
		Kind:   ChartLine,
		Series: s.gen.Series(),
	}
	d.Panels[id] = p
	placePanel(d, id)

	return p, s.Save(ctx, d)
}

// RemoveItem deletes the panel and every placement referencing it, then
// saves. Removing an unknown id is not an error. A selection pointing at
// the removed panel is cleared.
func (s *Store) RemoveItem(ctx context.Context, d *Dashboard, id string) error {
	delete(d.Panels, id)
	unplacePanel(d, id)
	if d.Selected == id {
		d.Selected = ""
	}
	return s.Save(ctx, d)
}

// SetLayouts replaces the dashboard's layouts and saves.
//
// Placements that reference unknown panels, duplicate placements of the
// same panel, and layouts for unknown breakpoints are dropped; the number
// dropped is returned.
func (s *Store) SetLayouts(ctx context.Context, d *Dashboard, layouts Layouts) (int, error) {
	clean, dropped := sanitizeLayouts(layouts, d.Panels)
	if dropped > 0 {
		s.logger.Warn("dropped invalid placements", "count", dropped)
	}
	d.Layouts = clean
	return dropped, s.Save(ctx, d)
}

// SetChartKind changes a panel's chart kind and saves.
func (s *Store) SetChartKind(ctx context.Context, d *Dashboard, id string, kind ChartKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownChartKind, kind)
	}
	p, ok := d.Panel(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPanelNotFound, id)
	}
	p.Kind = kind
	return s.Save(ctx, d)
}

// RenamePanel sets a panel's title and saves. A blank title restores the
// default "Panel <n>".
func (s *Store) RenamePanel(ctx context.Context, d *Dashboard, id, title string) error {
	p, ok := d.Panel(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPanelNotFound, id)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		if n, ok := panelNumber(id); ok {
			title = fmt.Sprintf("Panel %d", n)
		} else {
			title = id
		}
	}
	p.Title = title
	return s.Save(ctx, d)
}

// Select marks a panel as the current selection and saves.
// It does not alter the panel in any other way.
func (s *Store) Select(ctx context.Context, d *Dashboard, id string) error {
	if _, ok := d.Panel(id); !ok {
		return fmt.Errorf("%w: %s", ErrPanelNotFound, id)
	}
	d.Selected = id
	return s.Save(ctx, d)
}

// ClearSelection removes the current selection and saves.
func (s *Store) ClearSelection(ctx context.Context, d *Dashboard) error {
	d.Selected = ""
	return s.Save(ctx, d)
}

// RefreshSeries replaces every panel's series with fresh samples.
// Series are not persisted, so nothing is written.
func (s *Store) RefreshSeries(d *Dashboard) {
	for _, p := range d.Panels {
		p.Series = s.gen.Series()
	}
}
