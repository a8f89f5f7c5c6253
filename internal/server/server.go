package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jpalmerr/dashgrid/board"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second

	// maxBodyBytes caps JSON request bodies.
	maxBodyBytes = 1 << 20

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "Dashgrid"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"
)

// Board is the dashboard state the server operates on.
// It is satisfied by [*board.Session].
type Board interface {
	Snapshot() (*board.Dashboard, error)
	Selection() (*board.Panel, bool, error)
	AddPanel(ctx context.Context, title string) (*board.Panel, error)
	RemovePanel(ctx context.Context, id string) error
	SetLayouts(ctx context.Context, layouts board.Layouts) (int, error)
	SetChartKind(ctx context.Context, id string, kind board.ChartKind) error
	RenamePanel(ctx context.Context, id, title string) error
	Select(ctx context.Context, id string) error
	ClearSelection(ctx context.Context) error
	Subscribe() <-chan board.Event
	Unsubscribe(ch <-chan board.Event)
}

var _ Board = (*board.Session)(nil)

// Option configures a [Server].
type Option func(*Server)

// WithAssets sets the filesystem holding assets/index.html.
func WithAssets(assets fs.FS) Option {
	return func(s *Server) {
		s.assets = assets
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWriteLimit smooths mutating requests to r per second with the given
// burst. A zero or negative r disables limiting.
func WithWriteLimit(r float64, burst int) Option {
	return func(s *Server) {
		if r <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// Server handles HTTP requests for the dashboard page and its JSON API.
//
// Routes:
//   - GET /: the embedded dashboard page
//   - GET /api/dashboard: the current document including sample data
//   - GET /api/breakpoints: the fixed breakpoint table
//   - POST /api/panels: add a panel
//   - PATCH /api/panels/{id}: rename a panel or change its chart kind
//   - DELETE /api/panels/{id}: remove a panel
//   - PUT /api/layouts: replace the layouts after a drag or resize
//   - GET, PUT, DELETE /api/selection: the panel open in the detail view
//   - GET /api/sse: Server-Sent Events stream of changes
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	board      Board
	port       int
	httpServer *http.Server
	assets     fs.FS
	title      string
	logger     *slog.Logger
	limiter    *rate.Limiter
}

// New creates a [Server] for b listening on port.
// The server is not started until [Server.Start] is called.
func New(b Board, port int, opts ...Option) *Server {
	s := &Server{
		board:  b,
		port:   port,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler, wrapped in panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/dashboard", s.handleDashboardJSON)
	mux.HandleFunc("GET /api/breakpoints", s.handleBreakpoints)
	mux.HandleFunc("POST /api/panels", s.limited(s.handleAddPanel))
	mux.HandleFunc("PATCH /api/panels/{id}", s.limited(s.handleUpdatePanel))
	mux.HandleFunc("DELETE /api/panels/{id}", s.limited(s.handleRemovePanel))
	mux.HandleFunc("PUT /api/layouts", s.limited(s.handleSetLayouts))
	mux.HandleFunc("GET /api/selection", s.handleGetSelection)
	mux.HandleFunc("PUT /api/selection", s.limited(s.handleSelect))
	mux.HandleFunc("DELETE /api/selection", s.limited(s.handleClearSelection))
	mux.HandleFunc("GET /api/sse", s.handleSSE)

	if s.assets != nil {
		mux.HandleFunc("GET /{$}", s.handlePage)
	}

	return s.recoverer(mux)
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx so SSE handlers end on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// recoverer turns a handler panic into a 500 carrying a correlation id
// that also appears in the log entry.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				id := uuid.New().String()
				s.logger.Error("panic in handler",
					"correlation_id", id,
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal error (correlation id "+id+")")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// limited waits for the write limiter before calling next. The grid
// reports a layout on every drag step, so bursts are expected.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			if err := s.limiter.Wait(r.Context()); err != nil {
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
		}
		next(w, r)
	}
}

// handlePage serves the main dashboard page.
func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// escape the title; it comes from configuration
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

func (s *Server) handleDashboardJSON(w http.ResponseWriter, _ *http.Request) {
	d, err := s.board.Snapshot()
	if err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleBreakpoints(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, board.Breakpoints())
}

type addPanelRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleAddPanel(w http.ResponseWriter, r *http.Request) {
	var req addPanelRequest
	// an empty body means "default title"
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.board.AddPanel(r.Context(), req.Title)
	if err != nil {
		if p == nil {
			s.writeBoardError(w, err)
			return
		}
		// the panel exists in memory; only persistence failed
		s.logger.Warn("panel added but not saved", "panel_id", p.ID, "error", err)
	}
	s.writeJSON(w, http.StatusCreated, p)
}

type updatePanelRequest struct {
	Title *string `json:"title"`
	Kind  *string `json:"kind"`
}

func (s *Server) handleUpdatePanel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updatePanelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Kind != nil {
		kind, err := board.ParseChartKind(*req.Kind)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.board.SetChartKind(r.Context(), id, kind); err != nil {
			s.writeBoardError(w, err)
			return
		}
	}
	if req.Title != nil {
		if err := s.board.RenamePanel(r.Context(), id, *req.Title); err != nil {
			s.writeBoardError(w, err)
			return
		}
	}

	d, err := s.board.Snapshot()
	if err != nil {
		s.writeBoardError(w, err)
		return
	}
	p, ok := d.Panel(id)
	if !ok {
		writeError(w, http.StatusNotFound, board.ErrPanelNotFound.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRemovePanel(w http.ResponseWriter, r *http.Request) {
	if err := s.board.RemovePanel(r.Context(), r.PathValue("id")); err != nil {
		s.writeBoardError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type layoutsResponse struct {
	Dropped int `json:"dropped"`
}

func (s *Server) handleSetLayouts(w http.ResponseWriter, r *http.Request) {
	var layouts board.Layouts
	if err := decodeJSON(w, r, &layouts); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dropped, err := s.board.SetLayouts(r.Context(), layouts)
	if err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, layoutsResponse{Dropped: dropped})
}

func (s *Server) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	p, ok, err := s.board.Selection()
	if err != nil {
		s.writeBoardError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no panel selected")
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

type selectRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.board.Select(r.Context(), req.ID); err != nil {
		s.writeBoardError(w, err)
		return
	}

	p, ok, err := s.board.Selection()
	if err != nil || !ok {
		writeError(w, http.StatusNotFound, board.ErrPanelNotFound.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	if err := s.board.ClearSelection(r.Context()); err != nil {
		s.writeBoardError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSSE streams board events via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked write would prevent
// the handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.board.Subscribe()
	defer s.board.Unsubscribe(ch)

	// an initial event tells the client to fetch the current document
	hello, err := json.Marshal(board.Event{Type: board.EventLoaded, At: time.Now()})
	if err == nil {
		if err := writeAndFlush(hello); err != nil {
			return
		}
	}

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on both client disconnect and server shutdown
			return
		}
	}
}

// writeBoardError maps board errors to HTTP status codes.
func (s *Server) writeBoardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrPanelNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, board.ErrUnknownChartKind):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, board.ErrNoDashboard):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("board operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
