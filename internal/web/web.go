package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"monthcal/internal/config"
	"monthcal/internal/layout"
	appLog "monthcal/internal/log"
	"monthcal/internal/snapshot"
)

// Refresher reloads the event snapshot on demand.
type Refresher interface {
	RefreshNow(ctx context.Context) (snapshot.Snapshot, error)
}

// Server provides the HTTP API over the current event snapshot.
type Server struct {
	cfg       *config.Config
	store     *snapshot.Store
	refresher Refresher
	mux       *http.ServeMux

	memo *layoutMemo

	// now resolves the default month when a request omits ?month=.
	now func() time.Time
}

// NewServer constructs a new Server. refresher may be nil, in which case
// POST /api/refresh answers 503.
func NewServer(cfg *config.Config, store *snapshot.Store, refresher Refresher) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		cfg:       cfg,
		store:     store,
		refresher: refresher,
		mux:       http.NewServeMux(),
		memo:      newLayoutMemo(cfg.LayoutCacheSize),
		now:       time.Now,
	}
	store.OnReplace(func(snapshot.Snapshot) { s.memo.purge() })
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. An empty
// username or password disables it.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="monthcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ListenAndServe serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/layout", s.handleLayout)
	s.mux.HandleFunc("GET /api/day", s.handleDay)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/filters", s.handleFilters)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// parseRequest reads the month, filter and row-cap query parameters shared
// by /api/layout and /api/day.
//
//   - month:    "2006-01", default the current month
//   - category, status, assignee: exact match, "" or "all" for any
//   - q:        case-insensitive title substring
//   - max_rows: visible rows per day, default from config
func (s *Server) parseRequest(r *http.Request) (layout.Request, error) {
	q := r.URL.Query()

	month := strings.TrimSpace(q.Get("month"))
	if month == "" {
		month = s.now().Format("2006-01")
	}
	w, err := layout.ParseMonth(month)
	if err != nil {
		return layout.Request{}, err
	}

	maxRows := parseIntDefault(q.Get("max_rows"), s.cfg.MaxVisibleRows)
	if maxRows <= 0 {
		maxRows = s.cfg.MaxVisibleRows
	}

	return layout.Request{
		Year:  w.Year,
		Month: w.Month,
		Filter: layout.Filter{
			Category: q.Get("category"),
			Status:   q.Get("status"),
			Assignee: q.Get("assignee"),
			Search:   q.Get("q"),
		},
		MaxVisibleRows: maxRows,
	}, nil
}

// handleLayout returns the month layout.
//
// GET /api/layout?month=2025-04&category=Task&assignee=Alice&q=login&max_rows=3
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeLayoutError(w, err)
		return
	}

	snap := s.store.Current()
	key := memoKey(snap.Version, monthKey(req), req.Filter.Key(), req.MaxVisibleRows)
	if resp, ok := s.memo.get(key); ok {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	l, err := layout.Build(snap.Events, req)
	if err != nil {
		writeLayoutError(w, err)
		return
	}

	resp := toLayoutResponse(l, snap.Version)
	s.memo.put(key, resp)

	appLog.Debug("api layout",
		"month", resp.Month,
		"events", resp.EventCount,
		"rows", len(resp.Rows),
		"version", snap.Version,
	)
	writeJSON(w, http.StatusOK, resp)
}

// handleDay returns the overflow detail for one day.
//
// GET /api/day?month=2025-04&day=1&...filters
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeLayoutError(w, err)
		return
	}

	day, err := strconv.Atoi(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "day must be an integer")
		return
	}

	snap := s.store.Current()
	ov, err := layout.DayDetail(snap.Events, req, day)
	if err != nil {
		writeLayoutError(w, err)
		return
	}

	wnd, _ := layout.ResolveWindow(req.Year, req.Month)
	writeJSON(w, http.StatusOK, dayResponse{
		Month:   wnd.Key(),
		Day:     ov.Day,
		Date:    wnd.Date(ov.Day).Format("2006-01-02"),
		Total:   ov.Total,
		Visible: ov.Visible,
		Hidden:  ov.Hidden,
		Events:  toEventDTOs(ov.Events),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toEventsResponse(s.store.Current()))
}

// handleFilters lists the values the filter menus offer.
func (s *Server) handleFilters(w http.ResponseWriter, _ *http.Request) {
	events := s.store.Current().Events
	writeJSON(w, http.StatusOK, filtersResponse{
		Assignees:  layout.Assignees(events),
		Categories: layout.Categories(events),
		Statuses:   layout.Statuses(events),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh not configured")
		return
	}

	snap, err := s.refresher.RefreshNow(r.Context())
	resp := refreshResponse{Version: snap.Version, Events: len(snap.Events)}
	if err != nil {
		appLog.Error("api refresh failed", err)
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func monthKey(req layout.Request) string {
	return time.Date(req.Year, req.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// writeLayoutError maps a bad month to 400. Events come from the snapshot,
// never the request, so an invalid event range is a server-side fault.
func writeLayoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, layout.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, layout.ErrInvalidEventRange):
		appLog.Error("snapshot holds an invalid event", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		appLog.Error("layout failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build layout")
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
