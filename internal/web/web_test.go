package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"monthcal/internal/config"
	"monthcal/internal/model"
	"monthcal/internal/snapshot"
)

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) RefreshNow(ctx context.Context) (snapshot.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(snapshot.Snapshot), args.Error(1)
}

func d(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func aprilEvents() []model.Event {
	return []model.Event{
		{ID: "1", Title: "Implement login page", Category: model.CategoryTask, Status: model.StatusInProgress, Assignees: []string{"John Doe"}, Start: d("2025-04-01"), End: d("2025-04-11")},
		{ID: "2", Title: "Sprint 1", Category: model.CategorySprint, Status: model.StatusInProgress, Start: d("2025-04-14"), End: d("2025-04-22")},
		{ID: "3", Title: "Review API", Category: model.CategoryTask, Status: model.StatusToDo, Assignees: []string{"Jane Smith"}, Start: d("2025-04-01"), End: d("2025-04-03")},
		{ID: "4", Title: "Sprint planning", Category: model.CategorySprint, Status: model.StatusInProgress, Start: d("2025-04-01"), End: d("2025-04-04")},
		{ID: "5", Title: "Cross-Month Event", Category: model.CategoryTask, Status: model.StatusInReview, Assignees: []string{"Mike Johnson"}, Start: d("2025-04-01"), End: d("2025-05-05")},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, events []model.Event, r Refresher) (*Server, *snapshot.Store) {
	t.Helper()
	store := snapshot.NewStore()
	store.Replace(events)
	s := NewServer(cfg, store, r)
	s.now = func() time.Time { return time.Date(2025, time.April, 17, 9, 0, 0, 0, time.UTC) }
	return s, store
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil, nil, nil)
	rec := get(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestLayout(t *testing.T) {
	s, _ := newTestServer(t, nil, aprilEvents(), nil)

	rec := get(t, s.Handler(), "/api/layout?month=2025-04")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	resp := decode[layoutResponse](t, rec)
	assert.Equal(t, "2025-04", resp.Month)
	assert.Equal(t, "2025-03", resp.Prev)
	assert.Equal(t, "2025-05", resp.Next)
	assert.Equal(t, 30, resp.DaysInMonth)
	assert.Equal(t, 1, resp.FirstWeekdayOffset)
	assert.Equal(t, 5, resp.Weeks)
	assert.Equal(t, 3, resp.MaxVisibleRows)
	assert.Equal(t, [][]string{{"5"}, {"1", "2"}, {"4"}, {"3"}}, resp.Rows)
	require.Len(t, resp.Days, 30)

	day1 := resp.Days[0]
	assert.Equal(t, "2025-04-01", day1.Date)
	assert.Equal(t, 4, day1.Total)
	assert.Equal(t, 1, day1.Hidden)
	assert.True(t, day1.ShowMore)
	require.Len(t, day1.Segments, 3)
	assert.Equal(t, "5", day1.Segments[0].EventID)
	assert.Equal(t, 6, day1.Segments[0].Length, "bar stops at the end of the week-row")

	assert.False(t, resp.Days[29].ShowMore)
}

func TestLayout_DefaultMonthAndFilters(t *testing.T) {
	s, _ := newTestServer(t, nil, aprilEvents(), nil)

	rec := get(t, s.Handler(), "/api/layout?category=Sprint&max_rows=1")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[layoutResponse](t, rec)
	assert.Equal(t, "2025-04", resp.Month)
	assert.Equal(t, 1, resp.MaxVisibleRows)
	assert.Equal(t, 2, resp.EventCount)
	assert.Equal(t, [][]string{{"4", "2"}}, resp.Rows)

	rec = get(t, s.Handler(), "/api/layout?month=2025-04&q=LOGIN&assignee=all")
	resp = decode[layoutResponse](t, rec)
	assert.Equal(t, [][]string{{"1"}}, resp.Rows)
}

func TestLayout_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, nil, aprilEvents(), nil)

	for _, target := range []string{
		"/api/layout?month=April",
		"/api/layout?month=2025-13",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, s.Handler(), target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestLayout_InvalidSnapshotEvent(t *testing.T) {
	events := append(aprilEvents(), model.Event{
		ID: "bad", Title: "Backwards", Start: d("2025-09-10"), End: d("2025-09-01"),
	})
	s, _ := newTestServer(t, nil, events, nil)

	for _, target := range []string{"/api/layout?month=2025-04", "/api/day?month=2025-04&day=1"} {
		rec := get(t, s.Handler(), target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Contains(t, decode[map[string]string](t, rec)["error"], `event "bad"`)
	}
}

func TestLayout_MemoFollowsSnapshot(t *testing.T) {
	s, store := newTestServer(t, nil, aprilEvents(), nil)
	h := s.Handler()

	first := decode[layoutResponse](t, get(t, h, "/api/layout?month=2025-04"))
	get(t, h, "/api/layout?month=2025-04")
	assert.Equal(t, 1, s.memo.count())

	store.Replace(aprilEvents()[:1])
	assert.Zero(t, s.memo.count(), "replace purges the memo")

	second := decode[layoutResponse](t, get(t, h, "/api/layout?month=2025-04"))
	assert.Equal(t, first.SnapshotVersion+1, second.SnapshotVersion)
	assert.Equal(t, [][]string{{"1"}}, second.Rows)
}

func TestLayoutMemo_Eviction(t *testing.T) {
	m := newLayoutMemo(2)
	m.put("a", layoutResponse{Month: "a"})
	m.put("b", layoutResponse{Month: "b"})
	m.put("c", layoutResponse{Month: "c"})

	_, ok := m.get("a")
	assert.False(t, ok)
	resp, ok := m.get("c")
	require.True(t, ok)
	assert.Equal(t, "c", resp.Month)
	assert.Equal(t, 2, m.count())

	disabled := newLayoutMemo(0)
	disabled.put("a", layoutResponse{})
	_, ok = disabled.get("a")
	assert.False(t, ok)
}

func TestDay(t *testing.T) {
	s, _ := newTestServer(t, nil, aprilEvents(), nil)

	rec := get(t, s.Handler(), "/api/day?month=2025-04&day=1")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dayResponse](t, rec)
	assert.Equal(t, "2025-04-01", resp.Date)
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 3, resp.Visible)
	assert.Equal(t, 1, resp.Hidden)

	ids := make([]string, 0, len(resp.Events))
	for _, ev := range resp.Events {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"5", "1", "4", "3"}, ids)

	assert.Equal(t, http.StatusBadRequest, get(t, s.Handler(), "/api/day?month=2025-04&day=31").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s.Handler(), "/api/day?month=2025-04&day=x").Code)
}

func TestEventsAndFilters(t *testing.T) {
	s, _ := newTestServer(t, nil, aprilEvents(), nil)

	events := decode[eventsResponse](t, get(t, s.Handler(), "/api/events"))
	assert.Equal(t, uint64(1), events.Version)
	require.Len(t, events.Events, 5)
	assert.Equal(t, "2025-05-05", events.Events[4].End)
	assert.Equal(t, []string{}, events.Events[1].Assignees)

	filters := decode[filtersResponse](t, get(t, s.Handler(), "/api/filters"))
	assert.Equal(t, []string{"Jane Smith", "John Doe", "Mike Johnson"}, filters.Assignees)
	assert.Equal(t, []string{"Sprint", "Task"}, filters.Categories)
	assert.Equal(t, []string{"In Progress", "In Review", "To Do"}, filters.Statuses)
}

func TestRefresh(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := new(mockRefresher)
		r.On("RefreshNow", mock.Anything).Return(snapshot.Snapshot{Version: 2, Events: aprilEvents()}, nil)
		s, _ := newTestServer(t, nil, nil, r)

		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[refreshResponse](t, rec)
		assert.Equal(t, uint64(2), resp.Version)
		assert.Equal(t, 5, resp.Events)
		r.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		r := new(mockRefresher)
		r.On("RefreshNow", mock.Anything).Return(snapshot.Snapshot{Version: 1}, errors.New("feed down"))
		s, _ := newTestServer(t, nil, nil, r)

		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "feed down", decode[refreshResponse](t, rec).Error)
	})

	t.Run("not configured", func(t *testing.T) {
		s, _ := newTestServer(t, nil, nil, nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		s, _ := newTestServer(t, nil, nil, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, get(t, s.Handler(), "/api/refresh").Code)
	})
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	s, _ := newTestServer(t, cfg, aprilEvents(), nil)
	h := s.Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code, "health stays public")

	rec := get(t, h, "/api/events")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Basic"))

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBasicAuth_EmptyPasswordDisables(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "admin"}
	s, _ := newTestServer(t, cfg, nil, nil)
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/api/events").Code)
}

func TestLayout_MemoDoesNotChangeOutput(t *testing.T) {
	uncached := config.DefaultConfig()
	uncached.LayoutCacheSize = 0
	plain, _ := newTestServer(t, uncached, aprilEvents(), nil)
	memo, _ := newTestServer(t, nil, aprilEvents(), nil)

	for _, target := range []string{
		"/api/layout?month=2025-04",
		"/api/layout?month=2025-04&status=In+Progress&max_rows=2",
		"/api/layout?month=2025-05",
	} {
		want := get(t, plain.Handler(), target).Body.String()
		assert.Equal(t, want, get(t, memo.Handler(), target).Body.String(), target)
		assert.Equal(t, want, get(t, memo.Handler(), target).Body.String(), target+" (memoized)")
	}
	assert.Zero(t, plain.memo.count())
}
