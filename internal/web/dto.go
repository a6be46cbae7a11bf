package web

import (
	"encoding/json"
	"io"
	"time"

	"monthcal/internal/layout"
	"monthcal/internal/model"
	"monthcal/internal/snapshot"
)

// eventDTO is a JSON-friendly view of model.Event with date-only fields.
type eventDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Status      string   `json:"status"`
	Assignees   []string `json:"assignees"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	SourceID    string   `json:"source_id,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
}

func toEventDTO(ev model.Event) eventDTO {
	assignees := ev.Assignees
	if assignees == nil {
		assignees = []string{}
	}
	return eventDTO{
		ID:          ev.ID,
		Title:       ev.Title,
		Category:    string(ev.Category),
		Status:      ev.Status,
		Assignees:   assignees,
		Start:       ev.Start.Format(model.DateLayout),
		End:         ev.End.Format(model.DateLayout),
		SourceID:    ev.SourceID,
		Location:    ev.Location,
		Description: ev.Description,
	}
}

func toEventDTOs(events []model.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventDTO(ev))
	}
	return out
}

// segmentDTO is one bar piece inside a day cell.
type segmentDTO struct {
	EventID    string `json:"event_id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Status     string `json:"status"`
	Row        int    `json:"row"`
	Lane       int    `json:"lane"`
	Length     int    `json:"length"`
	IsStart    bool   `json:"is_start"`
	IsEnd      bool   `json:"is_end"`
	RoundLeft  bool   `json:"round_left"`
	RoundRight bool   `json:"round_right"`
	SingleDay  bool   `json:"single_day"`
}

type dayDTO struct {
	Day      int          `json:"day"`
	Date     string       `json:"date"`
	Segments []segmentDTO `json:"segments"`
	Total    int          `json:"total"`
	Hidden   int          `json:"hidden"`
	ShowMore bool         `json:"show_more"`
}

// layoutResponse is the JSON response shape for /api/layout.
type layoutResponse struct {
	Month              string     `json:"month"`
	DaysInMonth        int        `json:"days_in_month"`
	FirstWeekdayOffset int        `json:"first_weekday_offset"`
	Weeks              int        `json:"weeks"`
	Prev               string     `json:"prev,omitempty"`
	Next               string     `json:"next,omitempty"`
	MaxVisibleRows     int        `json:"max_visible_rows"`
	EventCount         int        `json:"event_count"`
	Rows               [][]string `json:"rows"`
	Days               []dayDTO   `json:"days"`
	SnapshotVersion    uint64     `json:"snapshot_version"`
}

func toLayoutResponse(l layout.MonthLayout, version uint64) layoutResponse {
	resp := layoutResponse{
		Month:              l.Window.Key(),
		DaysInMonth:        l.Window.DaysInMonth,
		FirstWeekdayOffset: l.Window.FirstWeekdayOffset,
		Weeks:              l.Window.Weeks(),
		MaxVisibleRows:     l.MaxVisibleRows,
		EventCount:         l.EventCount,
		Rows:               make([][]string, 0, len(l.Rows)),
		Days:               make([]dayDTO, 0, len(l.Days)),
		SnapshotVersion:    version,
	}
	if prev, err := l.Window.Prev(); err == nil {
		resp.Prev = prev.Key()
	}
	if next, err := l.Window.Next(); err == nil {
		resp.Next = next.Key()
	}

	for _, row := range l.Rows {
		ids := make([]string, 0, len(row.Spans))
		for _, sp := range row.Spans {
			ids = append(ids, sp.Event.ID)
		}
		resp.Rows = append(resp.Rows, ids)
	}

	for _, cell := range l.Days {
		d := dayDTO{
			Day:      cell.Day,
			Date:     cell.Date.Format(model.DateLayout),
			Segments: make([]segmentDTO, 0, len(cell.Segments)),
			Total:    cell.Overflow.Total,
			Hidden:   cell.Overflow.Hidden,
			ShowMore: cell.Overflow.ShowMore(),
		}
		for _, seg := range cell.Segments {
			d.Segments = append(d.Segments, segmentDTO{
				EventID:    seg.Event.ID,
				Title:      seg.Event.Title,
				Category:   string(seg.Event.Category),
				Status:     seg.Event.Status,
				Row:        seg.Row,
				Lane:       seg.Lane,
				Length:     seg.Length,
				IsStart:    seg.IsStart,
				IsEnd:      seg.IsEnd,
				RoundLeft:  seg.RoundLeft,
				RoundRight: seg.RoundRight,
				SingleDay:  seg.SingleDay,
			})
		}
		resp.Days = append(resp.Days, d)
	}

	return resp
}

// WriteLayoutJSON writes l to w in the /api/layout response shape.
func WriteLayoutJSON(w io.Writer, l layout.MonthLayout, version uint64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toLayoutResponse(l, version))
}

// dayResponse is the JSON response shape for /api/day (the "+N more"
// detail): every event covering the day, in row order.
type dayResponse struct {
	Month   string     `json:"month"`
	Day     int        `json:"day"`
	Date    string     `json:"date"`
	Total   int        `json:"total"`
	Visible int        `json:"visible"`
	Hidden  int        `json:"hidden"`
	Events  []eventDTO `json:"events"`
}

type eventsResponse struct {
	Version   uint64     `json:"version"`
	UpdatedAt time.Time  `json:"updated_at"`
	Events    []eventDTO `json:"events"`
}

func toEventsResponse(snap snapshot.Snapshot) eventsResponse {
	return eventsResponse{
		Version:   snap.Version,
		UpdatedAt: snap.UpdatedAt,
		Events:    toEventDTOs(snap.Events),
	}
}

type filtersResponse struct {
	Assignees  []string `json:"assignees"`
	Categories []string `json:"categories"`
	Statuses   []string `json:"statuses"`
}

type refreshResponse struct {
	Version uint64 `json:"version"`
	Events  int    `json:"events"`
	Error   string `json:"error,omitempty"`
}
