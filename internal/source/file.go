package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// fileEvent is the on-disk shape of one event in the events file.
type fileEvent struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Category    string   `yaml:"category"`
	Status      string   `yaml:"status"`
	Assignees   []string `yaml:"assignees"`
	Start       string   `yaml:"start"`
	End         string   `yaml:"end"`
	Location    string   `yaml:"location,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

type eventsFile struct {
	Events []fileEvent `yaml:"events"`
}

// File loads events from a YAML file:
//
//	events:
//	  - id: "1"
//	    title: Sprint 12
//	    category: Sprint
//	    status: In Progress
//	    assignees: [Alice]
//	    start: 2025-04-01
//	    end: 2025-04-14
//
// A missing end means a single-day event. Events without an id get a
// random UUID, so their ids change between loads.
type File struct {
	Path string
	// Optional, when true a missing file loads as an empty set.
	AllowMissing bool
}

func (f File) Name() string { return "file:" + f.Path }

func (f File) Load(context.Context) ([]model.Event, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if f.AllowMissing && errors.Is(err, fs.ErrNotExist) {
			appLog.Debug("events file not found", "path", f.Path)
			return []model.Event{}, nil
		}
		return nil, err
	}
	return ParseEventsYAML(f.Path, data)
}

// ParseEventsYAML decodes an events document. sourceID is recorded on every
// event.
func ParseEventsYAML(sourceID string, data []byte) ([]model.Event, error) {
	var doc eventsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse events: %w", err)
	}

	events := make([]model.Event, 0, len(doc.Events))
	for i, fe := range doc.Events {
		ev, err := fe.toModel(sourceID)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (fe fileEvent) toModel(sourceID string) (model.Event, error) {
	start, err := model.ParseDate(fe.Start)
	if err != nil {
		return model.Event{}, fmt.Errorf("start: %w", err)
	}
	end := start
	if strings.TrimSpace(fe.End) != "" {
		if end, err = model.ParseDate(fe.End); err != nil {
			return model.Event{}, fmt.Errorf("end: %w", err)
		}
	}

	id := strings.TrimSpace(fe.ID)
	if id == "" {
		id = uuid.NewString()
	}

	ev := model.Event{
		ID:          id,
		Title:       fe.Title,
		Category:    model.ParseCategory(fe.Category),
		Status:      fe.Status,
		Assignees:   fe.Assignees,
		Start:       start,
		End:         end,
		SourceID:    sourceID,
		Location:    fe.Location,
		Description: fe.Description,
	}
	if err := ev.Validate(); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}
