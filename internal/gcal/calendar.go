package gcal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/nhle/cronograma/internal/model"
)

// idProperty is the private extended property that links a calendar entry
// back to its schedule event.
const idProperty = "cronograma_id"

// colorIDs maps priorities to Google Calendar event colors.
var colorIDs = map[model.Priority]string{
	model.PriorityHigh:   "11",
	model.PriorityMedium: "5",
	model.PriorityLow:    "2",
}

// PushResult counts the calendar entries written by Push.
type PushResult struct {
	Created int
	Updated int
}

// Exporter writes schedule events into one calendar.
type Exporter struct {
	srv        *calendar.Service
	calendarID string
	loc        *time.Location
}

// NewExporter targets calendarID ("primary" when empty). Timed events are
// interpreted in loc.
func NewExporter(srv *calendar.Service, calendarID string, loc *time.Location) *Exporter {
	if calendarID == "" {
		calendarID = "primary"
	}
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{srv: srv, calendarID: calendarID, loc: loc}
}

// Push creates or updates one calendar entry per event. Entries are matched
// by the private idProperty, so repeated pushes do not duplicate them.
func (e *Exporter) Push(ctx context.Context, events []model.Event) (PushResult, error) {
	var res PushResult
	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		entry := ToCalendarEvent(ev, e.loc)

		existing, err := e.find(ctx, ev.ID)
		if err != nil {
			return res, fmt.Errorf("looking up event %s: %w", ev.ID, err)
		}
		if existing != nil {
			if _, err := e.srv.Events.Update(e.calendarID, existing.Id, entry).Context(ctx).Do(); err != nil {
				return res, fmt.Errorf("updating event %s: %w", ev.ID, err)
			}
			res.Updated++
			continue
		}
		if _, err := e.srv.Events.Insert(e.calendarID, entry).Context(ctx).Do(); err != nil {
			return res, fmt.Errorf("creating event %s: %w", ev.ID, err)
		}
		res.Created++
	}
	return res, nil
}

func (e *Exporter) find(ctx context.Context, id string) (*calendar.Event, error) {
	list, err := e.srv.Events.List(e.calendarID).
		PrivateExtendedProperty(idProperty + "=" + id).
		ShowDeleted(false).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(list.Items) == 0 {
		return nil, nil
	}
	return list.Items[0], nil
}

// ToCalendarEvent converts a schedule event. Single-day events with a time
// become one-hour entries; everything else is all-day across its duration.
func ToCalendarEvent(ev model.Event, loc *time.Location) *calendar.Event {
	var desc []string
	if d := strings.TrimSpace(ev.Description); d != "" {
		desc = append(desc, d)
	}
	if ev.Progress > 0 {
		desc = append(desc, fmt.Sprintf("Progresso: %d%%", ev.Progress))
	}
	if len(ev.Dependencies) > 0 {
		desc = append(desc, "Depende de: "+strings.Join(ev.Dependencies, ", "))
	}

	out := &calendar.Event{
		Summary:     ev.Title,
		Description: strings.Join(desc, "\n"),
		ColorId:     colorIDs[ev.Priority],
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{idProperty: ev.ID},
		},
	}

	if start, ok := timedStart(ev, loc); ok {
		out.Start = &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)}
		out.End = &calendar.EventDateTime{DateTime: start.Add(time.Hour).Format(time.RFC3339)}
		return out
	}

	// All-day end dates are exclusive.
	out.Start = &calendar.EventDateTime{Date: ev.Date.Format("2006-01-02")}
	out.End = &calendar.EventDateTime{Date: ev.EndDate().AddDate(0, 0, 1).Format("2006-01-02")}
	return out
}

func timedStart(ev model.Event, loc *time.Location) (time.Time, bool) {
	if ev.Time == "" || ev.DurationDays > 1 {
		return time.Time{}, false
	}
	clock, err := time.Parse("15:04", ev.Time)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := ev.Date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), true
}
