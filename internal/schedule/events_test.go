package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
)

func ptr(t time.Time) *time.Time { return &t }

func TestTasksToEvents(t *testing.T) {
	today := day(2024, 6, 10)
	tasks := []model.Task{
		{ID: "a", SheetID: "s1", Number: 1, Name: "Arte final", ProjectName: "Blister X",
			DurationDays: 3, Percent: 20, StartDate: ptr(day(2024, 6, 3))},
		{ID: "b", SheetID: "s1", Number: 2, Name: "Aprovação", DurationDays: 2,
			Deadline: ptr(day(2024, 6, 14))},
		{ID: "c", Number: 3, Name: "Sem datas", Percent: 150},
	}

	events := TasksToEvents(tasks, today)
	require.Len(t, events, 3)

	assert.Equal(t, "task-s1-1", events[0].ID)
	assert.Equal(t, "Tarefa: 1 ➡ Projeto: Blister X", events[0].Title)
	assert.Equal(t, day(2024, 6, 3), events[0].Date)
	assert.Equal(t, model.EventOther, events[0].Type)
	assert.Equal(t, "a", events[0].TaskID)

	assert.Equal(t, model.EventDeadline, events[1].Type)
	assert.Equal(t, day(2024, 6, 13), events[1].Date)
	assert.Equal(t, "Tarefa: 2 ➡ Projeto: s1", events[1].Title)

	assert.Equal(t, "task-x-3", events[2].ID)
	assert.Equal(t, today, events[2].Date)
	assert.Equal(t, 1, events[2].DurationDays)
	assert.Equal(t, 100, events[2].Progress)
}

func TestInferPriority(t *testing.T) {
	today := day(2024, 6, 10)

	tests := []struct {
		name string
		task model.Task
		want model.Priority
	}{
		{"finished", model.Task{Percent: 100, Deadline: ptr(day(2024, 6, 1))}, model.PriorityLow},
		{"no dates short", model.Task{DurationDays: 3}, model.PriorityLow},
		{"no dates long", model.Task{DurationDays: 12}, model.PriorityMedium},
		{"no dates long but mostly done", model.Task{DurationDays: 12, Percent: 50}, model.PriorityLow},
		{"past deadline", model.Task{DurationDays: 1, Deadline: ptr(day(2024, 6, 9))}, model.PriorityHigh},
		{"far deadline", model.Task{DurationDays: 20, Deadline: ptr(day(2024, 6, 17))}, model.PriorityLow},
		{"tight deadline", model.Task{DurationDays: 5, Deadline: ptr(day(2024, 6, 13))}, model.PriorityMedium},
		{"comfortable deadline", model.Task{DurationDays: 1, Deadline: ptr(day(2024, 6, 16))}, model.PriorityLow},
		{"end from start date", model.Task{DurationDays: 2, StartDate: ptr(day(2024, 6, 5))}, model.PriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferPriority(tt.task, today))
		})
	}
}

func TestEventsOn(t *testing.T) {
	events := []model.Event{
		{ID: "late", Date: day(2024, 6, 10), Time: "15:00", DurationDays: 1},
		{ID: "span", Date: day(2024, 6, 8), Time: "09:00", DurationDays: 3},
		{ID: "other", Date: day(2024, 6, 11), DurationDays: 1},
	}

	got := EventsOn(events, day(2024, 6, 10))
	require.Len(t, got, 2)
	assert.Equal(t, "span", got[0].ID)
	assert.Equal(t, "late", got[1].ID)
}

func TestEventsInMonth(t *testing.T) {
	events := []model.Event{
		{ID: "july", Date: day(2024, 7, 2)},
		{ID: "spill", Date: day(2024, 5, 30), DurationDays: 5},
		{ID: "june", Date: day(2024, 6, 15)},
		{ID: "may", Date: day(2024, 5, 2)},
	}

	got := EventsInMonth(events, day(2024, 6, 20))
	require.Len(t, got, 2)
	assert.Equal(t, "spill", got[0].ID)
	assert.Equal(t, "june", got[1].ID)
}
