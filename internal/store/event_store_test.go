package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/store"
	"github.com/nhle/cronograma/tests/testutil"
)

func TestEvents_CRUD(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.CreateEvent(ctx, model.Event{Title: ""})
	assert.Error(t, err)

	later, err := s.CreateEvent(ctx, model.Event{
		Title: "Revisão", Date: time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
		Type: model.EventReview, Progress: 140,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, later.Progress)
	assert.Equal(t, 1, later.DurationDays)
	assert.Equal(t, model.PriorityMedium, later.Priority)

	first, err := s.CreateEvent(ctx, model.Event{
		Title: "Reunião", Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), Time: "09:30",
		Type: model.EventMeeting, Dependencies: []string{later.ID},
	})
	require.NoError(t, err)

	events, err := s.GetEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, []string{later.ID}, events[0].Dependencies)
	assert.Nil(t, events[1].Dependencies)

	first.Title = "Reunião de kickoff"
	require.NoError(t, s.UpdateEvent(ctx, *first))
	events, err = s.GetEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Reunião de kickoff", events[0].Title)

	require.NoError(t, s.DeleteEvent(ctx, first.ID))
	assert.ErrorIs(t, s.DeleteEvent(ctx, first.ID), store.ErrNotFound)
}
