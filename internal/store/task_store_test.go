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

func seedSheet(t *testing.T, s *store.SQLiteStore) *model.Spreadsheet {
	t.Helper()
	sheet, err := s.SaveSpreadsheet(context.Background(), model.Spreadsheet{
		Name:    "Cronograma Blister",
		Project: "Projeto X",
		Type:    model.SheetPrimaryPackaging,
	})
	require.NoError(t, err)
	return sheet
}

func TestUpsertTasks_InsertsAndUpdatesByNumber(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	sheet := seedSheet(t, s)

	err := s.UpsertTasks(ctx, sheet.ID, []model.Task{
		{Number: 1, Name: "Arte", DurationDays: 0, Percent: 150},
		{Number: 2, Name: "Prova", DurationDays: 3, Percent: 40},
	})
	require.NoError(t, err)

	tasks, err := s.GetTasks(ctx, store.TaskFilter{SheetID: &sheet.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, 1, tasks[0].DurationDays)
	assert.Equal(t, 100, tasks[0].Percent)
	firstID := tasks[0].ID

	err = s.UpsertTasks(ctx, sheet.ID, []model.Task{{Number: 1, Name: "Arte final", Percent: 50}})
	require.NoError(t, err)

	got, err := s.GetTaskByNumber(ctx, sheet.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, firstID, got.ID)
	assert.Equal(t, "Arte final", got.Name)
	assert.Equal(t, 50, got.Percent)

	refreshed, err := s.GetSpreadsheetByID(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, refreshed.TotalRows)
	assert.Equal(t, 0, refreshed.CompletedRows)
}

func TestCreateTask_AssignsNextNumber(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	sheet := seedSheet(t, s)

	require.NoError(t, s.UpsertTasks(ctx, sheet.ID, []model.Task{{Number: 7, Name: "Existente"}}))

	created, err := s.CreateTask(ctx, model.Task{SheetID: sheet.ID, Name: "Nova", Percent: 100})
	require.NoError(t, err)
	assert.Equal(t, 8, created.Number)
	assert.NotEmpty(t, created.ID)

	refreshed, err := s.GetSpreadsheetByID(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, refreshed.TotalRows)
	assert.Equal(t, 1, refreshed.CompletedRows)
}

func TestCreateTask_Validation(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	sheet := seedSheet(t, s)

	_, err := s.CreateTask(ctx, model.Task{SheetID: sheet.ID, Name: "  "})
	assert.ErrorIs(t, err, store.ErrInvalid)

	_, err = s.CreateTask(ctx, model.Task{Name: "Sem planilha"})
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	sheet := seedSheet(t, s)

	created, err := s.CreateTask(ctx, model.Task{SheetID: sheet.ID, Name: "Arte"})
	require.NoError(t, err)

	created.Percent = 100
	created.ResponsibleName = "  Maria da Silva  "
	require.NoError(t, s.UpdateTask(ctx, *created))

	got, err := s.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Percent)
	assert.Equal(t, "Maria da Silva", got.ResponsibleName)

	refreshed, err := s.GetSpreadsheetByID(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.CompletedRows)

	missing := *created
	missing.ID = "nope"
	assert.ErrorIs(t, s.UpdateTask(ctx, missing), store.ErrNotFound)
}

func TestStartAndUnstartTask(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	sheet := seedSheet(t, s)

	created, err := s.CreateTask(ctx, model.Task{SheetID: sheet.ID, Name: "Arte", DurationDays: 3, Percent: 20})
	require.NoError(t, err)

	now := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)
	started, err := s.StartTask(ctx, created.ID, now)
	require.NoError(t, err)
	require.NotNil(t, started.StartDate)
	require.NotNil(t, started.EndDate)
	assert.Equal(t, 10, started.StartDate.Day())
	assert.Equal(t, 12, started.EndDate.Day())
	assert.Equal(t, 20, started.Percent)

	got, err := s.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.StartDate)
	assert.True(t, got.StartDate.Equal(*started.StartDate))

	again, err := s.StartTask(ctx, created.ID, now.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.True(t, again.StartDate.Equal(*started.StartDate))

	unstarted, err := s.UnstartTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, unstarted.StartDate)
	assert.Nil(t, unstarted.EndDate, "end date derived from the start goes with it")
	assert.Equal(t, 0, unstarted.Percent)

	got, err = s.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.StartDate)
	assert.Nil(t, got.EndDate)
	assert.Equal(t, 0, got.Percent)
}

func TestUnstartTask_KeepsPlannedEndDate(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	sheet := seedSheet(t, s)

	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	created, err := s.CreateTask(ctx, model.Task{
		SheetID: sheet.ID, Name: "Compra", DurationDays: 3, Percent: 30,
		StartDate: &start, EndDate: &end,
	})
	require.NoError(t, err)

	_, err = s.UnstartTask(ctx, created.ID)
	require.NoError(t, err)

	got, err := s.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.True(t, got.EndDate.Equal(end))
}

func TestUnstartTask_CompletedAfterRead(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	sheet := seedSheet(t, s)

	created, err := s.CreateTask(ctx, model.Task{SheetID: sheet.ID, Name: "Arte", Percent: 60})
	require.NoError(t, err)

	read, err := s.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, s.SetTaskPercent(ctx, created.ID, 100))

	_, err = store.UnstartFrom(s, ctx, read)
	assert.ErrorIs(t, err, store.ErrCompletedTask)

	got, err := s.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Percent)
}

func TestUnstartTask_CompletedIsRejected(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	sheet := seedSheet(t, s)

	created, err := s.CreateTask(ctx, model.Task{SheetID: sheet.ID, Name: "Feita", Percent: 100})
	require.NoError(t, err)

	_, err = s.UnstartTask(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrCompletedTask)
}

func TestSetTaskPercent_Clamps(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	sheet := seedSheet(t, s)

	created, err := s.CreateTask(ctx, model.Task{SheetID: sheet.ID, Name: "Arte"})
	require.NoError(t, err)

	require.NoError(t, s.SetTaskPercent(ctx, created.ID, 180))
	got, err := s.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Percent)

	require.NoError(t, s.SetTaskPercent(ctx, created.ID, -5))
	got, err = s.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Percent)

	assert.ErrorIs(t, s.SetTaskPercent(ctx, "missing", 10), store.ErrNotFound)
}

func TestGetTasks_Filters(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	sheet := seedSheet(t, s)
	other := seedSheet(t, s)

	require.NoError(t, s.UpsertTasks(ctx, sheet.ID, []model.Task{
		{Number: 1, Name: "Arte final", ResponsibleName: "Maria da Silva"},
		{Number: 2, Name: "Compra", HowTo: "Pedido no ERP", ResponsibleName: "João"},
	}))
	require.NoError(t, s.UpsertTasks(ctx, other.ID, []model.Task{
		{Number: 1, Name: "Validação", ResponsibleName: "maria da silva"},
	}))

	maria := "Maria da Silva"
	mine, err := s.GetTasks(ctx, store.TaskFilter{Responsible: &maria})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	q := "ERP"
	found, err := s.GetTasks(ctx, store.TaskFilter{Query: &q})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Compra", found[0].Name)

	all, err := s.GetTasks(ctx, store.TaskFilter{SortBy: "name", Limit: 2})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Arte final", all[0].Name)
}

func TestDeleteTaskAndSpreadsheetCascade(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	sheet := seedSheet(t, s)

	a, err := s.CreateTask(ctx, model.Task{SheetID: sheet.ID, Name: "A"})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, model.Task{SheetID: sheet.ID, Name: "B"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, a.ID))
	_, err = s.GetTaskByID(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTask(ctx, a.ID), store.ErrNotFound)

	refreshed, err := s.GetSpreadsheetByID(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.TotalRows)

	require.NoError(t, s.DeleteSpreadsheet(ctx, sheet.ID))
	tasks, err := s.GetTasks(ctx, store.TaskFilter{SheetID: &sheet.ID})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.ErrorIs(t, s.DeleteSpreadsheet(ctx, sheet.ID), store.ErrNotFound)
}
