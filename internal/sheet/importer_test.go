package sheet_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/sheet"
	"github.com/nhle/cronograma/internal/store"
	"github.com/nhle/cronograma/tests/testutil"
)

func TestImport(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	csv := "Número,Nome,% Concluído\n1,Arte,100%\n2,Prova,10%\n3,Compra,0\n"
	saved, err := sheet.Import(ctx, s, "blister_x.csv", strings.NewReader(csv), sheet.ImportOptions{
		Project:  "Projeto X",
		Type:     model.SheetPrimaryPackaging,
		Location: time.UTC,
	})
	require.NoError(t, err)

	assert.Equal(t, "blister_x", saved.Name)
	assert.Equal(t, 3, saved.TotalRows)
	assert.Equal(t, 1, saved.CompletedRows)

	tasks, err := s.GetTasks(ctx, store.TaskFilter{SheetID: &saved.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "Projeto X", tasks[0].ProjectName)
}

func TestImport_BadFile(t *testing.T) {
	s := testutil.NewTestStore(t)
	_, err := sheet.Import(context.Background(), s, "x.csv", strings.NewReader("foo\n"), sheet.ImportOptions{})
	assert.ErrorIs(t, err, sheet.ErrNoHeader)

	sheets, err := s.GetSpreadsheets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sheets)
}
