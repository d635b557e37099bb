package sheets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/notify"
	"github.com/nhle/cronograma/tests/testutil"
)

const csvBody = "Número;Nome;% Concluído;Responsável\n1;Arte final;100;Ana Lima\n2;Prova de cor;50%;Bruno Costa\n"

func TestSheets_ImportExportDelete(t *testing.T) {
	st := testutil.NewTestStore(t)
	center := notify.NewCenter(st, model.NotificationSettings{EventNotifications: true}, notify.Sinks{})
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "embalagens.csv")
	require.NoError(t, os.WriteFile(src, []byte(csvBody), 0o600))

	m := New(st, keys.DefaultKeyMap(), center, time.UTC, 100, 30)
	done, ok := m.importFile(formBindings{path: src, project: "Linha X", sheetType: model.SheetPrimaryPackaging})().(doneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Contains(t, done.notice, "Imported 2 tasks")

	m, _ = m.Update(m.Load(done.sheetID)())
	require.Len(t, m.sheets, 1)
	assert.Equal(t, "Linha X | embalagens", m.sheets[0].Label())
	assert.Contains(t, m.View(), "1/2")

	notes, err := center.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Planilha importada", notes[0].Title)

	out := filepath.Join(dir, "out.xlsx")
	exported := m.exportSheet(m.sheets[0], out)().(doneMsg)
	require.NoError(t, exported.err)
	_, err = os.Stat(out)
	require.NoError(t, err)

	deleted := m.deleteSheet(m.sheets[0])().(doneMsg)
	require.NoError(t, deleted.err)
	sheets, err := st.GetSpreadsheets(ctx)
	require.NoError(t, err)
	assert.Empty(t, sheets)
}

func TestValidatePaths(t *testing.T) {
	assert.Error(t, validateImportPath(""))
	assert.Error(t, validateImportPath(filepath.Join(t.TempDir(), "missing.csv")))
	assert.Error(t, validateImportPath(t.TempDir()))

	assert.NoError(t, validateExportPath("cronograma.XLSX"))
	assert.Error(t, validateExportPath("cronograma.pdf"))
}

func TestDefaultExportPath(t *testing.T) {
	assert.Equal(t, "Linha_A_B.xlsx", defaultExportPath(model.Spreadsheet{Name: "Linha A/B"}))
}
