package sheet

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []model.Task{
		{Number: 1, Name: `Arte "final"`, DurationDays: 2, Percent: 100},
		{Number: 2, Name: "Prova", DurationDays: 1, Percent: 0},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], `"Número","Classificação"`))
	assert.True(t, strings.HasSuffix(lines[0], `"% Concluída","Status"`))
	assert.Contains(t, lines[1], `"Arte ""final"""`)
	assert.True(t, strings.HasSuffix(lines[1], `"100%","Concluído"`))
	assert.True(t, strings.HasSuffix(lines[2], `"0%","Não Iniciado"`))
}

func TestWrite_ByExtension(t *testing.T) {
	dir := t.TempDir()
	tasks := []model.Task{{Number: 1, Name: "Arte", DurationDays: 1}}

	require.NoError(t, Write(filepath.Join(dir, "out.csv"), tasks))
	require.NoError(t, Write(filepath.Join(dir, "out.xlsx"), tasks))
	assert.ErrorIs(t, Write(filepath.Join(dir, "out.pdf"), tasks), ErrUnsupportedFormat)

	got, err := Read(filepath.Join(dir, "out.csv"), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Arte", got[0].Name)

	info, err := os.Stat(filepath.Join(dir, "out.xlsx"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
