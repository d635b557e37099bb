package sheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
)

func TestFoldHeader(t *testing.T) {
	assert.Equal(t, "classificacao", foldHeader("  Classificação "))
	assert.Equal(t, "% concluido", foldHeader("% CONCLUÍDO"))
	assert.Equal(t, "documento referencia", foldHeader("Documento   Referência:"))
}

func TestReadFrom_CSVWithTitleRowAndSemicolons(t *testing.T) {
	data := "\xef\xbb\xbfCronograma Embalagem;;;\n" +
		"Número;Classificação;Nome;Duração;% Concluído;Início;Responsável;Condição\n" +
		"1;Design;Arte final;5 dias;40%;03/06/2024;Maria da Silva;A\n" +
		";;;;;;;\n" +
		"3;Gráfica;Prova de cor;;0,5;2024-06-10;;Sempre\n" +
		"3;Gráfica;Repetida;2;1;;;B\n"

	tasks, err := ReadFrom(strings.NewReader(data), ".csv", time.UTC)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, 1, tasks[0].Number)
	assert.Equal(t, "Arte final", tasks[0].Name)
	assert.Equal(t, 5, tasks[0].DurationDays)
	assert.Equal(t, 40, tasks[0].Percent)
	require.NotNil(t, tasks[0].StartDate)
	assert.Equal(t, time.June, tasks[0].StartDate.Month())
	assert.Equal(t, "Maria da Silva", tasks[0].ResponsibleName)

	assert.Equal(t, 3, tasks[1].Number)
	assert.Equal(t, 1, tasks[1].DurationDays)
	assert.Equal(t, 50, tasks[1].Percent)
	assert.Equal(t, model.ConditionAlways, tasks[1].Condition)

	assert.Equal(t, 4, tasks[2].Number, "duplicate numbers get the next free one")
	assert.Equal(t, 100, tasks[2].Percent)
}

func TestReadFrom_NoHeader(t *testing.T) {
	_, err := ReadFrom(strings.NewReader("a,b,c\n1,2,3\n"), ".csv", time.UTC)
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadFrom_UnsupportedFormat(t *testing.T) {
	_, err := ReadFrom(strings.NewReader(""), ".ods", time.UTC)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseCellDate_ExcelSerial(t *testing.T) {
	got := parseCellDate("45457", time.UTC)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), *got)

	assert.Nil(t, parseCellDate("", time.UTC))
	assert.Nil(t, parseCellDate("amanhã", time.UTC))
}

func TestXLSXRoundTrip(t *testing.T) {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	in := []model.Task{
		{Number: 1, Name: "Arte final", Classification: "Design", DurationDays: 5, Percent: 100, StartDate: &start, ResponsibleName: "Maria"},
		{Number: 2, Name: "Prova de cor", DurationDays: 2, Percent: 30, DelayDays: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, in))

	out, err := ReadFrom(&buf, ".xlsx", time.UTC)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Arte final", out[0].Name)
	assert.Equal(t, 100, out[0].Percent)
	assert.Equal(t, 5, out[0].DurationDays)
	require.NotNil(t, out[0].StartDate)
	assert.True(t, start.Equal(*out[0].StartDate))
	assert.Equal(t, 30, out[1].Percent)
	assert.Equal(t, 1, out[1].DelayDays)
}
