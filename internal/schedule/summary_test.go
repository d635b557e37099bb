package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/cronograma/internal/model"
)

func TestCount(t *testing.T) {
	c := Count(sampleTasks(), day(2024, 6, 10))
	assert.Equal(t, Counters{Total: 4, Done: 1, InProgress: 1, Overdue: 1, NotStarted: 1}, c)
	assert.Equal(t, 25, c.Percent())
	assert.Equal(t, 0, Counters{}.Percent())
}

func TestSheetProgress(t *testing.T) {
	assert.Equal(t, 0, SheetProgress(nil))
	assert.Equal(t, 0, SheetProgress([]model.Spreadsheet{{TotalRows: 0}}))
	assert.Equal(t, 40, SheetProgress([]model.Spreadsheet{
		{TotalRows: 6, CompletedRows: 3},
		{TotalRows: 4, CompletedRows: 1},
	}))
}

func TestByResponsible(t *testing.T) {
	groups := ByResponsible(sampleTasks(), day(2024, 6, 10))
	assert.Len(t, groups, 3)
	assert.Equal(t, 2, groups[NotDefined].Total)
	assert.Equal(t, 1, groups["Maria da Silva"].Done)
}
