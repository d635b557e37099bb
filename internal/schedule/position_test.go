package schedule

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBarPosition(t *testing.T) {
	first := day(2024, 5, 1)

	tests := []struct {
		name      string
		startDay  int
		duration  int
		col, zoom float64
		want      BarPosition
	}{
		{"on first day", 1, 3, 100, 1, BarPosition{Left: 0, Width: 300}},
		{"offset", 4, 2, 100, 1, BarPosition{Left: 300, Width: 200}},
		{"zoomed", 3, 1, 30, 2, BarPosition{Left: 120, Width: 60}},
		{"before timeline pinned left", -5 + 1, 2, 100, 1, BarPosition{Left: 0, Width: 200}},
		{"narrow bar widened", 2, 1, 30, 0.5, BarPosition{Left: 15, Width: MinBarWidth}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := first.AddDate(0, 0, tt.startDay-1)
			got := ComputeBarPosition(start, tt.duration, first, tt.col, tt.zoom)
			assert.InDelta(t, tt.want.Left, got.Left, 1e-9)
			assert.InDelta(t, tt.want.Width, got.Width, 1e-9)
		})
	}
}

func TestComputeBarPosition_NeverNegativeOrNarrow(t *testing.T) {
	first := day(2024, 5, 15)
	for offset := -40; offset <= 40; offset += 3 {
		for _, zoom := range []float64{MinZoom, 1, 1.44, MaxZoom} {
			for _, dur := range []int{1, 2, 9} {
				got := ComputeBarPosition(first.AddDate(0, 0, offset), dur, first, ColumnWidth(ViewMonth), zoom)
				assert.GreaterOrEqual(t, got.Left, 0.0)
				assert.GreaterOrEqual(t, got.Width, MinBarWidth)
			}
		}
	}
}

func TestPositionOnTimeline_EmptyTimeline(t *testing.T) {
	assert.Equal(t, BarPosition{}, PositionOnTimeline(nil, day(2024, 1, 1), 3, 100, 1))
}

func TestPositionOnTimeline_UsesFirstDay(t *testing.T) {
	tl := GenerateTimeline(day(2024, 5, 15), ViewWeek)
	got := PositionOnTimeline(tl, day(2024, 5, 15), 1, 100, 1)
	assert.InDelta(t, 700, got.Left, 1e-9)
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, MinZoom, ClampZoom(0.1))
	assert.Equal(t, MaxZoom, ClampZoom(10))
	assert.Equal(t, 1.5, ClampZoom(1.5))
	assert.Equal(t, DefaultZoom, ClampZoom(math.NaN()))
	assert.Equal(t, DefaultZoom, ClampZoom(math.Inf(1)))
}

func TestZoomInOutStayInRange(t *testing.T) {
	z := DefaultZoom
	for i := 0; i < 20; i++ {
		z = ZoomIn(z)
	}
	assert.Equal(t, MaxZoom, z)
	for i := 0; i < 20; i++ {
		z = ZoomOut(z)
	}
	assert.Equal(t, MinZoom, z)
	assert.InDelta(t, 1.2, ZoomIn(1), 1e-9)
}
