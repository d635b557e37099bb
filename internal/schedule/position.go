package schedule

import (
	"math"
	"time"
)

const (
	// MinBarWidth is the narrowest bar ever rendered, in pixels.
	MinBarWidth = 50.0

	MinZoom     = 0.5
	MaxZoom     = 3.0
	DefaultZoom = 1.0

	// ZoomStep is the factor applied by one zoom in/out action.
	ZoomStep = 1.2
)

// BarPosition is the horizontal placement of a Gantt bar in pixels.
type BarPosition struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// ClampZoom bounds z to [MinZoom, MaxZoom]. Non-finite values reset to
// DefaultZoom.
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return DefaultZoom
	}
	return math.Min(MaxZoom, math.Max(MinZoom, z))
}

// ZoomIn returns the next larger zoom factor.
func ZoomIn(z float64) float64 {
	return ClampZoom(ClampZoom(z) * ZoomStep)
}

// ZoomOut returns the next smaller zoom factor.
func ZoomOut(z float64) float64 {
	return ClampZoom(ClampZoom(z) / ZoomStep)
}

// ComputeBarPosition places a bar for a task starting at start and lasting
// durationDays, relative to the first day of the timeline.
//
// Left is never negative: tasks that begin before the timeline are pinned
// to its left edge. Width is never below MinBarWidth.
func ComputeBarPosition(
	start time.Time,
	durationDays int,
	first time.Time,
	columnWidth float64,
	zoom float64,
) BarPosition {
	left := float64(DaysBetween(first, start)) * columnWidth * zoom
	width := float64(durationDays) * columnWidth * zoom

	return BarPosition{
		Left:  math.Max(0, left),
		Width: math.Max(MinBarWidth, width),
	}
}

// PositionOnTimeline is ComputeBarPosition anchored at timeline[0]. An
// empty timeline yields the zero position.
func PositionOnTimeline(
	timeline []time.Time,
	start time.Time,
	durationDays int,
	columnWidth float64,
	zoom float64,
) BarPosition {
	if len(timeline) == 0 {
		return BarPosition{}
	}
	return ComputeBarPosition(start, durationDays, timeline[0], columnWidth, zoom)
}
