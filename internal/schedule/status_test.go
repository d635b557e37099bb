package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/cronograma/internal/model"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name    string
		pct     int
		delay   int
		started bool
		want    model.Status
	}{
		{"done", 100, 0, true, model.StatusCompleted},
		{"done late stays completed", 100, 12, true, model.StatusCompleted},
		{"over 100 clamps to done", 140, 3, true, model.StatusCompleted},
		{"late", 50, 2, true, model.StatusOverdue},
		{"late and untouched", 0, 1, false, model.StatusOverdue},
		{"untouched", 0, 0, false, model.StatusNotStarted},
		{"started at zero", 0, 0, true, model.StatusNotStarted},
		{"negative clamps to zero", -20, 0, false, model.StatusNotStarted},
		{"partial", 1, 0, true, model.StatusInProgress},
		{"almost done", 99, 0, true, model.StatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.pct, tt.delay, tt.started))
		})
	}
}

func TestClassifyStatus_CompletedRegardlessOfDelay(t *testing.T) {
	for delay := -5; delay <= 50; delay++ {
		assert.Equal(t, model.StatusCompleted, ClassifyStatus(100, delay, false))
	}
}

func TestEffectiveDelay(t *testing.T) {
	now := day(2024, 6, 10)
	end := day(2024, 6, 7)
	future := day(2024, 6, 20)

	assert.Equal(t, 4, EffectiveDelay(model.Task{DelayDays: 4}, now))
	assert.Equal(t, 3, EffectiveDelay(model.Task{Percent: 50, EndDate: &end}, now))
	assert.Equal(t, 0, EffectiveDelay(model.Task{Percent: 100, EndDate: &end}, now))
	assert.Equal(t, 0, EffectiveDelay(model.Task{Percent: 10, EndDate: &future}, now))
	assert.Equal(t, 0, EffectiveDelay(model.Task{}, now))
}

func TestTaskStatus(t *testing.T) {
	now := day(2024, 6, 10)
	end := day(2024, 6, 1)

	assert.Equal(t, model.StatusOverdue, TaskStatus(model.Task{Percent: 30, EndDate: &end}, now))
	assert.Equal(t, model.StatusInProgress, TaskStatus(model.Task{Percent: 30}, now))
}

func TestStatusFromPercentage(t *testing.T) {
	assert.Equal(t, "Concluído", StatusFromPercentage(100))
	assert.Equal(t, "Não Iniciado", StatusFromPercentage(0))
	assert.Equal(t, "Em Andamento", StatusFromPercentage(42))
	assert.Equal(t, "Não Iniciado", StatusFromPercentage(-3))
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Concluídas", model.StatusCompleted.Label())
	assert.Equal(t, "Atrasada", model.StatusOverdue.Badge())
	assert.Len(t, StatusLabels, 4)
}
