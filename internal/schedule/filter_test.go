package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/cronograma/internal/model"
)

func sampleTasks() []model.Task {
	return []model.Task{
		{Number: 1, Name: "Arte final", Classification: "Design", Category: "Blisters", Condition: "A", Phase: "1", Percent: 100, ResponsibleName: "Maria da Silva"},
		{Number: 2, Name: "Prova de cor", Classification: "Gráfica", Category: "Cartucho", Condition: "Sempre", Phase: "2", Percent: 40, ResponsibleName: "João Pereira"},
		{Number: 3, Name: "Aprovação", Classification: "Design", Category: "Sachets", Condition: "B", Phase: "2", DelayDays: 3, Percent: 10},
		{Number: 4, Name: "Compra", Classification: "Suprimentos", Category: "Blisters", Condition: "C", Phase: "3", HowTo: "Pedido no ERP"},
	}
}

func numbers(tasks []model.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.Number
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	now := day(2024, 6, 10)
	tasks := sampleTasks()

	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{"empty", Filter{}, []int{1, 2, 3, 4}},
		{"classification", Filter{Classification: []string{"Design"}}, []int{1, 3}},
		{"category", Filter{Category: []string{"Blisters", "Sachets"}}, []int{1, 3, 4}},
		{"condition keeps Sempre", Filter{Condition: []string{"B"}}, []int{2, 3}},
		{"conditions", Filter{Condition: []string{"A", "C"}}, []int{1, 2, 4}},
		{"phase", Filter{Phase: []string{"2"}}, []int{2, 3}},
		{"status done", Filter{Status: model.StatusCompleted.Label()}, []int{1}},
		{"status overdue", Filter{Status: model.StatusOverdue.Label()}, []int{3}},
		{"status not started", Filter{Status: model.StatusNotStarted.Label()}, []int{4}},
		{"responsible", Filter{Responsible: "joão"}, []int{2}},
		{"query name", Filter{Query: "cor"}, []int{2}},
		{"query substring", Filter{Query: "prova"}, []int{2, 3}},
		{"query how-to", Filter{Query: "erp"}, []int{4}},
		{"combined", Filter{Classification: []string{"Design"}, Phase: []string{"2"}}, []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, numbers(tt.filter.Apply(tasks, now)))
		})
	}
}

func TestFilter_IsEmptyAndSummary(t *testing.T) {
	assert.True(t, Filter{Query: "  "}.IsEmpty())
	f := Filter{Classification: []string{"Design"}, Condition: []string{"A", "B"}}
	assert.False(t, f.IsEmpty())
	assert.Equal(t, "class: Design | cond: A,B", f.Summary())
}

func TestOptions(t *testing.T) {
	classes, phases := Options(sampleTasks())
	assert.Equal(t, []string{"Design", "Gráfica", "Suprimentos"}, classes)
	assert.Equal(t, []string{"1", "2", "3"}, phases)
}
