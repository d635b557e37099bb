package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
)

var tasks = []model.Task{
	{Number: 1, Classification: "Arte", Phase: "Criação", ResponsibleName: "Ana Lima"},
	{Number: 2, Classification: "Compras", Phase: "Produção", ResponsibleName: "Bruno Souza"},
	{Number: 3, Classification: "Arte", Phase: "Produção", ResponsibleName: "Ana Lima"},
}

func TestOpen_PreselectsCurrent(t *testing.T) {
	m := New(100, 30)
	current := schedule.Filter{Category: []string{"Blisters"}, Condition: []string{"A", "C"}, Responsible: "Ana Lima", Query: "prova"}
	m.Open(tasks, current)

	got := m.result()
	assert.Equal(t, []string{"Blisters"}, got.Category)
	assert.Equal(t, []string{"A", "C"}, got.Condition)
	assert.Empty(t, got.Classification)
	assert.Empty(t, got.Phase)
	assert.Equal(t, "Ana Lima", got.Responsible)
	assert.Equal(t, "prova", got.Query)
	assert.NotNil(t, m.form)
}

func TestResult_ClearWins(t *testing.T) {
	m := New(100, 30)
	m.Open(tasks, schedule.Filter{Phase: []string{"Produção"}, Status: model.StatusOverdue.Label()})
	m.fb.clear = true

	assert.Equal(t, schedule.Filter{}, m.result())
}

func TestResponsibles_DistinctSorted(t *testing.T) {
	withBlank := append([]model.Task{{Number: 4}}, tasks...)
	assert.Equal(t, []string{"Ana Lima", "Bruno Souza"}, responsibles(withBlank))
}
