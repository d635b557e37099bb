package taskform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
)

func TestStartCreate_NextNumber(t *testing.T) {
	m := New(time.UTC, 100, 30)
	m.StartCreate(model.Task{SheetID: "s1"}, []model.Task{{Number: 3}, {Number: 7}, {Number: 5}})

	assert.Equal(t, "8", m.fb.number)
	assert.Equal(t, "1", m.fb.duration)
	assert.Equal(t, "0", m.fb.percent)
	assert.NotNil(t, m.form)
}

func TestHandleSubmit_Create(t *testing.T) {
	m := New(time.UTC, 100, 30)
	m.StartCreate(model.Task{SheetID: "s1", ProjectName: "Linha"}, nil)
	m.fb.name = "  Aprovar arte  "
	m.fb.duration = "3 dias"
	m.fb.percent = "140"
	m.fb.startDate = "04/03/2024"
	m.fb.deadline = "2024-03-08"
	m.fb.responsible = "Ana Lima"

	msg, ok := m.handleSubmit()().(SubmittedMsg)
	require.True(t, ok)
	assert.True(t, msg.IsNew)

	got := msg.Task
	assert.Equal(t, "s1", got.SheetID)
	assert.Equal(t, "Linha", got.ProjectName)
	assert.Equal(t, 1, got.Number)
	assert.Equal(t, "Aprovar arte", got.Name)
	assert.Equal(t, 3, got.DurationDays)
	assert.Equal(t, 100, got.Percent)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), *got.StartDate)
	require.NotNil(t, got.Deadline)
	assert.Equal(t, time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC), *got.Deadline)
	assert.Equal(t, "Ana Lima", got.ResponsibleName)
}

func TestHandleSubmit_EditKeepsIdentity(t *testing.T) {
	start := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	orig := model.Task{
		ID: "t1", SheetID: "s1", Number: 4, Name: "Prova",
		DurationDays: 2, Percent: 30, StartDate: &start,
		ResponsibleID: "m1", ResponsibleName: "Ana Lima",
	}

	m := New(time.UTC, 100, 30)
	m.StartEdit(orig)
	assert.Equal(t, "04/03/2024", m.fb.startDate)

	msg := m.handleSubmit()().(SubmittedMsg)
	assert.False(t, msg.IsNew)
	assert.Equal(t, "t1", msg.Task.ID)
	assert.Equal(t, "m1", msg.Task.ResponsibleID)

	m.fb.responsible = "Bruno Souza"
	m.fb.startDate = ""
	msg = m.handleSubmit()().(SubmittedMsg)
	assert.Equal(t, "Bruno Souza", msg.Task.ResponsibleName)
	assert.Empty(t, msg.Task.ResponsibleID)
	assert.Nil(t, msg.Task.StartDate)
}

func TestValidators(t *testing.T) {
	m := New(time.UTC, 100, 30)
	assert.NoError(t, m.validateOptionalDate(""))
	assert.NoError(t, m.validateOptionalDate("31/12/2024"))
	assert.Error(t, m.validateOptionalDate("31/13/2024"))

	percent := validateInt("% Concluído", 0, 100)
	assert.NoError(t, percent("100"))
	assert.Error(t, percent("101"))
	assert.Error(t, percent("abc"))

	assert.Error(t, validateRequired("Nome")("   "))
}
