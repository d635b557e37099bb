package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/store"
	"github.com/nhle/cronograma/tests/testutil"
)

func TestMembers_CRUD(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.CreateMember(ctx, model.TeamMember{Name: ""})
	assert.Error(t, err)

	m, err := s.CreateMember(ctx, model.TeamMember{Name: "Maria da Silva", Role: "PCP"})
	require.NoError(t, err)
	assert.Equal(t, model.MemberActive, m.Status)

	m.Status = model.MemberVacation
	m.TasksCompleted = 4
	require.NoError(t, s.UpdateMember(ctx, *m))

	got, err := s.GetMemberByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MemberVacation, got.Status)
	assert.Equal(t, 4, got.TasksCompleted)

	require.NoError(t, s.DeleteMember(ctx, m.ID))
	_, err = s.GetMemberByID(ctx, m.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsertMembers(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.UpsertMembers(ctx, []model.TeamMember{
		{ID: "7", Name: "Bruno"},
		{ID: "3", Name: "Ana", Status: model.MemberInactive},
		{ID: "", Name: "Sem id"},
	}))
	require.NoError(t, s.UpsertMembers(ctx, []model.TeamMember{{ID: "7", Name: "Bruno Costa", TasksCompleted: 2}}))

	members, err := s.GetMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Ana", members[0].Name)
	assert.Equal(t, "Bruno Costa", members[1].Name)
	assert.Equal(t, 2, members[1].TasksCompleted)
}
