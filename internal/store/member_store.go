package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/cronograma/internal/model"
)

const memberInsert = `
	INSERT INTO team_members (
		id, name, role, team, email, phone, location, status,
		tasks_completed, created_at, updated_at
	) VALUES (
		:id, :name, :role, :team, :email, :phone, :location, :status,
		:tasks_completed, :created_at, :updated_at
	)`

func normalizeMember(m *model.TeamMember) {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	if m.Status == "" {
		m.Status = model.MemberActive
	}
	if m.TasksCompleted < 0 {
		m.TasksCompleted = 0
	}
}

// CreateMember inserts a new team member.
func (s *SQLiteStore) CreateMember(
	ctx context.Context,
	member model.TeamMember,
) (*model.TeamMember, error) {
	normalizeMember(&member)
	if member.Name == "" {
		return nil, fmt.Errorf("%w: member name must not be empty", ErrInvalid)
	}
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now

	if _, err := s.db.NamedExecContext(ctx, memberInsert, member); err != nil {
		return nil, fmt.Errorf("creating member: %w", err)
	}
	return &member, nil
}

// UpdateMember overwrites an existing team member.
func (s *SQLiteStore) UpdateMember(ctx context.Context, member model.TeamMember) error {
	normalizeMember(&member)
	if member.Name == "" {
		return fmt.Errorf("%w: member name must not be empty", ErrInvalid)
	}
	member.UpdatedAt = time.Now().UTC()

	result, err := s.db.NamedExecContext(ctx, `
		UPDATE team_members SET
			name = :name, role = :role, team = :team, email = :email,
			phone = :phone, location = :location, status = :status,
			tasks_completed = :tasks_completed, updated_at = :updated_at
		WHERE id = :id`, member)
	if err != nil {
		return fmt.Errorf("updating member %s: %w", member.ID, err)
	}
	return mustAffect(result, "member", member.ID)
}

// DeleteMember removes a team member by ID.
func (s *SQLiteStore) DeleteMember(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM team_members WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting member %s: %w", id, err)
	}
	return mustAffect(result, "member", id)
}

// GetMemberByID retrieves a single team member.
func (s *SQLiteStore) GetMemberByID(ctx context.Context, id string) (*model.TeamMember, error) {
	var m model.TeamMember
	if err := s.db.GetContext(ctx, &m, "SELECT * FROM team_members WHERE id = ?", id); err != nil {
		return nil, notFound(err, "member", id)
	}
	return &m, nil
}

// GetMembers lists team members by name.
func (s *SQLiteStore) GetMembers(ctx context.Context) ([]model.TeamMember, error) {
	var members []model.TeamMember
	if err := s.db.SelectContext(ctx, &members, "SELECT * FROM team_members ORDER BY name"); err != nil {
		return nil, fmt.Errorf("querying members: %w", err)
	}
	return members, nil
}

// UpsertMembers inserts or replaces members by ID, as delivered by the
// backend team endpoint.
func (s *SQLiteStore) UpsertMembers(ctx context.Context, members []model.TeamMember) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, m := range members {
		normalizeMember(&m)
		if m.ID == "" || m.Name == "" {
			continue
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.UpdatedAt = now

		_, err := tx.NamedExecContext(ctx, memberInsert+`
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, role = excluded.role, team = excluded.team,
				email = excluded.email, phone = excluded.phone,
				location = excluded.location, status = excluded.status,
				tasks_completed = excluded.tasks_completed,
				updated_at = excluded.updated_at`, m)
		if err != nil {
			return fmt.Errorf("upserting member %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}
