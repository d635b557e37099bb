package model

import (
	"strings"
	"time"
	"unicode"
)

// MemberStatus is the availability of a team member.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
	MemberVacation MemberStatus = "vacation"
)

// TeamMember is a person who can be made responsible for tasks.
type TeamMember struct {
	ID             string       `json:"id" db:"id"`
	Name           string       `json:"name" db:"name"`
	Role           string       `json:"role" db:"role"`
	Team           string       `json:"team" db:"team"`
	Email          string       `json:"email" db:"email"`
	Phone          string       `json:"phone" db:"phone"`
	Location       string       `json:"location" db:"location"`
	Status         MemberStatus `json:"status" db:"status"`
	TasksCompleted int          `json:"tasks_completed" db:"tasks_completed"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// Initials returns up to three uppercase initials of the member's name.
func (m TeamMember) Initials() string {
	var out []rune
	for _, part := range strings.Fields(m.Name) {
		if len(out) == 3 {
			break
		}
		out = append(out, unicode.ToUpper([]rune(part)[0]))
	}
	return string(out)
}
