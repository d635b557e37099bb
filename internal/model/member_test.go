package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeamMember_Initials(t *testing.T) {
	assert.Equal(t, "MDS", TeamMember{Name: "maria da silva santos"}.Initials())
	assert.Equal(t, "ÉM", TeamMember{Name: "Érica Moura"}.Initials())
	assert.Equal(t, "", TeamMember{Name: "  "}.Initials())
}

func TestSpreadsheet_Label(t *testing.T) {
	assert.Equal(t, "Projeto X | Blister", Spreadsheet{Name: "Blister", Project: "Projeto X"}.Label())
	assert.Equal(t, "Blister", Spreadsheet{Name: "Blister"}.Label())
}

func TestEvent_EndDate(t *testing.T) {
	e := Event{DurationDays: 3}
	assert.Equal(t, 2, int(e.EndDate().Sub(e.Date).Hours()/24))
	assert.Equal(t, e.Date, Event{}.EndDate())
}
