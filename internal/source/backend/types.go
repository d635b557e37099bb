package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ErrorResponse is the error body returned by the backend.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Erro    string `json:"erro"`
}

func (e ErrorResponse) message() string {
	for _, m := range []string{e.Error, e.Message, e.Erro} {
		if m != "" {
			return m
		}
	}
	return ""
}

// ID is a backend identifier that arrives either as a JSON number or string.
type ID string

// UnmarshalJSON accepts numbers, strings and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// FilesResponse is returned by GET /arquivos_usuario.
type FilesResponse struct {
	Arquivos []FileDTO `json:"arquivos"`
}

// FileDTO is one spreadsheet owned by the user.
type FileDTO struct {
	ID         ID     `json:"id" validate:"required"`
	Name       string `json:"name"`
	Nome       string `json:"nome"`
	Project    string `json:"project"`
	Projeto    string `json:"projeto"`
	ImportedAt string `json:"importedAt"`
	Tipo       string `json:"tipo" validate:"omitempty,oneof=embalagem_primaria outros"`
}

// RowsResponse is returned by GET /arquivo/{id}/dados.
type RowsResponse struct {
	Dados []RowDTO `json:"dados"`
}

// RowDTO is one task row. Numeric fields are loosely typed by the backend
// and are coerced when converted.
type RowDTO struct {
	Num            any     `json:"num" validate:"required"`
	Classe         string  `json:"classe"`
	Classification string  `json:"classification"`
	Category       string  `json:"category"`
	Categoria      string  `json:"categoria"`
	Phase          string  `json:"phase"`
	Fase           string  `json:"fase"`
	Condicao       string  `json:"condicao"`
	Condition      string  `json:"condition"`
	Status         string  `json:"status"`
	Name           string  `json:"name"`
	Nome           string  `json:"nome"`
	Duration       any     `json:"duration"`
	Duracao        any     `json:"duracao"`
	Conclusion     any     `json:"conclusion"`
	StartDate      *string `json:"start_date"`
	EndDate        *string `json:"end_date"`
	Deadline       *string `json:"deadline"`
	Atraso         any     `json:"atraso"`
	Responsavel    string  `json:"responsavel"`
	Responsible    string  `json:"responsible"`
	ComoFazer      string  `json:"como_fazer"`
	Documento      string  `json:"documento"`
	ProjectName    string  `json:"project_name"`
}

// RowPayload is the body of PATCH /arquivo/{id}/linha/{num}. Conclusion
// is a fraction in [0,1].
type RowPayload struct {
	Num         int     `json:"num,omitempty"`
	Classe      string  `json:"classe"`
	Category    string  `json:"category"`
	Phase       string  `json:"phase"`
	Status      string  `json:"status"`
	Name        string  `json:"name" validate:"required"`
	Duration    int     `json:"duration" validate:"gte=1"`
	Conclusion  float64 `json:"conclusion" validate:"gte=0,lte=1"`
	Responsible string  `json:"responsible"`
}

// ProgressResponse is returned by GET /project/progress_tasks/{id}.
type ProgressResponse struct {
	Progresso ProgressDTO `json:"progresso"`
}

// ProgressDTO holds the backend's status counters.
type ProgressDTO struct {
	Total      int `json:"total" validate:"gte=0"`
	Concluded  int `json:"concluded" validate:"gte=0"`
	InProgress int `json:"in_progress" validate:"gte=0"`
	NotStarted int `json:"not_started" validate:"gte=0"`
	Overdue    int `json:"overdue" validate:"gte=0"`
}

// TeamResponse is returned by POST /api/team/info.
type TeamResponse struct {
	Employees []EmployeeDTO `json:"employees"`
}

// EmployeeDTO is one team member as the backend describes it.
type EmployeeDTO struct {
	UserID         ID         `json:"user_id" validate:"required"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Cellphone      string     `json:"cellphone"`
	Role           string     `json:"role"`
	Active         any        `json:"active"`
	CompletedTasks any        `json:"completed_tasks"`
	TeamName       string     `json:"team_name"`
	Address        AddressDTO `json:"address"`
}

// AddressDTO is an employee's postal address.
type AddressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Mensagem string `json:"mensagem" validate:"required"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Resposta string `json:"resposta"`
	ModoChat string `json:"modo_chat"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func anyString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	}
	return ""
}
