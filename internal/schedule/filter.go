package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/nhle/cronograma/internal/model"
)

// StatusLabels are the status filter choices, in display order.
var StatusLabels = []string{
	model.StatusCompleted.Label(),
	model.StatusInProgress.Label(),
	model.StatusOverdue.Label(),
	model.StatusNotStarted.Label(),
}

// Filter narrows a task list. Empty fields match everything.
type Filter struct {
	Classification []string `json:"classification,omitempty"`
	Category       []string `json:"category,omitempty"`
	Condition      []string `json:"condition,omitempty"`
	Phase          []string `json:"phase,omitempty"`
	// Status is one of StatusLabels.
	Status      string `json:"status,omitempty"`
	Responsible string `json:"responsible,omitempty"`
	Query       string `json:"query,omitempty"`
}

// IsEmpty reports whether the filter matches every task.
func (f Filter) IsEmpty() bool {
	return len(f.Classification) == 0 && len(f.Category) == 0 &&
		len(f.Condition) == 0 && len(f.Phase) == 0 && f.Status == "" &&
		f.Responsible == "" && strings.TrimSpace(f.Query) == ""
}

// Summary is a compact description of the active criteria.
func (f Filter) Summary() string {
	var parts []string
	if len(f.Classification) > 0 {
		parts = append(parts, "class: "+strings.Join(f.Classification, ","))
	}
	if len(f.Category) > 0 {
		parts = append(parts, "cat: "+strings.Join(f.Category, ","))
	}
	if len(f.Condition) > 0 {
		parts = append(parts, "cond: "+strings.Join(f.Condition, ","))
	}
	if len(f.Phase) > 0 {
		parts = append(parts, "phase: "+strings.Join(f.Phase, ","))
	}
	if f.Status != "" {
		parts = append(parts, "status: "+f.Status)
	}
	if f.Responsible != "" {
		parts = append(parts, "resp: "+f.Responsible)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		parts = append(parts, "search: "+q)
	}
	return strings.Join(parts, " | ")
}

// Matches reports whether t passes the filter as of now. Tasks whose
// condition is "Sempre" pass any condition criterion.
func (f Filter) Matches(t model.Task, now time.Time) bool {
	if len(f.Classification) > 0 && !contains(f.Classification, t.Classification) {
		return false
	}
	if len(f.Category) > 0 && !contains(f.Category, t.Category) {
		return false
	}
	if len(f.Condition) > 0 &&
		!strings.EqualFold(t.Condition, model.ConditionAlways) &&
		!contains(f.Condition, t.Condition) {
		return false
	}
	if len(f.Phase) > 0 && !contains(f.Phase, t.Phase) {
		return false
	}
	if f.Status != "" && TaskStatus(t, now).Label() != f.Status {
		return false
	}
	if f.Responsible != "" &&
		!strings.Contains(strings.ToLower(t.ResponsibleName), strings.ToLower(f.Responsible)) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hay := strings.ToLower(t.Name + " " + t.HowTo + " " + t.Classification)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// Apply returns the tasks matching f, preserving order.
func (f Filter) Apply(tasks []model.Task, now time.Time) []model.Task {
	if f.IsEmpty() {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t, now) {
			out = append(out, t)
		}
	}
	return out
}

// Options returns the sorted distinct classification and phase values
// present in tasks, for populating the filter panel.
func Options(tasks []model.Task) (classifications, phases []string) {
	return distinct(tasks, func(t model.Task) string { return t.Classification }),
		distinct(tasks, func(t model.Task) string { return t.Phase })
}

func distinct(tasks []model.Task, field func(model.Task) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tasks {
		v := strings.TrimSpace(field(t))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
