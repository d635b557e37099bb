package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nhle/cronograma/internal/crossref"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/store"
)

// listLimit bounds how many tasks a reply enumerates.
const listLimit = 8

const helpText = "Posso responder sobre:\n" +
	"• tarefas atrasadas\n" +
	"• tarefas concluídas\n" +
	"• o que está previsto para hoje\n" +
	"• progresso geral do cronograma\n" +
	"• tarefas por responsável\n" +
	"• detalhes de uma tarefa (ex.: \"tarefa 12\")"

// TaskLister reads tasks for the local responder.
type TaskLister interface {
	GetTasks(ctx context.Context, opts store.TaskFilter) ([]model.Task, error)
}

// LocalResponder answers from the local store without any network.
type LocalResponder struct {
	tasks TaskLister

	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewLocalResponder(tasks TaskLister) *LocalResponder {
	return &LocalResponder{tasks: tasks, Now: time.Now}
}

type intent int

const (
	intentHelp intent = iota
	intentTask
	intentOverdue
	intentCompleted
	intentToday
	intentResponsible
	intentProgress
)

var keywords = []struct {
	intent intent
	words  []string
}{
	{intentOverdue, []string{"atrasad", "atraso", "overdue", "late"}},
	{intentCompleted, []string{"conclu", "complet", "finaliz", "done"}},
	{intentToday, []string{"hoje", "today"}},
	{intentResponsible, []string{"responsa", "quem", "equipe", "who"}},
	{intentProgress, []string{"progresso", "andamento", "resumo", "status", "progress", "summary"}},
}

func classify(folded string) intent {
	if len(crossref.ExtractTaskNumbers(folded)) > 0 {
		return intentTask
	}
	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(folded, w) {
				return k.intent
			}
		}
	}
	return intentHelp
}

// Respond answers in the standard mode.
func (r *LocalResponder) Respond(ctx context.Context, message string) (string, string, error) {
	folded := fold(message)
	in := classify(folded)
	if in == intentHelp {
		return helpText, ModeStandard, nil
	}

	tasks, err := r.tasks.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		return "", "", fmt.Errorf("loading tasks: %w", err)
	}
	if len(tasks) == 0 {
		return "Ainda não há tarefas. Importe uma planilha para começar.", ModeStandard, nil
	}
	now := r.Now()

	switch in {
	case intentTask:
		return describeTasks(tasks, crossref.ExtractTaskNumbers(folded), now), ModeStandard, nil
	case intentOverdue:
		overdue := byStatus(tasks, now, model.StatusOverdue)
		if len(overdue) == 0 {
			return "Nenhuma tarefa atrasada. 🎉", ModeStandard, nil
		}
		sort.SliceStable(overdue, func(i, j int) bool {
			return schedule.EffectiveDelay(overdue[i], now) > schedule.EffectiveDelay(overdue[j], now)
		})
		return listTasks(fmt.Sprintf("%d tarefa(s) atrasada(s):", len(overdue)), overdue, func(t model.Task) string {
			return fmt.Sprintf("%d dia(s) de atraso", schedule.EffectiveDelay(t, now))
		}), ModeStandard, nil
	case intentCompleted:
		done := byStatus(tasks, now, model.StatusCompleted)
		c := schedule.Count(tasks, now)
		head := fmt.Sprintf("%d de %d tarefa(s) concluída(s) (%d%%).", c.Done, c.Total, c.Percent())
		if len(done) == 0 {
			return head, ModeStandard, nil
		}
		return listTasks(head, done, nil), ModeStandard, nil
	case intentToday:
		today := activeOn(tasks, now)
		if len(today) == 0 {
			return "Nada previsto para hoje.", ModeStandard, nil
		}
		return listTasks(fmt.Sprintf("%d tarefa(s) para hoje:", len(today)), today, func(t model.Task) string {
			return fmt.Sprintf("%d%%", schedule.ClampPercent(t.Percent))
		}), ModeStandard, nil
	case intentResponsible:
		return describeResponsibles(tasks, now), ModeStandard, nil
	default:
		c := schedule.Count(tasks, now)
		return fmt.Sprintf("Progresso geral: %d%%.\nConcluídas: %d · Em andamento: %d · Atrasadas: %d · Não iniciadas: %d (total %d).",
			c.Percent(), c.Done, c.InProgress, c.Overdue, c.NotStarted, c.Total), ModeStandard, nil
	}
}

func byStatus(tasks []model.Task, now time.Time, st model.Status) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if schedule.TaskStatus(t, now) == st {
			out = append(out, t)
		}
	}
	return out
}

// activeOn returns unfinished tasks whose span covers day.
func activeOn(tasks []model.Task, day time.Time) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if schedule.ClampPercent(t.Percent) >= 100 {
			continue
		}
		start := schedule.TaskStart(t, day)
		end := start.AddDate(0, 0, schedule.ParseDurationDays(t.DurationDays)-1)
		if t.EndDate != nil {
			end = *t.EndDate
		}
		if schedule.DaysBetween(start, day) >= 0 && schedule.DaysBetween(day, end) >= 0 {
			out = append(out, t)
		}
	}
	return out
}

func listTasks(head string, tasks []model.Task, detail func(model.Task) string) string {
	var b strings.Builder
	b.WriteString(head)
	for i, t := range tasks {
		if i == listLimit {
			fmt.Fprintf(&b, "\n… e mais %d.", len(tasks)-listLimit)
			break
		}
		fmt.Fprintf(&b, "\n• #%d %s", t.Number, t.Name)
		if detail != nil {
			fmt.Fprintf(&b, " (%s)", detail(t))
		}
		fmt.Fprintf(&b, " · %s", schedule.DisplayName(t.ResponsibleName))
	}
	return b.String()
}

func describeTasks(tasks []model.Task, numbers []int, now time.Time) string {
	want := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		want[n] = true
	}

	var b strings.Builder
	for _, t := range tasks {
		if !want[t.Number] {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Tarefa %d: %s\nStatus: %s · %d%% · %d dia(s)\nResponsável: %s",
			t.Number, t.Name, schedule.TaskStatus(t, now).Label(),
			schedule.ClampPercent(t.Percent), schedule.ParseDurationDays(t.DurationDays),
			schedule.DisplayName(t.ResponsibleName))
		if t.EndDate != nil {
			fmt.Fprintf(&b, "\nFim: %s", t.EndDate.Format("02/01/2006"))
		}
		if t.ProjectName != "" {
			fmt.Fprintf(&b, "\nProjeto: %s", t.ProjectName)
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("Não encontrei a tarefa %d.", numbers[0])
	}
	return b.String()
}

func describeResponsibles(tasks []model.Task, now time.Time) string {
	groups := schedule.ByResponsible(tasks, now)
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if groups[names[i]].Total != groups[names[j]].Total {
			return groups[names[i]].Total > groups[names[j]].Total
		}
		return names[i] < names[j]
	})

	var b strings.Builder
	b.WriteString("Tarefas por responsável:")
	for i, name := range names {
		if i == listLimit {
			fmt.Fprintf(&b, "\n… e mais %d.", len(names)-listLimit)
			break
		}
		c := groups[name]
		label := name
		if name != schedule.NotDefined {
			label = schedule.DisplayName(name)
		}
		fmt.Fprintf(&b, "\n• %s: %d tarefa(s), %d concluída(s), %d atrasada(s)", label, c.Total, c.Done, c.Overdue)
	}
	return b.String()
}

// fold lowercases s and strips accents.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
