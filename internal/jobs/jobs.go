// Package jobs runs the periodic background work: the overdue sweep and
// the daily digest.
package jobs

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/store"
)

const jobTimeout = 2 * time.Minute

// TaskLister reads tasks for the jobs.
type TaskLister interface {
	GetTasks(ctx context.Context, opts store.TaskFilter) ([]model.Task, error)
}

// Notifier stores deduplicated notifications and delivers ad-hoc ones.
type Notifier interface {
	AddOnce(ctx context.Context, n model.Notification) (*model.Notification, bool, error)
	Deliver(ctx context.Context, n model.Notification)
}

// Runner owns the cron scheduler and the job bodies.
type Runner struct {
	tasks    TaskLister
	notifier Notifier
	loc      *time.Location
	cron     *cron.Cron

	// Now is the clock; tests replace it.
	Now func() time.Time
}

// New creates a runner whose days and cron specs are evaluated in loc.
func New(tasks TaskLister, n Notifier, loc *time.Location) *Runner {
	if loc == nil {
		loc = time.Local
	}
	return &Runner{
		tasks:    tasks,
		notifier: n,
		loc:      loc,
		cron:     cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		Now:      time.Now,
	}
}

// Schedule registers the overdue sweep every sweepEvery and the digest
// daily at digestAt ("HH:MM"). An empty digestAt disables the digest.
func (r *Runner) Schedule(sweepEvery time.Duration, digestAt string) error {
	if sweepEvery <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	spec := fmt.Sprintf("@every %ds", max(1, int(sweepEvery.Seconds())))
	if _, err := r.cron.AddFunc(spec, r.run("overdue sweep", r.sweep)); err != nil {
		return fmt.Errorf("scheduling overdue sweep: %w", err)
	}

	if strings.TrimSpace(digestAt) == "" {
		return nil
	}
	daily, err := DailySpec(digestAt)
	if err != nil {
		return err
	}
	if _, err := r.cron.AddFunc(daily, r.run("daily digest", r.digest)); err != nil {
		return fmt.Errorf("scheduling daily digest: %w", err)
	}
	return nil
}

func (r *Runner) Start() { r.cron.Start() }

// Stop stops the scheduler and waits for running jobs.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Runner) run(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := job(ctx); err != nil {
			log.Printf("jobs: %s failed: %v", name, err)
		}
	}
}

func (r *Runner) sweep(ctx context.Context) error {
	n, err := r.SweepOverdue(ctx)
	if n > 0 {
		log.Printf("jobs: %d new overdue notification(s)", n)
	}
	return err
}

func (r *Runner) digest(ctx context.Context) error {
	_, err := r.SendDigest(ctx)
	return err
}

// SweepOverdue creates one warning per overdue task per day and returns
// how many were new.
func (r *Runner) SweepOverdue(ctx context.Context) (int, error) {
	tasks, err := r.tasks.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		return 0, fmt.Errorf("loading tasks: %w", err)
	}

	now := r.Now().In(r.loc)
	day := now.Format("2006-01-02")
	added := 0
	for _, t := range tasks {
		if schedule.TaskStatus(t, now) != model.StatusOverdue {
			continue
		}
		_, ok, err := r.notifier.AddOnce(ctx, OverdueNotification(t, now, day))
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// OverdueNotification describes an overdue task. Its Ref makes it unique
// per task and day.
func OverdueNotification(t model.Task, now time.Time, day string) model.Notification {
	delay := schedule.EffectiveDelay(t, now)
	msg := fmt.Sprintf("%s · %d dia(s) de atraso · %s",
		t.Name, delay, schedule.DisplayName(t.ResponsibleName))
	if t.ProjectName != "" {
		msg = t.ProjectName + ": " + msg
	}
	return model.Notification{
		Title:    fmt.Sprintf("Tarefa %d atrasada", t.Number),
		Message:  msg,
		Type:     model.NotificationWarning,
		Category: model.CategoryTask,
		Ref:      "overdue:" + t.ID + ":" + day,
	}
}

// SendDigest builds the daily summary and delivers it through the
// notification sinks.
func (r *Runner) SendDigest(ctx context.Context) (model.Notification, error) {
	tasks, err := r.tasks.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		return model.Notification{}, fmt.Errorf("loading tasks: %w", err)
	}
	n := Digest(tasks, r.Now().In(r.loc))
	r.notifier.Deliver(ctx, n)
	return n, nil
}

// digestListLimit bounds the per-section task lists in the digest.
const digestListLimit = 10

// Digest summarizes tasks as of now: the counters, the overdue tasks
// (most late first) and the tasks due today.
func Digest(tasks []model.Task, now time.Time) model.Notification {
	c := schedule.Count(tasks, now)

	var overdue, dueToday []model.Task
	for _, t := range tasks {
		switch {
		case schedule.TaskStatus(t, now) == model.StatusOverdue:
			overdue = append(overdue, t)
		case dueOn(t, now) && schedule.ClampPercent(t.Percent) < 100:
			dueToday = append(dueToday, t)
		}
	}
	sort.SliceStable(overdue, func(i, j int) bool {
		return schedule.EffectiveDelay(overdue[i], now) > schedule.EffectiveDelay(overdue[j], now)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Progresso geral: %d%% (%d de %d concluídas)\n", c.Percent(), c.Done, c.Total)
	fmt.Fprintf(&b, "Em andamento: %d · Atrasadas: %d · Não iniciadas: %d\n",
		c.InProgress, c.Overdue, c.NotStarted)

	writeSection(&b, "Atrasadas", overdue, func(t model.Task) string {
		return strconv.Itoa(schedule.EffectiveDelay(t, now)) + "d"
	})
	writeSection(&b, "Vencem hoje", dueToday, func(t model.Task) string {
		return strconv.Itoa(schedule.ClampPercent(t.Percent)) + "%"
	})

	typ := model.NotificationInfo
	if len(overdue) > 0 {
		typ = model.NotificationWarning
	}
	return model.Notification{
		Title:     "Resumo diário " + now.Format("02/01/2006"),
		Message:   strings.TrimRight(b.String(), "\n"),
		Type:      typ,
		Category:  model.CategorySystem,
		CreatedAt: now,
	}
}

func writeSection(b *strings.Builder, title string, tasks []model.Task, detail func(model.Task) string) {
	if len(tasks) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d):\n", title, len(tasks))
	for i, t := range tasks {
		if i == digestListLimit {
			fmt.Fprintf(b, "  … e mais %d\n", len(tasks)-digestListLimit)
			break
		}
		fmt.Fprintf(b, "  #%d %s (%s, %s)\n", t.Number, t.Name, detail(t), schedule.DisplayName(t.ResponsibleName))
	}
}

func dueOn(t model.Task, day time.Time) bool {
	end := t.Deadline
	if end == nil {
		end = t.EndDate
	}
	return end != nil && schedule.DaysBetween(*end, day) == 0
}

// DailySpec converts "HH:MM" into a six-field cron spec.
func DailySpec(timeStr string) (string, error) {
	parts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
