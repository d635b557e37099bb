package sync

import (
	"context"
	"fmt"
	"log"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/cronograma/internal/source"
)

// SyncState represents the current state of a source sync operation.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the sync state for a single source.
type SyncStatus struct {
	SourceType source.SourceType
	State      SyncState
	LastSync   time.Time
	Error      error
}

// SyncResultMsg is a tea.Msg sent when a sync operation completes.
type SyncResultMsg struct {
	Source    source.SourceType
	Result    Result
	Error     error
	AuthError *AuthErrorMsg
}

// AuthErrorMsg is a tea.Msg sent when a source returns an authentication error.
type AuthErrorMsg struct {
	SourceType source.SourceType
	Message    string
}

// fetchTimeout is the maximum time allowed for a single fetch and apply.
const fetchTimeout = 60 * time.Second

const defaultInterval = 120 * time.Second

type sourceEntry struct {
	src      source.Source
	interval time.Duration
	trigger  chan struct{}
}

// Poller orchestrates background polling of registered sources.
type Poller struct {
	store    Store
	notifier Notifier
	sources  []sourceEntry
	statuses map[source.SourceType]*SyncStatus
	resultCh chan SyncResultMsg
	stopCh   chan struct{}
	cancel   context.CancelFunc
	wg       gosync.WaitGroup
	mu       gosync.Mutex
	running  bool
}

// New creates a new Poller that applies updates to st and routes
// notifications through n.
func New(st Store, n Notifier) *Poller {
	return &Poller{
		store:    st,
		notifier: n,
		statuses: make(map[source.SourceType]*SyncStatus),
		resultCh: make(chan SyncResultMsg, 16),
		stopCh:   make(chan struct{}),
	}
}

// RegisterSource adds a source polled every interval. A non-positive
// interval uses the default of two minutes.
func (p *Poller) RegisterSource(src source.Source, interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if interval <= 0 {
		interval = defaultInterval
	}
	p.sources = append(p.sources, sourceEntry{
		src:      src,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	})
	p.statuses[src.Type()] = &SyncStatus{SourceType: src.Type(), State: SyncIdle}
}

// Start launches one polling goroutine per source and returns a tea.Cmd
// that delivers the first SyncResultMsg. A stopped poller can be started
// again.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	sources := append([]sourceEntry(nil), p.sources...)
	p.mu.Unlock()

	for _, entry := range sources {
		p.wg.Add(1)
		go p.pollSource(ctx, entry)
	}
	return p.waitForResult()
}

// Stop halts all polling goroutines, cancels in-flight fetches and waits
// for them to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.cancel()
	close(p.stopCh)
	p.stopCh = make(chan struct{})
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

// RefreshAll triggers an immediate poll of all registered sources.
func (p *Poller) RefreshAll() tea.Cmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, entry := range p.sources {
		select {
		case entry.trigger <- struct{}{}:
		default:
			// a refresh is already pending
		}
	}
	return nil
}

// RefreshSource triggers an immediate poll of a single source type.
func (p *Poller) RefreshSource(st source.SourceType) tea.Cmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, entry := range p.sources {
		if entry.src.Type() != st {
			continue
		}
		select {
		case entry.trigger <- struct{}{}:
		default:
		}
	}
	return nil
}

// GetStatuses returns the current sync status of all registered sources.
func (p *Poller) GetStatuses() []SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]SyncStatus, 0, len(p.statuses))
	for _, s := range p.statuses {
		statuses = append(statuses, *s)
	}
	return statuses
}

func (p *Poller) pollSource(ctx context.Context, entry sourceEntry) {
	defer p.wg.Done()

	ticker := time.NewTicker(entry.interval)
	defer ticker.Stop()

	p.syncOnce(ctx, entry.src)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.syncOnce(ctx, entry.src)
		case <-entry.trigger:
			p.syncOnce(ctx, entry.src)
		}
	}
}

// SyncOnce fetches from src, applies the update and publishes the result.
func (p *Poller) SyncOnce(src source.Source) SyncResultMsg {
	return p.syncOnce(context.Background(), src)
}

func (p *Poller) syncOnce(parent context.Context, src source.Source) SyncResultMsg {
	st := src.Type()
	p.setStatus(st, SyncRunning, nil)

	ctx, cancel := context.WithTimeout(parent, fetchTimeout)
	defer cancel()

	msg := SyncResultMsg{Source: st}
	update, err := src.Fetch(ctx)
	if err == nil {
		msg.Result, err = Apply(ctx, p.store, p.notifier, update)
	}

	if err != nil && parent.Err() != nil {
		p.setStatus(st, SyncIdle, err)
		msg.Error = err
		return msg
	}
	if err != nil {
		log.Printf("sync: %s failed: %v", st, err)
		p.setStatus(st, SyncError, err)
		msg.Error = err
		if source.IsAuthError(err) {
			msg.AuthError = &AuthErrorMsg{
				SourceType: st,
				Message:    fmt.Sprintf("%s: authentication expired. Press 'c' to reconfigure.", st),
			}
		}
		p.sendResult(msg)
		return msg
	}

	p.setStatus(st, SyncIdle, nil)
	p.sendResult(msg)
	return msg
}

func (p *Poller) setStatus(st source.SourceType, state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[st]
	if !ok {
		return
	}
	status.State = state
	status.Error = err
	if state == SyncIdle && err == nil {
		status.LastSync = time.Now()
	}
}

// sendResult publishes without blocking; results are dropped when nobody
// is listening.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
	}
}

// waitForResult returns nil once the poller is stopped.
func (p *Poller) waitForResult() tea.Cmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return nil
	}
	stop := p.stopCh
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-stop:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync result.
// Call it after handling each SyncResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
