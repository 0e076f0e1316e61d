// Package health polls the backend liveness endpoint and feeds the results
// into the Bubble Tea runtime.
package health

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/mail-triage/internal/logging"
	"github.com/nhle/mail-triage/internal/model"
)

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 30 * time.Second

// probeTimeout bounds a single probe independently of the HTTP client.
const probeTimeout = 10 * time.Second

// Checker reports whether the backend is healthy. Implementations must
// fail closed: any error means false.
type Checker interface {
	Healthy(ctx context.Context) bool
}

// ResultMsg is a tea.Msg carrying the outcome of one probe.
type ResultMsg struct {
	Online    bool
	CheckedAt time.Time
}

// Next is the health transition function. recovered is true when the
// status enters online from checking or offline.
func Next(prev model.HealthStatus, online bool) (next model.HealthStatus, recovered bool) {
	if !online {
		return model.HealthOffline, false
	}
	return model.HealthOnline, prev != model.HealthOnline
}

// Monitor runs a single probing goroutine: one probe immediately on start,
// then one per interval, plus any requested through Refresh.
type Monitor struct {
	checker  Checker
	interval time.Duration
	log      *logrus.Entry

	resultCh  chan ResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
	stopped bool
}

// New creates a monitor. It does nothing until Start is called.
func New(checker Checker, interval time.Duration, log *logrus.Entry) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logging.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		checker:   checker,
		interval:  interval,
		log:       log.WithField("component", "health"),
		resultCh:  make(chan ResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Interval returns the effective polling interval.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Start launches the polling goroutine and returns a command that waits
// for the first result. Calling Start twice, or after Stop, returns nil.
func (m *Monitor) Start() tea.Cmd {
	m.mu.Lock()
	if m.running || m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.loop()

	return m.waitForResult()
}

// Stop cancels any in-flight probe and waits for the goroutine to exit.
// It is safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	close(m.stopCh)
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()
}

// Refresh requests an immediate probe. Requests made while one is already
// queued are merged.
func (m *Monitor) Refresh() {
	select {
	case m.triggerCh <- struct{}{}:
	default:
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next probe result.
// Call it after handling each ResultMsg to keep listening.
func (m *Monitor) WaitForNextResult() tea.Cmd {
	return m.waitForResult()
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.probe()
		case <-m.triggerCh:
			m.probe()
		}
	}
}

// probe performs one health check and publishes the result.
func (m *Monitor) probe() {
	ctx, cancel := context.WithTimeout(m.ctx, probeTimeout)
	defer cancel()

	online := m.checker.Healthy(ctx)
	if m.ctx.Err() != nil {
		return
	}

	m.log.WithField("online", online).Debug("health probe")
	m.sendResult(ResultMsg{Online: online, CheckedAt: time.Now()})
}

// sendResult publishes without blocking; a full channel drops the result
// since a newer probe will follow.
func (m *Monitor) sendResult(msg ResultMsg) {
	select {
	case m.resultCh <- msg:
	default:
		m.log.Warn("health result dropped, channel full")
	}
}

func (m *Monitor) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-m.resultCh:
			return result
		case <-m.stopCh:
			return nil
		}
	}
}
