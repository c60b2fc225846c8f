// Package connectivity reports whether the remote word source is reachable.
package connectivity

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/smith3v/word-learner/pkg/config"
	"github.com/smith3v/word-learner/pkg/logger"
)

const (
	defaultInterval = 30 * time.Second
	defaultTimeout  = 5 * time.Second
)

// Signal is a boolean online/offline indicator.
type Signal interface {
	Online() bool
}

// Static is a Signal that never changes.
type Static bool

func (s Static) Online() bool { return bool(s) }

// Monitor probes a URL periodically. Any HTTP response counts as online;
// transport failures count as offline.
type Monitor struct {
	client   *http.Client
	probeURL string
	interval time.Duration

	online atomic.Bool
	mu     sync.Mutex
	sched  *gocron.Scheduler
}

func NewMonitor(cfg config.ConnectivityConfig) *Monitor {
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Monitor{
		client:   &http.Client{Timeout: timeout},
		probeURL: cfg.ProbeURL,
		interval: interval,
	}
}

func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Check probes once and records the result.
func (m *Monitor) Check(ctx context.Context) bool {
	online := m.probe(ctx)
	if previous := m.online.Swap(online); previous != online {
		if online {
			logger.Info("connectivity restored", "probe_url", m.probeURL)
		} else {
			logger.Info("connectivity lost", "probe_url", m.probeURL)
		}
	}
	return online
}

func (m *Monitor) probe(ctx context.Context) bool {
	if m.probeURL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		logger.Error("invalid connectivity probe url", "probe_url", m.probeURL, "error", err)
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		logger.Debug("connectivity probe failed", "error", err)
		return false
	}
	resp.Body.Close()
	return true
}

// Start runs Check immediately and then on every interval until Stop.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sched != nil {
		return nil
	}

	sched := gocron.NewScheduler(time.UTC)
	sched.SingletonModeAll()
	if _, err := sched.Every(m.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.client.Timeout)
		defer cancel()
		m.Check(ctx)
	}); err != nil {
		return err
	}
	sched.StartAsync()
	m.sched = sched
	return nil
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sched == nil {
		return
	}
	m.sched.Stop()
	m.sched = nil
}
