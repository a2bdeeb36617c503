package runner

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum-optimism/infra/peck/types"
	"github.com/ethereum/go-ethereum/log"
)

// ProgressLogger is an observer that periodically logs how many
// specifications have completed and which ones have been running longest.
type ProgressLogger struct {
	logger   log.Logger
	interval time.Duration
	source   Source

	mu        sync.RWMutex
	ticker    *time.Ticker
	stopCh    chan struct{}
	completed int
	total     int
	startTime time.Time

	// Track currently running specifications
	running map[*types.Specification]time.Time
}

// NewProgressLogger creates a progress logger. src is consulted when a run
// starts to learn how many specifications it holds.
func NewProgressLogger(logger log.Logger, updateInterval time.Duration, src Source) *ProgressLogger {
	if updateInterval == 0 {
		updateInterval = DefaultProgressInterval
	}
	return &ProgressLogger{
		logger:   logger,
		interval: updateInterval,
		source:   src,
		running:  make(map[*types.Specification]time.Time),
	}
}

func (p *ProgressLogger) Started() {
	total := 0
	if p.source != nil {
		total = len(p.source.Specifications())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.completed = 0
	p.startTime = time.Now()
	p.running = make(map[*types.Specification]time.Time)
	if p.stopCh == nil {
		p.ticker = time.NewTicker(p.interval)
		p.stopCh = make(chan struct{})
		go p.progressReporter(p.ticker, p.stopCh)
	}

	p.logger.Info("Starting run", "total", total)
}

// StartedSpecification tracks when a specification starts running
func (p *ProgressLogger) StartedSpecification(spec *types.Specification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.running[spec] = time.Now()
	p.logger.Debug("Specification started", "specification", spec.Label(), "running", len(p.running))
}

func (p *ProgressLogger) FinishedSpecification(spec *types.Specification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.running, spec)
	p.completed++

	// Log individual completion at debug level to avoid spam
	p.logger.Debug("Specification completed", "specification", spec.Label(), "outcome", spec.Outcome(),
		"completed", p.completed, "total", p.total, "running", len(p.running))
}

func (p *ProgressLogger) Finished() {
	p.mu.Lock()
	defer p.mu.Unlock()

	duration := time.Since(p.startTime).Truncate(time.Millisecond)
	p.logger.Info("Completed run", "total", p.total, "completed", p.completed, "duration", duration)
	p.running = make(map[*types.Specification]time.Time)
	p.stop()
}

// Stop stops periodic updates. It is safe to call more than once.
func (p *ProgressLogger) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop()
}

func (p *ProgressLogger) stop() {
	if p.stopCh == nil {
		return
	}
	p.ticker.Stop()
	close(p.stopCh)
	p.ticker = nil
	p.stopCh = nil
}

// progressReporter runs in a goroutine and periodically reports progress
func (p *ProgressLogger) progressReporter(ticker *time.Ticker, stopCh chan struct{}) {
	for {
		select {
		case <-ticker.C:
			p.reportProgress()
		case <-stopCh:
			return
		}
	}
}

func (p *ProgressLogger) reportProgress() {
	p.mu.RLock()
	defer p.mu.RUnlock()

	running := make(map[string]time.Time, len(p.running))
	for spec, start := range p.running {
		running[spec.Label()] = start
	}

	var percentComplete float64
	if p.total > 0 {
		percentComplete = float64(p.completed) * 100.0 / float64(p.total)
	}

	p.logger.Info("Progress update",
		"completed", p.completed,
		"total", p.total,
		"percent", fmt.Sprintf("%.1f%%", percentComplete),
		"numRunning", len(p.running),
		"longestRunning", formatRunning(running, maxShownRunning))
}

// formatRunning lists the longest running entries first, limited to maxShow.
func formatRunning(running map[string]time.Time, maxShow int) string {
	if len(running) == 0 {
		return ""
	}

	type entry struct {
		name     string
		duration time.Duration
	}

	var entries []entry
	now := time.Now()
	for name, startTime := range running {
		entries = append(entries, entry{
			name:     name,
			duration: now.Sub(startTime),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].duration > entries[j].duration
	})

	var parts []string
	for i, e := range entries {
		if i >= maxShow {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%v)", e.name, e.duration.Truncate(time.Second)))
	}

	if len(entries) > maxShow {
		parts = append(parts, fmt.Sprintf("+%d more", len(entries)-maxShow))
	}

	return strings.Join(parts, ", ")
}
