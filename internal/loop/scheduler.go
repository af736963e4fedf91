// Package loop provides a fixed-rate scheduler that runs an ordered list
// of tick operations on a single goroutine.
package loop

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrInvalidRate is returned by Start for a non-positive rate.
	ErrInvalidRate = errors.New("loop: tick rate must be positive")
	// ErrRunning is returned by Start when the scheduler is already running.
	ErrRunning = errors.New("loop: scheduler already running")
)

// Op is one unit of per-tick work.
type Op func()

// Scheduler invokes its ops, in registration order, once per tick.
// Ticks never overlap: a tick that runs long delays the next one and
// missed deadlines are dropped rather than queued.
type Scheduler struct {
	logger *log.Logger

	mu      sync.Mutex // guards ops, stop, done, running
	ops     []Op
	stop    chan struct{}
	done    chan struct{}
	running bool

	tickMu sync.Mutex // held for the duration of one tick
	ticks  atomic.Uint64
}

// New creates a stopped scheduler. A nil logger discards output.
func New(logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scheduler{logger: logger}
}

// Add appends an op to the tick list. Ops added while running take effect
// from the next tick.
func (s *Scheduler) Add(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, op)
}

// Start begins firing ticks at rateHz.
func (s *Scheduler) Start(rateHz int) error {
	if rateHz <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, rateHz)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}

	interval := time.Second / time.Duration(rateHz)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	go s.run(interval, s.stop, s.done)

	s.logger.Debug("scheduler started", "rate", rateHz, "interval", interval)
	return nil
}

func (s *Scheduler) run(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.fireTimed(stop) {
				return
			}
		}
	}
}

// fireTimed runs a timer tick unless the run that owns stop has been
// stopped. The check is made under mu while tickMu is held, so once Stop
// returns no tick from that run can begin.
func (s *Scheduler) fireTimed(stop <-chan struct{}) bool {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	current := s.running && s.stop == stop
	ops := make([]Op, len(s.ops))
	copy(ops, s.ops)
	s.mu.Unlock()

	if !current {
		return false
	}
	s.runOps(ops)
	return true
}

// Stop prevents any further ticks. A tick already in progress finishes.
// Stop is safe to call from inside an op and when not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stop)
	s.running = false
	s.logger.Debug("scheduler stopped", "ticks", s.Ticks())
}

// Done returns a channel closed when the most recently started tick
// goroutine has exited. It returns nil if the scheduler was never started.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Running reports whether ticks are being fired.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Fire runs one tick synchronously. It waits for any tick in progress, so
// it never overlaps a timer-driven tick.
func (s *Scheduler) Fire() {
	s.mu.Lock()
	ops := make([]Op, len(s.ops))
	copy(ops, s.ops)
	s.mu.Unlock()

	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	s.runOps(ops)
}

func (s *Scheduler) runOps(ops []Op) {
	for _, op := range ops {
		op()
	}
	s.ticks.Add(1)
}

// Ticks returns the number of completed ticks.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}
