package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Poller states. Scheduled means the interval timer is live; Suspended
// means the consumer is not observing the data and no network calls
// fire until it becomes visible again.
const (
	stateIdle = iota
	stateScheduled
	stateSuspended
)

// Options controls when the poller fires outside the regular interval.
type Options struct {
	// Fire immediately when Start is called
	FetchOnStart bool

	// Fire immediately on the hidden-to-visible transition
	FetchOnVisible bool
}

// Poller invokes a callback on a fixed interval while the consumer is
// visible. One poller owns exactly one timer: suspension and
// resumption are idempotent, Stop guarantees no further invocation,
// and a tick that arrives while the previous callback is still running
// is skipped rather than run concurrently.
type Poller struct {
	mu       sync.Mutex
	state    int
	interval time.Duration
	opts     Options

	callback  func(context.Context) error
	visibleCh chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewPoller() *Poller {
	return &Poller{state: stateIdle}
}

// Start transitions Idle -> Scheduled and begins ticking. It returns
// an error if the poller is already running.
func (p *Poller) Start(ctx context.Context, callback func(context.Context) error, interval time.Duration, opts Options) error {
	if callback == nil {
		return errors.New("poller callback must not be nil")
	}
	if interval <= 0 {
		return errors.New("poller interval must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != stateIdle {
		return errors.New("poller already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.state = stateScheduled
	p.interval = interval
	p.opts = opts
	p.callback = callback
	p.visibleCh = make(chan struct{}, 1)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(runCtx)
	return nil
}

// SetVisible reports consumer visibility. Repeated calls with the same
// value are no-ops; a hidden-to-visible transition resumes ticking and
// fires immediately when FetchOnVisible is set.
func (p *Poller) SetVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.state == stateScheduled && !visible:
		p.state = stateSuspended
	case p.state == stateSuspended && visible:
		p.state = stateScheduled
	default:
		return
	}

	// Wake-up signal only: the run loop re-reads the current state
	// under the lock, so collapsing rapid transitions is safe.
	select {
	case p.visibleCh <- struct{}{}:
	default:
	}
}

// Stop cancels the timer. After Stop returns, the callback will not be
// invoked again.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state == stateIdle {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.state = stateIdle
	p.mu.Unlock()

	cancel()
	<-done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if p.opts.FetchOnStart {
		p.invoke(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-p.visibleCh:
			if p.isVisible() {
				if p.opts.FetchOnVisible {
					p.invoke(ctx)
				}
				// Restart the cadence from the resume point.
				ticker.Reset(p.interval)
			}

		case <-ticker.C:
			if !p.isVisible() {
				continue
			}
			p.invoke(ctx)
		}
	}
}

// invoke runs the callback synchronously in the run goroutine, so two
// invocations can never overlap; ticks that fire meanwhile collapse
// into at most one queued tick.
func (p *Poller) invoke(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.callback(ctx); err != nil {
		// A slow or failed poll surfaces as retry-next-tick, never as
		// a crash of the consumer.
		slog.Warn("Poll callback failed", "error", err)
	}
}

func (p *Poller) isVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateScheduled
}
