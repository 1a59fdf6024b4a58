// Package loop runs a frame function at a throttled cadence on top of host
// refresh opportunities.
//
// The host calls Tick whenever it could present a frame. A frame runs only when
// the interval since the previous frame has elapsed; the next deadline is armed
// before the frame runs, so a slow frame does not push the schedule back.
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between frames.
const DefaultInterval = 100 * time.Millisecond

var (
	ErrRunning = errors.New("loop: already started")
	ErrStopped = errors.New("loop: stopped")
)

type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FrameFunc renders one frame. A non-nil error stops the loop.
type FrameFunc func(now time.Time) error

type Loop struct {
	interval time.Duration
	frame    FrameFunc

	mu     sync.Mutex
	state  State
	next   time.Time
	frames uint64
	err    error
	done   chan struct{}
}

// New returns an idle loop. A non-positive interval means DefaultInterval.
func New(interval time.Duration, frame FrameFunc) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{interval: interval, frame: frame, done: make(chan struct{})}
}

func (l *Loop) Interval() time.Duration { return l.interval }

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Frames reports how many frames completed without error.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Err returns the frame error that stopped the loop, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Done is closed once the loop stops.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Start moves the loop to Running. The first Tick at or after now runs a frame.
func (l *Loop) Start(now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case Running:
		return ErrRunning
	case Stopped:
		return ErrStopped
	}
	l.state = Running
	l.next = now
	return nil
}

// Stop moves the loop to Stopped. It is safe to call from any goroutine and
// more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked(nil)
}

func (l *Loop) stopLocked(err error) {
	if l.state == Stopped {
		return
	}
	l.state = Stopped
	l.err = err
	close(l.done)
}

// Tick offers the loop a refresh opportunity at now. It reports whether a
// frame ran. Ticks on a loop that is not running are ignored.
func (l *Loop) Tick(now time.Time) (bool, error) {
	l.mu.Lock()
	if l.state != Running || now.Before(l.next) {
		l.mu.Unlock()
		return false, nil
	}
	l.next = now.Add(l.interval)
	seq := l.frames
	l.mu.Unlock()

	if err := l.frame(now); err != nil {
		err = fmt.Errorf("loop: frame %d: %w", seq, err)
		l.mu.Lock()
		l.stopLocked(err)
		l.mu.Unlock()
		return true, err
	}

	l.mu.Lock()
	l.frames++
	l.mu.Unlock()
	return true, nil
}

// Run starts the loop if it is idle and ticks it on every value received from
// refresh. It returns nil when the loop is stopped or refresh is closed, the
// context error on cancellation, and the frame error if a frame fails.
func (l *Loop) Run(ctx context.Context, refresh <-chan time.Time) error {
	if l.State() == Idle {
		if err := l.Start(time.Now()); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return l.Err()
		case now, ok := <-refresh:
			if !ok {
				l.Stop()
				return nil
			}
			if _, err := l.Tick(now); err != nil {
				return err
			}
		}
	}
}
