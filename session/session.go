// Package session runs a vmap.Mapper on a single goroutine.
//
// Input events, remote commands and animation ticks are serialized through
// Run. Readers on other goroutines use Snapshot, which is republished after
// every change.
package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gogpu/vmap"
)

// ErrClosed is returned by Post and Do once Run has returned.
var ErrClosed = errors.New("session: closed")

// DefaultTickInterval is used when no interval is configured.
const DefaultTickInterval = time.Second / 60

type call struct {
	fn   func(*vmap.Mapper) error
	done chan error
}

// Session serializes access to a Mapper.
type Session struct {
	m      *vmap.Mapper
	tick   time.Duration
	events chan vmap.Event
	calls  chan call
	closed chan struct{}

	snap    atomic.Pointer[vmap.Snapshot]
	version atomic.Uint64
}

// New wraps m. The Session owns m from now on; callers must not touch it
// except through Do.
func New(m *vmap.Mapper, tick time.Duration) *Session {
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	s := &Session{
		m:      m,
		tick:   tick,
		events: make(chan vmap.Event, 256),
		calls:  make(chan call),
		closed: make(chan struct{}),
	}
	s.publish()
	return s
}

// Run processes events, calls and ticks until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.closed)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.m.HandleEvent(ev)
			s.publish()
		case c := <-s.calls:
			s.drain()
			err := c.fn(s.m)
			s.publish()
			c.done <- err
		case <-ticker.C:
			if s.m.Tick() {
				s.publish()
			}
		}
	}
}

// Post queues an input event. It blocks while the queue is full.
func (s *Session) Post(ctx context.Context, ev vmap.Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the session goroutine and returns its error. Events posted
// before Do are handled before fn runs.
func (s *Session) Do(ctx context.Context, fn func(*vmap.Mapper) error) error {
	c := call{fn: fn, done: make(chan error, 1)}
	select {
	case s.calls <- c:
	case <-s.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the latest published state.
func (s *Session) Snapshot() *vmap.Snapshot { return s.snap.Load() }

// Version increases every time a new snapshot is published.
func (s *Session) Version() uint64 { return s.version.Load() }

func (s *Session) drain() {
	for {
		select {
		case ev := <-s.events:
			s.m.HandleEvent(ev)
		default:
			return
		}
	}
}

func (s *Session) publish() {
	s.snap.Store(s.m.Snapshot())
	s.version.Add(1)
}
