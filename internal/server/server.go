// Package server runs the compositor event loop: one goroutine owns the
// seat, the input method helper and every protocol object, and applies
// steps to them in order.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/wayime/internal/ime"
	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/scenario"
	"github.com/bnema/wayime/internal/seat"
	"github.com/bnema/wayime/internal/transcript"
)

// ErrStopped is returned for work posted to a server whose loop has
// exited.
var ErrStopped = errors.New("server stopped")

// Options configure a server.
type Options struct {
	Seat string
	// Sink receives the keys that reach the seat's default grab.
	Sink seat.KeySink
}

// Server owns one seat and everything attached to it.
type Server struct {
	seat    *seat.Seat
	helper  *ime.Helper
	out     *transcript.Transcript
	objects *objects
	sink    seat.KeySink

	queue   chan func()
	stopped chan struct{}
	stop    sync.Once
}

// New creates a server. The loop does not run until Run is called; until
// then Apply and Replay may be called directly.
func New(opts Options) *Server {
	if opts.Seat == "" {
		opts.Seat = "seat0"
	}

	out := transcript.New()
	st := seat.New(opts.Seat, out)
	if opts.Sink != nil {
		st.SetKeySink(opts.Sink)
	}

	return &Server{
		seat:    st,
		helper:  ime.NewHelper(st),
		out:     out,
		objects: newObjects(),
		sink:    opts.Sink,
		queue:   make(chan func(), 64),
		stopped: make(chan struct{}),
	}
}

func (s *Server) Seat() *seat.Seat {
	return s.seat
}

func (s *Server) Helper() *ime.Helper {
	return s.helper
}

func (s *Server) Transcript() *transcript.Transcript {
	return s.out
}

// Replay applies every step of sc. The first failing step stops the
// replay; its error carries the step index.
func (s *Server) Replay(sc *scenario.Scenario) error {
	for i, step := range sc.Steps {
		if err := s.Apply(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step, err)
		}
		logger.Debug("Step applied", "index", i, "step", step)
	}
	return nil
}

// Run drains posted work until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	defer s.stop.Do(func() { close(s.stopped) })

	logger.Info("Event loop started", "seat", s.seat.Name())
	for {
		select {
		case <-ctx.Done():
			logger.Info("Event loop stopped", "seat", s.seat.Name())
			return nil
		case fn := <-s.queue:
			fn()
		}
	}
}

// Do runs fn on the event loop and waits for it to finish.
func (s *Server) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	work := func() {
		defer close(done)
		fn()
	}

	select {
	case s.queue <- work:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Step applies step on the event loop and returns the events it
// produced.
func (s *Server) Step(ctx context.Context, step scenario.Step) ([]transcript.Entry, error) {
	var (
		entries []transcript.Entry
		err     error
	)
	doErr := s.Do(ctx, func() {
		mark := s.out.Len()
		err = s.Apply(step)
		entries = s.out.Since(mark)
	})
	if doErr != nil {
		return nil, doErr
	}
	return entries, err
}

// Status is a summary of a server's state.
type Status struct {
	ime.Snapshot
	Objects     map[string]int
	Transcript  int
	KeyboardIDs []string
}

// Status collects the server's state on the event loop.
func (s *Server) Status(ctx context.Context) (Status, error) {
	var st Status
	err := s.Do(ctx, func() { st = s.status() })
	return st, err
}

func (s *Server) status() Status {
	return Status{
		Snapshot:    s.helper.Snapshot(),
		Objects:     s.objects.counts(),
		Transcript:  s.out.Len(),
		KeyboardIDs: s.objects.ids(kindKeyboard),
	}
}

// ReleaseGrab ends the active keyboard grab on behalf of its input
// method. It reports whether there was one.
func (s *Server) ReleaseGrab() bool {
	grab, ok := s.helper.ActiveKeyboardGrab().(interface{ Release() })
	if !ok {
		return false
	}
	grab.Release()
	return true
}

// Close stops following the seat and closes the key sink.
func (s *Server) Close() error {
	s.helper.Close()
	if s.sink != nil {
		return s.sink.Close()
	}
	return nil
}
