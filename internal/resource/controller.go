// Package resource holds the asynchronous state container shared by every
// resource kind: one Controller per kind tracks whether a request is in
// flight, the last classified failure and the last applied data.
//
// Overlapping requests are not serialised. Each fenced lane hands out a
// monotonically increasing sequence number per request and a response is
// applied only when its number is newer than the one last applied on that
// lane, so a slow stale response can never overwrite a fresher one.
package resource

import (
	"context"
	"sync"

	errx "github.com/triptrop/client/internal/core/error"
	logx "github.com/triptrop/client/pkg/logger"
)

// Status is the request activity of a controller.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
)

// State is an immutable snapshot of a controller.
type State[T any] struct {
	Status Status
	Data   T
	Err    *errx.Error
	// Version increases on every change; subscribers can drop snapshots
	// older than one they already rendered.
	Version uint64
}

// Loading reports whether a request that may still change the state is in flight.
func (s State[T]) Loading() bool { return s.Status == StatusLoading }

// Failed reports whether the last applied operation failed.
func (s State[T]) Failed() bool { return s.Err != nil }

// Lane identifies an independently fenced part of a controller's data.
type Lane uint8

const (
	// Unfenced operations apply on success regardless of any fence and never
	// advance one.
	Unfenced Lane = iota
	// Primary is the lane Run uses.
	Primary
)

// Op is a remote operation wrapped by a controller.
type Op[V any] func(ctx context.Context) (V, error)

// Controller is the per-kind state container. The zero value is not usable;
// call New.
type Controller[T any] struct {
	name string

	mu          sync.Mutex
	data        T
	err         *errx.Error
	errSeq      uint64
	seq         uint64
	applied     map[Lane]uint64
	outstanding map[uint64]Lane
	version     uint64
	subs        map[int]func(State[T])
	nextSub     int
}

// New returns an idle controller holding initial as its data.
func New[T any](name string, initial T) *Controller[T] {
	return &Controller[T]{
		name:        name,
		data:        initial,
		applied:     make(map[Lane]uint64),
		outstanding: make(map[uint64]Lane),
		subs:        make(map[int]func(State[T])),
	}
}

// Name returns the resource kind the controller was created for.
func (c *Controller[T]) Name() string { return c.name }

// Snapshot returns the current state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned func removes the subscription.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Run executes op on the primary lane and on success replaces the data with
// its result. A failure keeps the previous data and is returned classified.
func (c *Controller[T]) Run(ctx context.Context, op Op[T]) (T, error) {
	v, _, err := c.RunApplied(ctx, op)
	return v, err
}

// RunApplied is Run that also reports whether the response was applied. It
// is false when a newer primary-lane request superseded this one.
func (c *Controller[T]) RunApplied(ctx context.Context, op Op[T]) (T, bool, error) {
	return MutateApplied(ctx, c, Primary, op, func(_ T, v T) T { return v })
}

// Update applies fn to the data without a remote call. fn must return a new
// value rather than modify the old one in place.
func (c *Controller[T]) Update(fn func(T) T) {
	c.mu.Lock()
	c.data = fn(c.data)
	c.version++
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()
	notify(subs, snap)
}

// Mutate executes op on lane and, when the response is still current for
// that lane, folds its result into the data with apply. apply may be nil for
// operations that only report status and errors. apply must not modify the
// old value in place.
//
// A stale response changes nothing; its caller still receives the
// operation's own result and error. Callers that react to a failure beyond
// returning it must use MutateApplied and skip stale outcomes.
func Mutate[T, V any](ctx context.Context, c *Controller[T], lane Lane, op Op[V], apply func(T, V) T) (V, error) {
	v, _, err := MutateApplied(ctx, c, lane, op, apply)
	return v, err
}

// MutateApplied is Mutate that also reports whether the outcome reached the
// state. applied is false only for a stale response on a fenced lane; such a
// failure was never recorded and is not the controller's current error.
func MutateApplied[T, V any](ctx context.Context, c *Controller[T], lane Lane, op Op[V], apply func(T, V) T) (v V, applied bool, err error) {
	seq := c.begin(lane)
	v, err = op(ctx)
	var classified *errx.Error
	if err != nil {
		classified = errx.Classify(err)
	}

	c.mu.Lock()
	delete(c.outstanding, seq)
	if lane != Unfenced && seq <= c.applied[lane] {
		c.mu.Unlock()
		logx.Debug().
			Str("resource", c.name).
			Uint64("seq", seq).
			Uint8("lane", uint8(lane)).
			Bool("failed", err != nil).
			Msg("discarding stale response")
		if classified != nil {
			return v, false, classified
		}
		return v, false, nil
	}
	if lane != Unfenced {
		c.applied[lane] = seq
	}
	if classified != nil {
		c.err = classified
		c.errSeq = seq
	} else {
		if seq > c.errSeq {
			c.err = nil
		}
		if apply != nil {
			c.data = apply(c.data, v)
		}
	}
	c.version++
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	notify(subs, snap)
	if classified != nil {
		return v, true, classified
	}
	return v, true, nil
}

// Track executes op so that it shows in status and error reporting but never
// touches the data or any fence.
func Track[T, V any](ctx context.Context, c *Controller[T], op Op[V]) (V, error) {
	return Mutate[T, V](ctx, c, Unfenced, op, nil)
}

func (c *Controller[T]) begin(lane Lane) uint64 {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.outstanding[seq] = lane
	c.err = nil
	c.errSeq = seq
	c.version++
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()
	notify(subs, snap)
	return seq
}

func (c *Controller[T]) snapshotLocked() State[T] {
	return State[T]{
		Status:  c.statusLocked(),
		Data:    c.data,
		Err:     c.err,
		Version: c.version,
	}
}

func (c *Controller[T]) statusLocked() Status {
	for seq, lane := range c.outstanding {
		if lane == Unfenced || seq > c.applied[lane] {
			return StatusLoading
		}
	}
	return StatusIdle
}

func (c *Controller[T]) subscribersLocked() []func(State[T]) {
	if len(c.subs) == 0 {
		return nil
	}
	out := make([]func(State[T]), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

func notify[T any](subs []func(State[T]), s State[T]) {
	for _, fn := range subs {
		fn(s)
	}
}
