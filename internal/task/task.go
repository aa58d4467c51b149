// Package task runs units of work as a tree of weighted, cancellable tasks.
//
// A root task is started with Submit and observed through its Handle. Inside
// a task, Yield runs a named child whose progress counts toward the parent in
// proportion to its weight. A cancelled child reports Cancelled and its parent
// ends Cancelled too; finished siblings keep their own state.
package task

import (
	"context"
	"errors"
	"sync"
)

// State is the lifecycle state of a task node.
type State int32

const (
	Pending State = iota
	Running
	Succeeded
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Done reports whether the state is terminal.
func (s State) Done() bool {
	return s == Succeeded || s == Failed || s == Cancelled
}

// Progress is a current/total pair with an optional unit label.
type Progress struct {
	Current int64  `json:"current"`
	Total   int64  `json:"total"`
	Unit    string `json:"unit,omitempty"`
}

// Fraction returns progress in [0, 1]. Unknown totals report 0.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Current) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// Event is delivered to subscribers whenever a node changes state or progress.
type Event struct {
	Path     string
	State    State
	Progress Progress
	Err      error
}

// Error names the task node that failed.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

type node struct {
	name   string
	path   string
	weight int64

	mu       sync.Mutex
	state    State
	current  int64
	total    int64
	unit     string
	children []*node
	err      error
}

func (n *node) progress() Progress {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.children) == 0 {
		if n.state == Succeeded && n.total <= 0 {
			return Progress{Current: 1, Total: 1, Unit: n.unit}
		}
		return Progress{Current: n.current, Total: n.total, Unit: n.unit}
	}
	var cur, total float64
	for _, c := range n.children {
		f := c.progress().Fraction()
		if c.stateOf() == Succeeded {
			f = 1
		}
		cur += f * float64(c.weight)
		total += float64(c.weight)
	}
	return Progress{Current: int64(cur), Total: int64(total), Unit: n.unit}
}

func (n *node) stateOf() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Snapshot is a read-only copy of a task tree.
type Snapshot struct {
	Name     string     `json:"name"`
	State    State      `json:"state"`
	Progress Progress   `json:"progress"`
	Err      string     `json:"error,omitempty"`
	Children []Snapshot `json:"children,omitempty"`
}

func (n *node) snapshot() Snapshot {
	p := n.progress()
	n.mu.Lock()
	s := Snapshot{Name: n.name, State: n.state, Progress: p}
	if n.err != nil {
		s.Err = n.err.Error()
	}
	children := append([]*node(nil), n.children...)
	n.mu.Unlock()
	for _, c := range children {
		s.Children = append(s.Children, c.snapshot())
	}
	return s
}

type hub struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func (h *hub) subscribe(fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

func (h *hub) publish(e Event) {
	h.mu.Lock()
	fns := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}

// Context is handed to a running task. It carries cancellation and lets the
// task report progress.
type Context struct {
	context.Context
	n   *node
	hub *hub
}

// Name returns the task's slash separated path.
func (c *Context) Name() string {
	return c.n.path
}

// Update sets the task's own progress.
func (c *Context) Update(current, total int64) {
	c.n.mu.Lock()
	c.n.current, c.n.total = current, total
	c.n.mu.Unlock()
	c.hub.publish(Event{Path: c.n.path, State: Running, Progress: c.n.progress()})
}

// Add advances the task's own progress by delta.
func (c *Context) Add(delta int64) {
	c.n.mu.Lock()
	c.n.current += delta
	c.n.mu.Unlock()
	c.hub.publish(Event{Path: c.n.path, State: Running, Progress: c.n.progress()})
}

// SetUnit labels the task's progress, e.g. "bytes" or "files".
func (c *Context) SetUnit(unit string) {
	c.n.mu.Lock()
	c.n.unit = unit
	c.n.mu.Unlock()
}

// Func is the body of a task.
type Func[T any] func(c *Context) (T, error)

func (c *Context) transition(s State, err error) {
	c.n.mu.Lock()
	c.n.state = s
	c.n.err = err
	c.n.mu.Unlock()
	c.hub.publish(Event{Path: c.n.path, State: s, Progress: c.n.progress(), Err: err})
}

func execute[T any](c *Context, fn Func[T]) (T, error) {
	c.transition(Running, nil)
	v, err := fn(c)
	switch {
	case err == nil:
		c.transition(Succeeded, nil)
	case errors.Is(err, context.Canceled) || c.Err() != nil:
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(err, context.Canceled)
		}
		c.transition(Cancelled, err)
	default:
		c.transition(Failed, err)
	}
	return v, err
}

// Yield runs fn as a child of c and waits for it. Weight sets the child's
// share of the parent's progress; values below 1 count as 1. Child failures
// are wrapped in *Error naming the deepest failing node.
func Yield[T any](c *Context, name string, weight int64, fn Func[T]) (T, error) {
	if weight < 1 {
		weight = 1
	}
	child := &node{name: name, path: c.n.path + "/" + name, weight: weight}
	c.n.mu.Lock()
	c.n.children = append(c.n.children, child)
	c.n.mu.Unlock()

	cc := &Context{Context: c.Context, n: child, hub: c.hub}
	if err := c.Err(); err != nil {
		var zero T
		cc.transition(Cancelled, err)
		return zero, err
	}
	v, err := execute(cc, fn)
	if err != nil {
		var te *Error
		if !errors.As(err, &te) {
			err = &Error{Path: child.path, Err: err}
		}
	}
	return v, err
}

// Handle observes and controls a submitted root task.
type Handle[T any] struct {
	root   *node
	hub    *hub
	cancel context.CancelFunc
	done   chan struct{}
	val    T
	err    error
}

// Submit starts fn as a root task on its own goroutine.
func Submit[T any](ctx context.Context, name string, fn Func[T]) *Handle[T] {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle[T]{
		root:   &node{name: name, path: name, weight: 1},
		hub:    &hub{subs: make(map[int]func(Event))},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c := &Context{Context: ctx, n: h.root, hub: h.hub}
	go func() {
		defer close(h.done)
		defer cancel()
		h.val, h.err = execute(c, fn)
	}()
	return h
}

// Run submits fn and waits for it.
func Run[T any](ctx context.Context, name string, fn Func[T]) (T, error) {
	return Submit(ctx, name, fn).Wait(context.Background())
}

// Wait blocks until the task finishes or ctx is done. A done ctx does not
// cancel the task.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.val, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed when the task reaches a terminal state.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Cancel requests cooperative cancellation of the whole tree.
func (h *Handle[T]) Cancel() {
	h.cancel()
}

// Subscribe registers fn for every event of the tree. Events may arrive from
// several goroutines. The returned func unsubscribes.
func (h *Handle[T]) Subscribe(fn func(Event)) func() {
	return h.hub.subscribe(fn)
}

// Name returns the root task name.
func (h *Handle[T]) Name() string {
	return h.root.name
}

// State returns the root state.
func (h *Handle[T]) State() State {
	return h.root.stateOf()
}

// Progress returns the weighted progress of the root.
func (h *Handle[T]) Progress() Progress {
	return h.root.progress()
}

// Snapshot copies the current tree.
func (h *Handle[T]) Snapshot() Snapshot {
	return h.root.snapshot()
}

// Observer is the type-erased view of a Handle used by renderers.
type Observer interface {
	Name() string
	Done() <-chan struct{}
	Cancel()
	Subscribe(fn func(Event)) func()
	State() State
	Progress() Progress
	Snapshot() Snapshot
}

var _ Observer = (*Handle[struct{}])(nil)
