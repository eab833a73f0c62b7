package guing

import "github.com/sasha-s/go-deadlock"

// RenderTask is a unit of work that must run on the render thread, such as
// a texture upload or deallocation. Advance is called once per frame with
// the elapsed time and returns false when the task is finished.
type RenderTask interface {
	Advance(deltaMillis int64) bool
}

// RenderTaskFunc adapts a function to the RenderTask interface.
type RenderTaskFunc func(deltaMillis int64) bool

// Advance calls f.
func (f RenderTaskFunc) Advance(deltaMillis int64) bool { return f(deltaMillis) }

// OneShot wraps fn in a task that runs exactly once.
func OneShot(fn func()) RenderTask {
	return RenderTaskFunc(func(int64) bool {
		fn()
		return false
	})
}

// TaskQueue funnels GPU-affecting work onto the render thread. Submit may be
// called from any goroutine; Run must only be called from the render thread.
type TaskQueue struct {
	mu      deadlock.Mutex
	pending []RenderTask
	active  []RenderTask
}

// Submit schedules t. Tasks start on the next Run in submission order.
func (q *TaskQueue) Submit(t RenderTask) {
	if t == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, t)
	q.mu.Unlock()
}

// Run advances every active task once, in submission order, and drops the
// ones that finished. Tasks submitted while Run executes wait for the next
// frame.
func (q *TaskQueue) Run(deltaMillis int64) {
	q.mu.Lock()
	q.active = append(q.active, q.pending...)
	clear(q.pending)
	q.pending = q.pending[:0]
	q.mu.Unlock()

	kept := q.active[:0]
	for _, t := range q.active {
		if t.Advance(deltaMillis) {
			kept = append(kept, t)
		}
	}
	clear(q.active[len(kept):])
	q.active = kept
}

// Len reports the number of tasks that are pending or active.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) + len(q.active)
}
