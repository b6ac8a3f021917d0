package queue

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPacing is the pause between consecutive task executions.
const DefaultPacing = 100 * time.Millisecond

// Executor produces the value for one queued task.
type Executor func() (interface{}, error)

// Result is the settled outcome of a queued task.
type Result struct {
	Value interface{}
	Err   error
}

type task struct {
	id       string
	priority int
	execute  Executor
	result   chan Result
}

// RequestQueue runs tasks one at a time in ascending priority order
// (lower = more urgent), FIFO within a priority. A fixed pacing delay
// separates consecutive executions. The queue is unbounded: nothing
// pushes back on a fast producer.
type RequestQueue struct {
	mu      sync.Mutex
	tasks   []*task
	running bool
	pacing  time.Duration
}

// New creates a queue with the given inter-task pacing delay. A
// non-positive pacing falls back to DefaultPacing.
func New(pacing time.Duration) *RequestQueue {
	if pacing <= 0 {
		pacing = DefaultPacing
	}
	return &RequestQueue{pacing: pacing}
}

// Enqueue appends a task and starts the drain loop if it is idle. The
// returned channel delivers the task's settled result exactly once; it
// is buffered, so the caller may ignore it. An empty id is replaced
// with a generated one.
func (q *RequestQueue) Enqueue(id string, priority int, execute Executor) <-chan Result {
	if id == "" {
		id = uuid.NewString()
	}

	t := &task{
		id:       id,
		priority: priority,
		execute:  execute,
		result:   make(chan Result, 1),
	}

	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	sort.SliceStable(q.tasks, func(i, j int) bool {
		return q.tasks[i].priority < q.tasks[j].priority
	})
	start := !q.running
	if start {
		q.running = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
	return t.result
}

// Len returns the number of tasks waiting to execute.
func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// IsRunning reports whether a drain loop is active.
func (q *RequestQueue) IsRunning() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// drain pops and executes tasks until the queue empties. Only one
// drain loop is ever active; the running flag guards the handoff.
func (q *RequestQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		value, err := t.execute()
		t.result <- Result{Value: value, Err: err}

		time.Sleep(q.pacing)
	}
}
