package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPacing = time.Millisecond

// gate blocks the head of the queue so later enqueues land before the
// drain loop reaches them.
func gateTask(q *RequestQueue, gate chan struct{}) <-chan Result {
	return q.Enqueue("gate", -100, func() (interface{}, error) {
		<-gate
		return nil, nil
	})
}

func TestResultDelivery(t *testing.T) {
	q := New(testPacing)

	res := <-q.Enqueue("t1", 5, func() (interface{}, error) {
		return "value", nil
	})

	require.NoError(t, res.Err)
	assert.Equal(t, "value", res.Value)
}

func TestErrorDelivery(t *testing.T) {
	q := New(testPacing)
	boom := errors.New("upstream down")

	res := <-q.Enqueue("t1", 5, func() (interface{}, error) {
		return nil, boom
	})

	assert.ErrorIs(t, res.Err, boom)
	assert.Nil(t, res.Value)
}

func TestPriorityOrdering(t *testing.T) {
	q := New(testPacing)
	gate := make(chan struct{})
	gateDone := gateTask(q, gate)

	var mu sync.Mutex
	var order []int
	record := func(p int) Executor {
		return func() (interface{}, error) {
			mu.Lock()
			order = append(order, p)
			mu.Unlock()
			return nil, nil
		}
	}

	results := []<-chan Result{
		q.Enqueue("a", 5, record(5)),
		q.Enqueue("b", 1, record(1)),
		q.Enqueue("c", 3, record(3)),
	}

	close(gate)
	<-gateDone
	for _, r := range results {
		<-r
	}

	assert.Equal(t, []int{1, 3, 5}, order)
}

func TestFIFOWithinEqualPriority(t *testing.T) {
	q := New(testPacing)
	gate := make(chan struct{})
	gateDone := gateTask(q, gate)

	var mu sync.Mutex
	var order []string
	record := func(id string) Executor {
		return func() (interface{}, error) {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			return nil, nil
		}
	}

	results := []<-chan Result{
		q.Enqueue("first", 2, record("first")),
		q.Enqueue("second", 2, record("second")),
		q.Enqueue("third", 2, record("third")),
	}

	close(gate)
	<-gateDone
	for _, r := range results {
		<-r
	}

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestExecutionsNeverOverlap(t *testing.T) {
	q := New(testPacing)

	type span struct{ start, end time.Time }
	var mu sync.Mutex
	var spans []span

	var results []<-chan Result
	for i := 0; i < 5; i++ {
		results = append(results, q.Enqueue("", i%2, func() (interface{}, error) {
			s := span{start: time.Now()}
			time.Sleep(2 * time.Millisecond)
			s.end = time.Now()
			mu.Lock()
			spans = append(spans, s)
			mu.Unlock()
			return nil, nil
		}))
	}

	for _, r := range results {
		<-r
	}

	// Executions are recorded in completion order; each must start at
	// or after the previous one ended.
	for i := 1; i < len(spans); i++ {
		assert.False(t, spans[i].start.Before(spans[i-1].end),
			"task %d started before task %d finished", i, i-1)
	}
}

func TestDrainLoopRestartsAfterIdle(t *testing.T) {
	q := New(testPacing)

	<-q.Enqueue("t1", 1, func() (interface{}, error) { return 1, nil })

	// Queue went idle; a fresh enqueue must start a new drain loop.
	require.Eventually(t, func() bool { return !q.IsRunning() },
		time.Second, time.Millisecond)

	res := <-q.Enqueue("t2", 1, func() (interface{}, error) { return 2, nil })
	assert.Equal(t, 2, res.Value)
}

func TestGeneratedTaskID(t *testing.T) {
	q := New(testPacing)
	res := <-q.Enqueue("", 1, func() (interface{}, error) { return nil, nil })
	assert.NoError(t, res.Err)
}
