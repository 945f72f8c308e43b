package dispatch

import "sync"

// Queue runs submitted tasks one at a time, in submission order, on a single
// goroutine. A suspended queue accepts tasks but holds them until every
// Suspend has been matched by a Resume.
type Queue struct {
	label     string
	mu        sync.Mutex
	cond      *sync.Cond
	tasks     []func()
	suspended int
	closed    bool
	done      chan struct{}
}

// NewQueue starts a queue's worker goroutine.
func NewQueue(label string) *Queue {
	q := &Queue{label: label, done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Label names the queue in logs.
func (q *Queue) Label() string {
	return q.label
}

// Async enqueues task. It reports false when the queue is closed.
func (q *Queue) Async(task func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, task)
	q.cond.Signal()
	return true
}

// Sync enqueues task and waits for it to finish. It reports false when the
// queue is closed, or closes while task is still held by a suspension. It must
// not be called from the queue's own goroutine.
func (q *Queue) Sync(task func()) bool {
	finished := make(chan struct{})
	if !q.Async(func() {
		defer close(finished)
		task()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-q.done:
		// The worker finishes every task it runs before exiting.
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}

// Suspend stops task execution after the currently running task.
func (q *Queue) Suspend() {
	q.mu.Lock()
	q.suspended++
	q.mu.Unlock()
}

// Resume undoes one Suspend.
func (q *Queue) Resume() {
	q.mu.Lock()
	if q.suspended > 0 {
		q.suspended--
	}
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Close stops accepting tasks, lets the pending ones run and waits for the
// worker to exit. Tasks still held by a suspension are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for (len(q.tasks) == 0 || q.suspended > 0) && !q.closed {
			q.cond.Wait()
		}
		if q.closed && (len(q.tasks) == 0 || q.suspended > 0) {
			q.tasks = nil
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()
	}
}
