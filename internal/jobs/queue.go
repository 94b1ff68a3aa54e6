package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"whisper-batch/internal/domain"
)

// ErrTaskNotFound is returned when an id is not present in the queue.
var ErrTaskNotFound = errors.New("task not found")

// ErrTaskNotPending is returned when editing a task that already left Pending.
var ErrTaskNotPending = errors.New("task is not pending")

// Progress is a snapshot of the run counters.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Percent returns completed/total*100, or 0 when total is 0.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Queue keeps every accepted task in insertion order for display plus a FIFO
// of pending ids for the worker. One lock guards tasks and counters.
type Queue struct {
	mu        sync.Mutex
	tasks     []domain.AudioTask
	index     map[string]int
	pending   []string
	total     int
	completed int
	notify    chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		index:  make(map[string]int),
		notify: make(chan struct{}, 1),
	}
}

// Enqueue appends a pending task and returns the counter snapshot. Tasks that
// are not Pending or whose id is already queued are ignored.
func (q *Queue) Enqueue(task domain.AudioTask) (domain.AudioTask, Progress, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if task.Status != domain.TaskStatusPending {
		return task, q.progressLocked(), false
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if i, ok := q.index[task.ID]; ok && !q.tasks[i].Status.IsTerminal() {
		return q.tasks[i], q.progressLocked(), false
	}

	q.storeLocked(task)
	q.pending = append(q.pending, task.ID)
	q.total++
	q.signal()
	return task, q.progressLocked(), true
}

// Record stores a task for display without queuing it. Used for files
// rejected at submit time.
func (q *Queue) Record(task domain.AudioTask) domain.AudioTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	q.storeLocked(task)
	return task
}

// Dequeue waits up to timeout for the next pending task.
func (q *Queue) Dequeue(timeout time.Duration) (domain.AudioTask, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			id := q.pending[0]
			q.pending = q.pending[1:]
			task := q.tasks[q.index[id]]
			q.mu.Unlock()
			return task, true
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-deadline.C:
			return domain.AudioTask{}, false
		}
	}
}

// Requeue puts a dequeued task back at the head of the pending FIFO.
func (q *Queue) Requeue(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.index[id]; !ok {
		return
	}
	q.pending = append([]string{id}, q.pending...)
	q.signal()
}

// MarkCompleted increments the completed counter and returns the percentage.
func (q *Queue) MarkCompleted() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.completed < q.total {
		q.completed++
	}
	return q.progressLocked().Percent()
}

// SetStatus updates the visible status of one task.
func (q *Queue) SetStatus(id string, status domain.TaskStatus, message, outputPath string) (domain.AudioTask, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i, ok := q.index[id]
	if !ok {
		return domain.AudioTask{}, ErrTaskNotFound
	}
	q.tasks[i].Status = status
	q.tasks[i].Message = message
	q.tasks[i].OutputPath = outputPath
	return q.tasks[i], nil
}

// Task returns one task by id.
func (q *Queue) Task(id string) (domain.AudioTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i, ok := q.index[id]
	if !ok {
		return domain.AudioTask{}, false
	}
	return q.tasks[i], true
}

// Tasks returns a copy of every known task in display order.
func (q *Queue) Tasks() []domain.AudioTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.AudioTask(nil), q.tasks...)
}

// PendingTasks returns tasks waiting in the FIFO, in processing order.
func (q *Queue) PendingTasks() []domain.AudioTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	return lo.Map(q.pending, func(id string, _ int) domain.AudioTask {
		return q.tasks[q.index[id]]
	})
}

// PendingCount returns the FIFO length.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Progress returns the current counter snapshot.
func (q *Queue) Progress() Progress {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.progressLocked()
}

// BeginRun sizes the counters for a fresh run from the pending FIFO.
func (q *Queue) BeginRun() Progress {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.total = len(q.pending)
	q.completed = 0
	return q.progressLocked()
}

// ResetCounters zeroes both counters after a run ends.
func (q *Queue) ResetCounters() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.total = 0
	q.completed = 0
}

// Remove drops a pending task from both the FIFO and the display list.
func (q *Queue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	i, ok := q.index[id]
	if !ok {
		return ErrTaskNotFound
	}
	if q.tasks[i].Status == domain.TaskStatusPending {
		if !lo.Contains(q.pending, id) {
			return ErrTaskNotPending
		}
		q.pending = lo.Without(q.pending, id)
		if q.total > 0 {
			q.total--
		}
	} else if !q.tasks[i].Status.IsTerminal() {
		return ErrTaskNotPending
	}

	q.tasks = append(q.tasks[:i], q.tasks[i+1:]...)
	q.reindexLocked()
	return nil
}

// Move reorders a pending task to position index within the pending FIFO.
func (q *Queue) Move(id string, index int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pos := lo.IndexOf(q.pending, id)
	if pos < 0 {
		if _, ok := q.index[id]; ok {
			return ErrTaskNotPending
		}
		return ErrTaskNotFound
	}

	rest := append(append([]string(nil), q.pending[:pos]...), q.pending[pos+1:]...)
	index = lo.Clamp(index, 0, len(rest))
	q.pending = append(rest[:index], append([]string{id}, rest[index:]...)...)
	return nil
}

// Update changes the model and timestamp flag of a task still waiting in the FIFO.
func (q *Queue) Update(id string, model domain.ModelID, includeTimestamps bool) (domain.AudioTask, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i, ok := q.index[id]
	if !ok {
		return domain.AudioTask{}, ErrTaskNotFound
	}
	if !lo.Contains(q.pending, id) {
		return q.tasks[i], ErrTaskNotPending
	}
	q.tasks[i].Model = model
	q.tasks[i].IncludeTimestamps = includeTimestamps
	return q.tasks[i], nil
}

// ClearFinished drops terminal tasks from the display list.
func (q *Queue) ClearFinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	before := len(q.tasks)
	q.tasks = lo.Reject(q.tasks, func(task domain.AudioTask, _ int) bool {
		return task.Status.IsTerminal()
	})
	q.reindexLocked()
	return before - len(q.tasks)
}

func (q *Queue) storeLocked(task domain.AudioTask) {
	if i, ok := q.index[task.ID]; ok {
		q.tasks[i] = task
		return
	}
	q.index[task.ID] = len(q.tasks)
	q.tasks = append(q.tasks, task)
}

func (q *Queue) reindexLocked() {
	q.index = make(map[string]int, len(q.tasks))
	for i, task := range q.tasks {
		q.index[task.ID] = i
	}
}

func (q *Queue) progressLocked() Progress {
	return Progress{Total: q.total, Completed: q.completed}
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
