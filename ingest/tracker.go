package ingest

import (
	"time"

	"github.com/patrickmn/go-cache"
)

type TaskState string

const (
	TaskStateQueued    TaskState = "queued"
	TaskStateRunning   TaskState = "running"
	TaskStateSucceeded TaskState = "succeeded"
	TaskStateFailed    TaskState = "failed"
)

func (s TaskState) Active() bool {
	return s == TaskStateQueued || s == TaskStateRunning
}

type Task struct {
	ContentID  string     `json:"content_id"`
	State      TaskState  `json:"state"`
	Error      string     `json:"error,omitempty"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// DefaultActiveTTL bounds how long a queued or running entry is kept. A task
// dequeued by another process never reports back here.
const DefaultActiveTTL = 30 * time.Minute

// Tracker keeps the state of recent ingestion tasks in this process.
// Finished tasks expire after the retention period, active ones after the
// active TTL.
type Tracker struct {
	tasks     *cache.Cache
	activeTTL time.Duration
	now       func() time.Time
}

type TrackerOption func(*Tracker)

func WithActiveTTL(ttl time.Duration) TrackerOption {
	return func(t *Tracker) {
		if ttl > 0 {
			t.activeTTL = ttl
		}
	}
}

func NewTracker(retention time.Duration, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		tasks:     cache.New(retention, retention),
		activeTTL: DefaultActiveTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Queued(contentID string) {
	t.tasks.Set(contentID, Task{
		ContentID:  contentID,
		State:      TaskStateQueued,
		EnqueuedAt: t.now(),
	}, t.activeTTL)
}

func (t *Tracker) Running(contentID string) {
	task := t.get(contentID)
	now := t.now()
	task.State = TaskStateRunning
	task.StartedAt = &now
	t.tasks.Set(contentID, task, t.activeTTL)
}

func (t *Tracker) Finished(contentID string, err error) {
	task := t.get(contentID)
	now := t.now()
	task.FinishedAt = &now
	if err != nil {
		task.State = TaskStateFailed
		task.Error = err.Error()
	} else {
		task.State = TaskStateSucceeded
		task.Error = ""
	}
	t.tasks.Set(contentID, task, cache.DefaultExpiration)
}

func (t *Tracker) Get(contentID string) (Task, bool) {
	v, ok := t.tasks.Get(contentID)
	if !ok {
		return Task{}, false
	}
	return v.(Task), true
}

// Active reports whether the content is queued or running.
func (t *Tracker) Active(contentID string) bool {
	task, ok := t.Get(contentID)
	return ok && task.State.Active()
}

func (t *Tracker) get(contentID string) Task {
	if task, ok := t.Get(contentID); ok {
		return task
	}
	return Task{ContentID: contentID, EnqueuedAt: t.now()}
}
