package models

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// Operation statuses.
const (
	OperationRunning   = "running"
	OperationCompleted = "completed"
	OperationFailed    = "failed"
)

// Operation records one mutating call against the controller: a restart, a
// plugin install, a job move. Long ones run in the background and stream
// their log lines over the websocket endpoint.
type Operation struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"` // "restart", "plugin-install", "job-move", ...
	Target     string      `json:"target,omitempty"`
	Status     string      `json:"status"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	Error      string      `json:"error,omitempty"`
	Output     []string    `json:"output"`
	Result     interface{} `json:"result,omitempty"`

	clock clock.Clock
	done  chan struct{}
	mu    sync.Mutex
}

// AppendLog adds a log line to the operation output.
func (o *Operation) AppendLog(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Output = append(o.Output, line)
}

// LogsSince returns log lines starting from the given index.
func (o *Operation) LogsSince(offset int) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if offset >= len(o.Output) {
		return nil
	}
	lines := make([]string, len(o.Output)-offset)
	copy(lines, o.Output[offset:])
	return lines
}

// Complete marks the operation as completed with an optional result.
func (o *Operation) Complete(result interface{}) {
	o.finish(OperationCompleted, "", result)
}

// Fail marks the operation as failed. The result is kept when a partial
// outcome is worth reporting (a move whose delete step failed).
func (o *Operation) Fail(err error, result interface{}) {
	o.finish(OperationFailed, err.Error(), result)
}

func (o *Operation) finish(status, errMsg string, result interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.FinishedAt != nil {
		return
	}
	o.Status = status
	o.Error = errMsg
	o.Result = result
	now := o.clock.Now()
	o.FinishedAt = &now
	close(o.done)
}

// Done is closed once the operation completes or fails.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Snapshot returns a copy safe to serialize while the operation runs.
func (o *Operation) Snapshot() *Operation {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := &Operation{
		ID:        o.ID,
		Type:      o.Type,
		Target:    o.Target,
		Status:    o.Status,
		StartedAt: o.StartedAt,
		Error:     o.Error,
		Output:    append([]string{}, o.Output...),
		Result:    o.Result,
	}
	if o.FinishedAt != nil {
		f := *o.FinishedAt
		out.FinishedAt = &f
	}
	return out
}

// OperationStore is an in-memory thread-safe journal of operations.
type OperationStore struct {
	clock clock.Clock
	mu    sync.RWMutex
	ops   map[string]*Operation
}

// NewOperationStore creates an empty store. A nil clock uses the wall clock.
func NewOperationStore(c clock.Clock) *OperationStore {
	if c == nil {
		c = clock.New()
	}
	return &OperationStore{clock: c, ops: make(map[string]*Operation)}
}

// Create adds a running operation, assigning it a UUID.
func (s *OperationStore) Create(opType, target string) *Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &Operation{
		ID:        uuid.New().String(),
		Type:      opType,
		Target:    target,
		Status:    OperationRunning,
		StartedAt: s.clock.Now(),
		Output:    []string{},
		clock:     s.clock,
		done:      make(chan struct{}),
	}
	s.ops[o.ID] = o
	return o
}

// Get returns an operation by ID, or nil.
func (s *OperationStore) Get(id string) *Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops[id]
}

// List returns all operations, most recent first.
func (s *OperationStore) List() []*Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Operation, 0, len(s.ops))
	for _, o := range s.ops {
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	return result
}
