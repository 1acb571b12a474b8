package subagent

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of one recorded delegation.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Execution is one recorded delegation, from acceptance through outcome.
type Execution struct {
	ID      string
	Task    Task
	Status  Status
	Started time.Time
	Ended   time.Time
	Result  string
	Err     error
}

// Duration reports elapsed wall time for the execution: zero before it
// starts, running time while in flight, and the final span once ended.
func (e Execution) Duration() time.Duration {
	switch {
	case e.Started.IsZero():
		return 0
	case e.Ended.IsZero():
		return time.Since(e.Started)
	default:
		return e.Ended.Sub(e.Started)
	}
}

// Ledger records every delegation a Runner performs. It is safe for
// concurrent use; reads return snapshots, so a caller can inspect in-flight
// fan-outs without racing the runner.
type Ledger struct {
	mu    sync.RWMutex
	execs map[string]*Execution
	order []string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{execs: make(map[string]*Execution)}
}

// begin registers a pending execution and returns its run ID.
func (l *Ledger) begin(task Task) string {
	id := uuid.NewString()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.execs[id] = &Execution{ID: id, Task: task, Status: StatusPending}
	l.order = append(l.order, id)
	return id
}

func (l *Ledger) start(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.execs[id]; ok {
		e.Status = StatusRunning
		e.Started = time.Now()
	}
}

func (l *Ledger) complete(id, result string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.execs[id]; ok {
		e.Status = StatusCompleted
		e.Ended = time.Now()
		e.Result = result
	}
}

func (l *Ledger) fail(id string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.execs[id]; ok {
		e.Status = StatusFailed
		e.Ended = time.Now()
		e.Err = err
	}
}

// Get returns a snapshot of one execution by run ID.
func (l *Ledger) Get(id string) (Execution, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.execs[id]
	if !ok {
		return Execution{}, false
	}
	return *e, true
}

// List returns snapshots of all executions in spawn order.
func (l *Ledger) List() []Execution {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Execution, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.execs[id])
	}
	return out
}
