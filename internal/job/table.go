package job

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// DefaultCapacity bounds the number of concurrently tracked jobs.
const DefaultCapacity = 16

var (
	// ErrFull is returned when every slot is occupied.
	ErrFull = errors.New("too many jobs")
	// ErrNotFound is returned by lookups that match no live job.
	ErrNotFound = errors.New("no such job")
)

// Table is a fixed-capacity registry of live jobs. A slot with PID 0 is
// empty. Job ids come from a monotonically increasing counter that wraps
// past the capacity ceiling and is recomputed to max(live)+1 whenever a
// job is removed.
type Table struct {
	mu      sync.Mutex
	cond    *sync.Cond
	slots   []Job
	nextJID int
}

// NewTable returns an empty table with the given capacity; a
// non-positive capacity falls back to DefaultCapacity.
func NewTable(capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	t := &Table{
		slots:   make([]Job, capacity),
		nextJID: 1,
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Capacity returns the fixed number of slots.
func (t *Table) Capacity() int {
	return len(t.slots)
}

// Add records a new job in the first empty slot and assigns it the next
// job id. It rejects non-positive pids and returns ErrFull when no slot
// is free.
func (t *Table) Add(pid int, state State, cmdline string) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addLocked(pid, state, cmdline)
}

func (t *Table) addLocked(pid int, state State, cmdline string) (Job, error) {
	if pid < 1 {
		return Job{}, fmt.Errorf("add job: invalid pid %d", pid)
	}
	i := t.freeSlotLocked()
	if i < 0 {
		return Job{}, ErrFull
	}
	t.slots[i] = Job{
		PID:     pid,
		JID:     t.nextJID,
		State:   state,
		Cmdline: cmdline,
	}
	t.nextJID++
	if t.nextJID > len(t.slots) {
		t.nextJID = 1
	}
	return t.slots[i], nil
}

func (t *Table) freeSlotLocked() int {
	for i := range t.slots {
		if t.slots[i].PID == 0 {
			return i
		}
	}
	return -1
}

// Register runs start and records the resulting pid under a single
// critical section. Callers on the signal-event goroutine that look up
// a pid therefore always see the child either unstarted or fully
// registered, never in between. The slot is reserved up front so a
// child is never started when it could not be tracked.
func (t *Table) Register(state State, cmdline string, start func() (int, error)) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.freeSlotLocked() < 0 {
		return Job{}, ErrFull
	}
	pid, err := start()
	if err != nil {
		return Job{}, err
	}
	return t.addLocked(pid, state, cmdline)
}

// Remove clears the slot holding pid and recomputes the next job id as
// max(live)+1. It returns ErrNotFound when pid is not tracked.
func (t *Table) Remove(pid int) error {
	if pid < 1 {
		return ErrNotFound
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		if t.slots[i].PID == pid {
			t.slots[i] = Job{}
			t.nextJID = t.maxJIDLocked() + 1
			t.cond.Broadcast()
			return nil
		}
	}
	return ErrNotFound
}

func (t *Table) maxJIDLocked() int {
	max := 0
	for i := range t.slots {
		if t.slots[i].JID > max {
			max = t.slots[i].JID
		}
	}
	return max
}

// ByPID returns a snapshot of the job with the given pid.
func (t *Table) ByPID(pid int) (Job, bool) {
	if pid < 1 {
		return Job{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		if t.slots[i].PID == pid {
			return t.slots[i], true
		}
	}
	return Job{}, false
}

// ByJID returns a snapshot of the job with the given job id.
func (t *Table) ByJID(jid int) (Job, bool) {
	if jid < 1 {
		return Job{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		if t.slots[i].JID == jid {
			return t.slots[i], true
		}
	}
	return Job{}, false
}

// SetState updates the state of the job with the given pid and reports
// whether it was found. Waiters are woken so a cleared foreground slot
// is observed immediately.
func (t *Table) SetState(pid int, state State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		if t.slots[i].PID == pid {
			t.slots[i].State = state
			t.cond.Broadcast()
			return true
		}
	}
	return false
}

// ForegroundPID returns the pid of the foreground job, or 0 when no job
// holds the foreground slot.
func (t *Table) ForegroundPID() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.foregroundPIDLocked()
}

func (t *Table) foregroundPIDLocked() int {
	for i := range t.slots {
		if t.slots[i].State == Foreground {
			return t.slots[i].PID
		}
	}
	return 0
}

// WaitUntilNoForeground blocks the caller until no job is in the
// Foreground state. The reaper and the resume builtins wake it whenever
// a job changes state or leaves the table.
func (t *Table) WaitUntilNoForeground() {
	t.mu.Lock()
	for t.foregroundPIDLocked() != 0 {
		t.cond.Wait()
	}
	t.mu.Unlock()
}

// List writes every live job to w in slot order.
func (t *Table) List(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		if t.slots[i].PID == 0 {
			continue
		}
		j := &t.slots[i]
		if _, err := fmt.Fprintf(w, "[%d] (%d) %-10s %s\n", j.JID, j.PID, j.State.Label(), j.Cmdline); err != nil {
			return fmt.Errorf("list jobs: %w", err)
		}
	}
	return nil
}
