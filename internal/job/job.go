// Package job tracks the shell's child processes. The table is shared
// between the command loop and the signal-event goroutine; every method
// takes the table mutex, and Register exposes a combined start+insert
// critical section so a child can never be reaped before it is recorded.
package job

// State is the lifecycle state of a tracked job. At most one live job
// may be Foreground at any instant.
type State int

const (
	Foreground State = iota + 1
	Background
	Stopped
)

// Label returns the state name used in job listings.
func (s State) Label() string {
	switch s {
	case Foreground:
		return "Foreground"
	case Background:
		return "Running"
	case Stopped:
		return "Stopped"
	}
	return "Unknown"
}

// Job is one tracked child process. PID doubles as the job's process
// group id: the launcher places every child in its own group.
type Job struct {
	PID     int
	JID     int
	State   State
	Cmdline string
}
