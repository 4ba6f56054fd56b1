package shell

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"gosh/internal/job"
)

// reapChildren drains every immediately available child state change.
// It never blocks on a running child: the wait is WNOHANG, and
// WUNTRACED makes stops visible as well as exits. Signals are not
// queued by the kernel, so one SIGCHLD may stand for several changes;
// draining here is what keeps the table complete.
//
// A non-nil error is unrecoverable: either the wait itself failed, or
// the table has lost track of a child it must know about.
func (s *Shell) reapChildren() error {
	for {
		var status unix.WaitStatus
		pid, err := s.wait(&status)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if errors.Is(err, unix.ECHILD) {
			// No children at all: the normal end of the drain.
			return nil
		}
		if err != nil {
			return fmt.Errorf("wait for child: %w", err)
		}
		if pid <= 0 {
			return nil
		}
		if err := s.applyChildStatus(pid, status); err != nil {
			return err
		}
	}
}

// applyChildStatus is the reaper's transition function: given one
// reaped (pid, status) pair it updates the job table. It is pure with
// respect to the OS, which lets tests drive it with synthetic wait
// statuses.
func (s *Shell) applyChildStatus(pid int, status unix.WaitStatus) error {
	j, ok := s.jobs.ByPID(pid)
	if !ok {
		// Every reaped pid must have been registered; anything else is
		// a bookkeeping defect.
		return fmt.Errorf("reaped unknown child pid %d", pid)
	}

	switch {
	case status.Exited():
		slog.Debug("deleted job", "jid", j.JID, "pid", j.PID, "cmdline", j.Cmdline)
		return s.jobs.Remove(pid)
	case status.Stopped():
		s.jobs.SetState(pid, job.Stopped)
		fmt.Fprintf(s.out, "Job [%d] (%d) stopped by signal %d\n", j.JID, j.PID, int(status.StopSignal()))
		return nil
	case status.Signaled():
		fmt.Fprintf(s.out, "Job [%d] (%d) terminated by signal %d\n", j.JID, j.PID, int(status.Signal()))
		return s.jobs.Remove(pid)
	}
	return nil
}
