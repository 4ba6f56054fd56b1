package shell

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// handleSignals is the single dispatch point for asynchronous events.
// OS signals arrive as values on sigChan; each case is a short
// transition that reads or mutates the job table under its lock.
func (s *Shell) handleSignals() {
	for sig := range s.sigChan {
		switch sig {
		case unix.SIGINT:
			if err := s.forwardToForeground(unix.SIGINT); err != nil {
				s.fatalf("forward SIGINT: %v", err)
			}
		case unix.SIGTSTP:
			if err := s.forwardToForeground(unix.SIGTSTP); err != nil {
				s.fatalf("forward SIGTSTP: %v", err)
			}
		case unix.SIGCHLD:
			if err := s.reapChildren(); err != nil {
				s.fatalf("%v", err)
			}
		case unix.SIGQUIT:
			fmt.Fprintln(s.out, "Terminating after receipt of SIGQUIT signal")
			s.exit(1)
		}
	}
}

// forwardToForeground relays a keyboard-generated signal to the
// foreground job's whole process group (pid negated), so a job that
// forked its own children is fully interrupted or suspended. No
// foreground job means nothing to do. State is not touched here: the
// transition is applied by the reaper once the kernel confirms it.
func (s *Shell) forwardToForeground(sig unix.Signal) error {
	pid := s.jobs.ForegroundPID()
	if pid == 0 {
		return nil
	}
	if err := s.kill(-pid, sig); err != nil {
		return fmt.Errorf("signal %d to group %d: %w", sig, pid, err)
	}
	return nil
}
