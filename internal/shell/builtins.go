package shell

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"gosh/internal/job"
	"gosh/internal/parser"
)

// quit terminates the shell by raising SIGQUIT at itself; the signal
// loop prints the termination notice and exits. External drivers can
// trigger the same shutdown by sending SIGQUIT directly.
func (s *Shell) quit() error {
	if err := s.kill(os.Getpid(), unix.SIGQUIT); err != nil {
		s.fatalf("quit: %v", err)
	}
	return nil
}

// listJobs renders the job table, to stdout or to the redirection
// target given on the command line.
func (s *Shell) listJobs(tok *parser.Tokens) error {
	w := s.out
	if tok.Outfile != "" {
		f, err := os.OpenFile(tok.Outfile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o660)
		if err != nil {
			return fmt.Errorf("jobs: %w", err)
		}
		defer f.Close()
		w = f
	}
	return s.jobs.List(w)
}

// resumeJob implements bg and fg: resolve the job, require it to be
// Stopped, continue its process group and move it to the target state.
// fg additionally blocks until the foreground slot clears.
func (s *Shell) resumeJob(argv []string, target job.State) error {
	name := argv[0]
	if len(argv) != 2 {
		return fmt.Errorf("%s: wrong argument count", name)
	}
	j, err := s.resolveJob(argv[1])
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if j.State != job.Stopped {
		return fmt.Errorf("%s: job [%d] (%d) is already running", name, j.JID, j.PID)
	}

	// Continue the whole process group. A delivery failure here means
	// the job died under us and its SIGCHLD is still in flight; the
	// reaper will clean up.
	if err := s.kill(-j.PID, unix.SIGCONT); err != nil {
		slog.Debug("continue job", "pid", j.PID, "error", err)
	}
	s.jobs.SetState(j.PID, target)
	fmt.Fprintf(s.out, "[%d] (%d) %s\n", j.JID, j.PID, j.Cmdline)

	if target == job.Foreground {
		s.jobs.WaitUntilNoForeground()
	}
	return nil
}

// resolveJob accepts a %-prefixed job id or a bare pid.
func (s *Shell) resolveJob(ref string) (job.Job, error) {
	if jid, ok := strings.CutPrefix(ref, "%"); ok {
		n, err := strconv.Atoi(jid)
		if err != nil {
			return job.Job{}, fmt.Errorf("malformed job reference %q", ref)
		}
		if j, ok := s.jobs.ByJID(n); ok {
			return j, nil
		}
		return job.Job{}, job.ErrNotFound
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return job.Job{}, fmt.Errorf("malformed job reference %q", ref)
	}
	if j, ok := s.jobs.ByPID(n); ok {
		return j, nil
	}
	return job.Job{}, job.ErrNotFound
}

func (s *Shell) showHistory() error {
	if s.hist == nil {
		return nil
	}
	entries, err := s.hist.Recent(100)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	for i, e := range entries {
		fmt.Fprintf(s.out, "%d: %s\n", i+1, e.Line)
	}
	return nil
}
