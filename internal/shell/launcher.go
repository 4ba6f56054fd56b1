package shell

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"gosh/internal/job"
	"gosh/internal/parser"
)

// runExternal launches one non-builtin command as a tracked job. The
// child is made the leader of a fresh process group so keyboard
// signals forwarded to -pid reach the job and nothing else, and so the
// terminal's own signal generation never hits it directly.
func (s *Shell) runExternal(tok *parser.Tokens, cmdline string) error {
	cmd := exec.Command(tok.Argv[0], tok.Argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Env = os.Environ()

	if tok.Infile != "" {
		f, err := os.Open(tok.Infile)
		if err != nil {
			return fmt.Errorf("%s: %w", tok.Infile, err)
		}
		defer f.Close()
		cmd.Stdin = f
	} else {
		cmd.Stdin = os.Stdin
	}
	if tok.Outfile != "" {
		f, err := os.OpenFile(tok.Outfile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o660)
		if err != nil {
			return fmt.Errorf("%s: %w", tok.Outfile, err)
		}
		defer f.Close()
		cmd.Stdout = f
	} else {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	state := job.Foreground
	if tok.Background {
		state = job.Background
	}

	// Start and registration happen in one table critical section, so
	// the reaper can never see this child before it is recorded.
	j, err := s.jobs.Register(state, cmdline, func() (int, error) {
		if err := cmd.Start(); err != nil {
			return 0, err
		}
		return cmd.Process.Pid, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, job.ErrFull):
		return err
	case startErrIsNotFound(err):
		fmt.Fprintf(s.errOut, "%s: Command not found.\n", tok.Argv[0])
		return nil
	default:
		// The shell cannot continue without the ability to spawn.
		s.fatalf("start %s: %v", tok.Argv[0], err)
		return err
	}

	slog.Debug("added job", "jid", j.JID, "pid", j.PID, "cmdline", j.Cmdline)

	if tok.Background {
		fmt.Fprintf(s.out, "[%d] (%d) %s\n", j.JID, j.PID, j.Cmdline)
		return nil
	}
	s.jobs.WaitUntilNoForeground()
	return nil
}

// startErrIsNotFound classifies Start failures that are the child's
// problem (unresolvable or unrunnable program) rather than a loss of
// process-creation capability in the shell itself.
func startErrIsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, unix.ENOEXEC)
}
