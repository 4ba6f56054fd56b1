package shell

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"gosh/internal/job"
)

func TestRunExternalCommandNotFound(t *testing.T) {
	s, _, errOut := newTestShell(t)

	// Start fails during lookup; no child is created.
	if err := s.Execute("definitely-not-a-command-xyz"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "definitely-not-a-command-xyz: Command not found.\n"
	if errOut.String() != want {
		t.Errorf("stderr = %q, want %q", errOut.String(), want)
	}
	// The failed launch left nothing behind.
	var b strings.Builder
	s.jobs.List(&b)
	if b.Len() != 0 {
		t.Errorf("job table not empty: %q", b.String())
	}
}

func TestRunExternalTableFull(t *testing.T) {
	s, _, _ := newTestShell(t)
	for i := 0; i < s.jobs.Capacity(); i++ {
		if _, err := s.jobs.Add(1000+i, job.Background, "x &"); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	// The slot check precedes the start callback, so no process is
	// spawned for a table that cannot hold it.
	err := s.Execute("echo overflow &")
	if !errors.Is(err, job.ErrFull) {
		t.Errorf("Execute on full table = %v, want ErrFull", err)
	}
	if _, ok := s.jobs.ByJID(s.jobs.Capacity() + 1); ok {
		t.Error("overflow job was registered")
	}
}

func TestRunExternalMissingInfile(t *testing.T) {
	s, _, _ := newTestShell(t)
	err := s.Execute("cat < /definitely/not/a/file")
	if err == nil {
		t.Fatal("Execute with missing input file succeeded, want error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped ErrNotExist", err)
	}
}

func TestStartErrClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"lookup failure", &exec.Error{Name: "nope", Err: exec.ErrNotFound}, true},
		{"missing path", &os.PathError{Op: "fork/exec", Path: "/x", Err: unix.ENOENT}, true},
		{"permission denied", &os.PathError{Op: "fork/exec", Path: "/x", Err: unix.EACCES}, true},
		{"bad format", &os.PathError{Op: "fork/exec", Path: "/x", Err: unix.ENOEXEC}, true},
		{"resource exhaustion", &os.PathError{Op: "fork/exec", Path: "/x", Err: unix.EAGAIN}, false},
		{"out of memory", unix.ENOMEM, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := startErrIsNotFound(tt.err); got != tt.want {
				t.Errorf("startErrIsNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
