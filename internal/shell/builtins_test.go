package shell

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"gosh/internal/job"
)

func TestResumeJobBackground(t *testing.T) {
	s, out, _ := newTestShell(t)
	s.jobs.Add(900, job.Stopped, "sleep 100")

	var calls []killCall
	s.kill = func(pid int, sig unix.Signal) error {
		calls = append(calls, killCall{pid, sig})
		return nil
	}

	if err := s.Execute("bg %1"); err != nil {
		t.Fatalf("bg: %v", err)
	}
	if len(calls) != 1 || calls[0].pid != -900 || calls[0].sig != unix.SIGCONT {
		t.Errorf("calls = %+v, want one kill(-900, SIGCONT)", calls)
	}
	j, _ := s.jobs.ByPID(900)
	if j.State != job.Background {
		t.Errorf("state = %v, want Background", j.State)
	}
	if got, want := out.String(), "[1] (900) sleep 100\n"; got != want {
		t.Errorf("ack = %q, want %q", got, want)
	}

	// Listed as Running afterwards.
	out.Reset()
	if err := s.Execute("jobs"); err != nil {
		t.Fatalf("jobs: %v", err)
	}
	if !strings.Contains(out.String(), "Running") {
		t.Errorf("listing = %q, want Running label", out.String())
	}
}

func TestResumeJobByPID(t *testing.T) {
	s, _, _ := newTestShell(t)
	s.jobs.Add(901, job.Stopped, "cat")
	s.kill = func(pid int, sig unix.Signal) error { return nil }

	if err := s.Execute("bg 901"); err != nil {
		t.Fatalf("bg by pid: %v", err)
	}
	j, _ := s.jobs.ByPID(901)
	if j.State != job.Background {
		t.Errorf("state = %v, want Background", j.State)
	}
}

func TestResumeJobForegroundBlocks(t *testing.T) {
	s, out, _ := newTestShell(t)
	s.jobs.Add(902, job.Stopped, "vi notes")
	s.kill = func(pid int, sig unix.Signal) error { return nil }

	done := make(chan error, 1)
	go func() { done <- s.Execute("fg %1") }()

	deadline := time.After(2 * time.Second)
	for {
		if j, _ := s.jobs.ByPID(902); j.State == job.Foreground {
			break
		}
		select {
		case <-done:
			t.Fatal("fg returned while the job was still foreground")
		case <-deadline:
			t.Fatal("job never became foreground")
		case <-time.After(time.Millisecond):
		}
	}

	// Simulate the job exiting; the reaper's removal must unblock fg.
	if err := s.jobs.Remove(902); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("fg: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fg did not return after the job left the table")
	}
	if !strings.Contains(out.String(), "[1] (902) vi notes") {
		t.Errorf("ack missing from %q", out.String())
	}
}

func TestResumeJobErrors(t *testing.T) {
	s, _, _ := newTestShell(t)
	s.jobs.Add(903, job.Background, "sleep 5 &")

	tests := []struct {
		name string
		line string
		want string
	}{
		{"no such jid", "bg %7", "no such job"},
		{"no such pid", "fg 12345", "no such job"},
		{"wrong argument count", "bg", "wrong argument count"},
		{"too many arguments", "fg %1 %2", "wrong argument count"},
		{"malformed reference", "bg %x", "malformed job reference"},
		{"not stopped", "bg 903", "already running"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Execute(tt.line)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Execute(%q) = %v, want %q", tt.line, err, tt.want)
			}
		})
	}
}

func TestJobsRedirection(t *testing.T) {
	s, out, _ := newTestShell(t)
	s.jobs.Add(904, job.Stopped, "sleep 9")

	path := filepath.Join(t.TempDir(), "jobs.txt")
	if err := s.Execute("jobs > " + path); err != nil {
		t.Fatalf("jobs: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read redirection target: %v", err)
	}
	if want := "[1] (904) Stopped    sleep 9\n"; string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
	if out.Len() != 0 {
		t.Errorf("redirected jobs also wrote to stdout: %q", out.String())
	}
}

func TestQuitRaisesSIGQUIT(t *testing.T) {
	s, _, _ := newTestShell(t)
	var calls []killCall
	s.kill = func(pid int, sig unix.Signal) error {
		calls = append(calls, killCall{pid, sig})
		return nil
	}
	if err := s.Execute("quit"); err != nil {
		t.Fatalf("quit: %v", err)
	}
	if len(calls) != 1 || calls[0].pid != os.Getpid() || calls[0].sig != unix.SIGQUIT {
		t.Errorf("calls = %+v, want kill(self, SIGQUIT)", calls)
	}
}

func TestParseErrorIgnoresLine(t *testing.T) {
	s, _, _ := newTestShell(t)
	if err := s.Execute(`echo "unterminated`); err == nil {
		t.Error("Execute with parse error succeeded, want error")
	}
	// Nothing was launched or registered.
	if pid := s.jobs.ForegroundPID(); pid != 0 {
		t.Errorf("foreground pid = %d, want 0", pid)
	}
}

func TestBlankLineIsIgnored(t *testing.T) {
	s, out, _ := newTestShell(t)
	if err := s.Execute("   "); err != nil {
		t.Errorf("Execute(blank) = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("blank line produced output %q", out.String())
	}
}

func TestPluginDispatch(t *testing.T) {
	s, _, _ := newTestShell(t)
	var got []string
	s.plugins["greet"] = fakePlugin{name: "greet", fn: func(args []string) error {
		got = args
		return nil
	}}
	if err := s.Execute("greet a b"); err != nil {
		t.Fatalf("plugin dispatch: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("plugin args = %v, want [a b]", got)
	}
}

type fakePlugin struct {
	name string
	fn   func(args []string) error
}

func (p fakePlugin) Name() string                { return p.name }
func (p fakePlugin) Execute(args []string) error { return p.fn(args) }

func TestResolveJobNotFoundError(t *testing.T) {
	s, _, _ := newTestShell(t)
	_, err := s.resolveJob("%3")
	if !errors.Is(err, job.ErrNotFound) {
		t.Errorf("resolveJob = %v, want ErrNotFound", err)
	}
}
