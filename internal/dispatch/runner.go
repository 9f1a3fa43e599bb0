package dispatch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/muurk/ztdash/internal/logging"
	"go.uber.org/zap"
)

// Runner runs shell command lines with the real terminal.
type Runner struct {
	Shell  string // e.g. /bin/sh
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Pause waits for enter after the command so its output can be read.
	Pause bool
}

// NewRunner returns a runner attached to the process's stdio.
func NewRunner(shell string, pause bool) *Runner {
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Runner{
		Shell:  shell,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Pause:  pause,
	}
}

// shellArgs returns the argv that runs line under the configured shell.
func (r *Runner) shellArgs(line string) []string {
	switch strings.ToLower(filepath.Base(r.Shell)) {
	case "cmd", "cmd.exe":
		return []string{r.Shell, "/C", line}
	default:
		return []string{r.Shell, "-c", line}
	}
}

// Run executes line and waits for it. It does not touch the terminal.
func (r *Runner) Run(line string) error {
	argv := r.shellArgs(line)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	logging.Debug("Running command", zap.String("command", line), zap.String("shell", r.Shell))

	if err := cmd.Start(); err != nil {
		return &SpawnError{Command: line, Err: err}
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: line, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("waiting for %q: %w", line, err)
	}
	return nil
}

// Dispatch runs line with the terminal released from t. The terminal is
// restored however the command ends.
func (r *Runner) Dispatch(t Terminal, line string) error {
	err := Suspend(t, func() error {
		runErr := r.Run(line)
		if r.Pause {
			r.waitForEnter(runErr)
		}
		return runErr
	})

	if err != nil {
		logging.Warn("Command failed", zap.String("command", line), zap.Error(err))
	}
	return err
}

func (r *Runner) waitForEnter(runErr error) {
	if r.Stdout == nil || r.Stdin == nil {
		return
	}

	status := "done"
	var exitErr *ExitError
	var spawnErr *SpawnError
	switch {
	case errors.As(runErr, &exitErr):
		status = fmt.Sprintf("exit status %d", exitErr.Code)
	case errors.As(runErr, &spawnErr):
		status = "failed to start: " + spawnErr.Err.Error()
	}

	_, _ = fmt.Fprintf(r.Stdout, "\n[%s] press enter to return to ztdash ", status)
	_, _ = bufio.NewReader(r.Stdin).ReadString('\n')
}
