// Package dispatch hands the terminal to child processes: operator
// command bindings and the rules editor.
//
// Every hand-off goes through Suspend, which releases the terminal
// before the child runs and restores it afterwards on every path,
// including a failed spawn, a non-zero exit and a panic.
package dispatch

import "fmt"

// Terminal is the part of a full-screen program that can give up and
// reclaim the terminal. *tea.Program satisfies it.
type Terminal interface {
	ReleaseTerminal() error
	RestoreTerminal() error
}

// Suspend releases t, runs fn, and restores t. The restore is deferred
// before the release is attempted, so it also runs when the release
// itself fails.
func Suspend(t Terminal, fn func() error) (err error) {
	defer func() {
		if rerr := t.RestoreTerminal(); rerr != nil && err == nil {
			err = fmt.Errorf("failed to restore terminal: %w", rerr)
		}
	}()

	if err := t.ReleaseTerminal(); err != nil {
		return fmt.Errorf("failed to release terminal: %w", err)
	}
	return fn()
}

// NopTerminal is a Terminal that does nothing, for running commands
// outside the dashboard.
type NopTerminal struct{}

func (NopTerminal) ReleaseTerminal() error { return nil }
func (NopTerminal) RestoreTerminal() error { return nil }
