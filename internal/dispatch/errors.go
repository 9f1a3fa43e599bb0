package dispatch

import "fmt"

// SpawnError reports a command that could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%q exited with status %d", e.Command, e.Code)
}

// InvalidRulesError reports an edited rules file that is not a JSON array.
type InvalidRulesError struct {
	Err error
}

func (e *InvalidRulesError) Error() string {
	return fmt.Sprintf("edited rules discarded: %v", e.Err)
}

func (e *InvalidRulesError) Unwrap() error { return e.Err }
