package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"al.essio.dev/pkg/shellescape"
)

// DefaultEditor is used when neither VISUAL nor EDITOR is set.
const DefaultEditor = "vi"

// Editor returns the operator's editor command line.
func Editor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return DefaultEditor
}

// EditRules opens rules in editor with the terminal released from t. It
// returns the edited rules and whether they differ from the input. When
// the edited file is not a JSON array the result is an
// *InvalidRulesError and the rules must be left as they were.
//
// editor may carry arguments ("code --wait"); the file path is quoted.
func (r *Runner) EditRules(t Terminal, editor string, rules []json.RawMessage) ([]json.RawMessage, bool, error) {
	if editor == "" {
		editor = DefaultEditor
	}
	if rules == nil {
		rules = []json.RawMessage{}
	}

	original, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode rules: %w", err)
	}

	tmp, err := os.CreateTemp("", "ztdash-rules-*.json")
	if err != nil {
		return nil, false, fmt.Errorf("failed to create temporary file: %w", err)
	}
	path := tmp.Name()
	defer func() { _ = os.Remove(path) }()

	_, werr := tmp.Write(append(original, '\n'))
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return nil, false, fmt.Errorf("failed to write temporary file: %w", werr)
	}

	line := editor + " " + shellescape.Quote(path)
	if err := r.Dispatch(t, line); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, &InvalidRulesError{Err: fmt.Errorf("editor exited with status %d", exitErr.Code)}
		}
		return nil, false, err
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read edited rules: %w", err)
	}

	parsed, err := ParseRules(edited)
	if err != nil {
		return nil, false, err
	}

	return parsed, !sameJSON(original, edited), nil
}

// ParseRules parses a rules document. It must be a JSON array.
func ParseRules(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &InvalidRulesError{Err: errors.New("file is empty")}
	}
	if trimmed[0] != '[' {
		return nil, &InvalidRulesError{Err: errors.New("rules must be a JSON array")}
	}

	var rules []json.RawMessage
	if err := json.Unmarshal(trimmed, &rules); err != nil {
		return nil, &InvalidRulesError{Err: err}
	}
	if rules == nil {
		rules = []json.RawMessage{}
	}
	return rules, nil
}

func sameJSON(a, b []byte) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
