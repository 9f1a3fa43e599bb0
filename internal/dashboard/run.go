package dashboard

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/ztdash/internal/logging"
)

// programTerminal hands the terminal of a running program to child
// processes. The program is set after it is created from the model.
type programTerminal struct {
	p *tea.Program
}

func (t *programTerminal) ReleaseTerminal() error {
	if t.p == nil {
		return nil
	}
	return t.p.ReleaseTerminal()
}

func (t *programTerminal) RestoreTerminal() error {
	if t.p == nil {
		return nil
	}
	return t.p.RestoreTerminal()
}

// Run runs the dashboard full screen until the operator quits or ctx is
// cancelled.
func Run(ctx context.Context, deps Deps) error {
	term := &programTerminal{}
	deps.Terminal = term

	p := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	term.p = p

	logging.Info("Dashboard started")
	_, err := p.Run()
	logging.Info("Dashboard stopped")

	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
