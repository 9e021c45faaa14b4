package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/crmx/internal/view"
)

// Run starts the Bubble Tea program and blocks until the user quits. It
// returns the final view configuration so callers can persist it.
// Width/height of 0 auto-detect the terminal size (falling back to defaults).
// Extra ProgramOptions (e.g., custom IO) are passed to tea.NewProgram.
func Run(opts Options, progOpts ...tea.ProgramOption) (view.Config, error) {
	if opts.Width > 0 || opts.Height > 0 {
		runW, runH := opts.Width, opts.Height
		if runW <= 0 || runH <= 0 {
			if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				if runW <= 0 {
					runW = w
				}
				if runH <= 0 {
					runH = h
				}
			}
		}
		if runW <= 0 {
			runW = defaultWidth
		}
		if runH <= 0 {
			runH = defaultHeight
		}
		opts.Width, opts.Height = runW, runH
		progOpts = append(progOpts, tea.WithWindowSize(runW, runH))
	}

	m := New(opts)
	prog := tea.NewProgram(m, progOpts...)
	finalModel, err := prog.Run()
	if fm, ok := finalModel.(*Model); ok && fm != nil {
		return fm.Config(), err
	}
	return m.Config(), err
}
