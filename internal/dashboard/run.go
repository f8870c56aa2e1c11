package dashboard

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/storefront/internal/toast"
)

// Run starts the dashboard and blocks until the user quits or d.Context is
// cancelled. Extra options are appended after the defaults (alt screen).
func Run(d Deps, opts ...tea.ProgramOption) error {
	m := NewModel(d)
	d = m.deps

	if d.Toasts != nil {
		d.Toasts.Retain()
		defer d.Toasts.Close()

		ch := make(chan []toast.Toast, 1)
		unsubscribe := d.Toasts.Subscribe(func(ts []toast.Toast) {
			// Keep only the latest snapshot.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ts:
			default:
			}
		})
		defer unsubscribe()
		m.toastCh = ch
	}

	all := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(d.Context)}, opts...)
	if _, err := tea.NewProgram(m, all...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && d.Context.Err() != nil {
			return nil
		}
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
