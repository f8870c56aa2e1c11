package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/storefront/internal/health"
	"github.com/smileynet/storefront/internal/toast"
)

// MinLeftWidth is the minimum character width for the left pane.
const MinLeftWidth = 28

var (
	mutedText  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	titleText  = lipgloss.NewStyle().Bold(true)
	errorText  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	activeTab  = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
	idleTab    = mutedText
	statusLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "250"})
)

// toastColors maps a toast kind to its accent color.
var toastColors = map[toast.Kind]lipgloss.AdaptiveColor{
	toast.KindSuccess: {Light: "2", Dark: "10"},
	toast.KindError:   {Light: "1", Dark: "9"},
	toast.KindWarning: {Light: "3", Dark: "11"},
	toast.KindInfo:    {Light: "4", Dark: "12"},
}

// ActiveBadge returns a styled "active" or "inactive" label.
func ActiveBadge(active bool) string {
	if active {
		return lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"}).
			Render("active")
	}
	return mutedText.Render("inactive")
}

// HealthBadge returns a colored dot and label for a backend state.
func HealthBadge(state health.State) string {
	color := lipgloss.AdaptiveColor{Light: "240", Dark: "245"}
	switch state {
	case health.StateUp:
		color = lipgloss.AdaptiveColor{Light: "2", Dark: "10"}
	case health.StateDown:
		color = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
	}
	return lipgloss.NewStyle().Foreground(color).Render("● " + string(state))
}

// ToastBox renders a single toast with a kind-colored border.
func ToastBox(t toast.Toast, width int) string {
	color, ok := toastColors[t.Kind]
	if !ok {
		color = toastColors[toast.KindInfo]
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1)
	if width > 4 {
		style = style.MaxWidth(width)
	}
	return style.Render(t.Text)
}

// FocusedBorder returns a lipgloss style with an accent-colored rounded border.
func FocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
}

// UnfocusedBorder returns a lipgloss style with a dim rounded border.
func UnfocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
}

// PaneWidths calculates the left and right pane widths from a total width.
// Left pane gets 2/5 (minimum MinLeftWidth), right pane gets the rest.
func PaneWidths(totalWidth int) (left, right int) {
	if totalWidth <= 0 {
		return 0, 0
	}
	left = totalWidth * 2 / 5
	if left < MinLeftWidth {
		left = MinLeftWidth
	}
	right = totalWidth - left
	if right < 0 {
		right = 0
	}
	return left, right
}
