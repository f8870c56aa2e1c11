// Package tui renders the output of the plain storefront subcommands: tables
// of catalog items and the toasts an operation produced. Output is styled
// with lipgloss on a terminal and plain text everywhere else.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/storefront/internal/toast"
)

// Display renders command output.
type Display interface {
	// Table prints rows under headers. Columns are padded to the widest cell.
	Table(headers []string, rows [][]string)
	// Fields prints label/value pairs, one per line.
	Fields(pairs [][2]string)
	// Toasts prints each toast as a single line, oldest first.
	Toasts(ts []toast.Toast)
	// Line prints free text.
	Line(format string, args ...any)
}

// DisplayOptions configures display creation.
type DisplayOptions struct {
	Writer     io.Writer // Output destination (default: os.Stdout).
	ForcePlain bool      // Force plain text even if TTY.
}

// NewDisplay returns a styled display when the writer is a TTY, or a plain
// text display otherwise. ForcePlain overrides TTY detection.
func NewDisplay(opts DisplayOptions) Display {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.ForcePlain || !isTTY(opts.Writer) {
		return &PlainDisplay{w: opts.Writer}
	}
	return &StyledDisplay{PlainDisplay{w: opts.Writer}}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var toastMarks = map[toast.Kind]string{
	toast.KindSuccess: "✓",
	toast.KindError:   "✗",
	toast.KindWarning: "!",
	toast.KindInfo:    "i",
}

// PlainDisplay writes unstyled, tab-friendly text.
type PlainDisplay struct {
	w io.Writer
}

func (d *PlainDisplay) Table(headers []string, rows [][]string) {
	d.table(headers, rows, func(s string) string { return s })
}

func (d *PlainDisplay) table(headers []string, rows [][]string, head func(string) string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	pad := func(cells []string, style func(string) string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			if i < len(widths)-1 {
				cell += strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			}
			parts[i] = style(cell)
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	_, _ = fmt.Fprintln(d.w, pad(headers, head))
	for _, row := range rows {
		_, _ = fmt.Fprintln(d.w, pad(row, func(s string) string { return s }))
	}
}

func (d *PlainDisplay) Fields(pairs [][2]string) {
	d.fields(pairs, func(s string) string { return s })
}

func (d *PlainDisplay) fields(pairs [][2]string, label func(string) string) {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0]))
	}
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		l := p[0] + ":" + strings.Repeat(" ", width-lipgloss.Width(p[0]))
		_, _ = fmt.Fprintf(d.w, "%s  %s\n", label(l), p[1])
	}
}

func (d *PlainDisplay) Toasts(ts []toast.Toast) {
	for _, t := range ts {
		_, _ = fmt.Fprintf(d.w, "%s %s\n", toastMarks[t.Kind], t.Text)
	}
}

func (d *PlainDisplay) Line(format string, args ...any) {
	_, _ = fmt.Fprintf(d.w, format+"\n", args...)
}

// StyledDisplay adds lipgloss colors to PlainDisplay's layout.
type StyledDisplay struct {
	PlainDisplay
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	toastStyles = map[toast.Kind]lipgloss.Style{
		toast.KindSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		toast.KindError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		toast.KindWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		toast.KindInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
)

func (d *StyledDisplay) Table(headers []string, rows [][]string) {
	d.table(headers, rows, func(s string) string { return headerStyle.Render(s) })
}

func (d *StyledDisplay) Fields(pairs [][2]string) {
	d.fields(pairs, func(s string) string { return labelStyle.Render(s) })
}

func (d *StyledDisplay) Toasts(ts []toast.Toast) {
	for _, t := range ts {
		style := toastStyles[t.Kind]
		_, _ = fmt.Fprintln(d.w, style.Render(toastMarks[t.Kind]+" "+t.Text))
	}
}
