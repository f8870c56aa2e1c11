package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/storefront/internal/catalog"
)

// CursorMarker is the prefix shown on the selected row.
const CursorMarker = "▸ "

// row is one line of the list pane.
type row struct {
	ID        int64
	Title     string
	Meta      string
	Active    bool
	HasStatus bool
}

func categoryRows(items []catalog.Category) []row {
	out := make([]row, len(items))
	for i, c := range items {
		out[i] = row{ID: c.ID, Title: c.Name, Active: c.Active, HasStatus: true}
	}
	return out
}

func subcategoryRows(items []catalog.Subcategory) []row {
	out := make([]row, len(items))
	for i, s := range items {
		out[i] = row{ID: s.ID, Title: s.Name, Meta: s.CategoryName}
	}
	return out
}

func productRows(items []catalog.Product) []row {
	out := make([]row, len(items))
	for i, p := range items {
		out[i] = row{
			ID:        p.ID,
			Title:     p.Name,
			Meta:      catalog.FormatBRL(p.EffectivePrice()),
			Active:    p.Active,
			HasStatus: true,
		}
	}
	return out
}

// browseState holds the cursor, filter and search input of one tab.
type browseState struct {
	tab       Tab
	cursor    int
	filter    catalog.Filter
	search    textinput.Model
	searching bool
	seq       int // bumped on every search keystroke
	loading   bool
	err       string
}

func newBrowseState(tab Tab) browseState {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search by name"
	ti.CharLimit = 64
	return browseState{tab: tab, search: ti, filter: catalog.Filter{Status: catalog.StatusAll}}
}

// move shifts the cursor by delta, wrapping around n rows.
func (bs browseState) move(delta, n int) browseState {
	if n == 0 {
		bs.cursor = 0
		return bs
	}
	bs.cursor = (bs.cursor + delta + n) % n
	return bs
}

// clamp keeps the cursor inside n rows.
func (bs browseState) clamp(n int) browseState {
	if bs.cursor >= n {
		bs.cursor = n - 1
	}
	if bs.cursor < 0 {
		bs.cursor = 0
	}
	return bs
}

// startSearch focuses the search input.
func (bs browseState) startSearch() (browseState, tea.Cmd) {
	bs.searching = true
	return bs, bs.search.Focus()
}

// typeSearch feeds a key to the search input and schedules a debounced
// apply tagged with a fresh sequence number.
func (bs browseState) typeSearch(msg tea.KeyMsg, debounce func(Tab, int) tea.Cmd) (browseState, tea.Cmd) {
	before := bs.search.Value()
	var cmd tea.Cmd
	bs.search, cmd = bs.search.Update(msg)
	if bs.search.Value() == before {
		return bs, cmd
	}
	bs.seq++
	return bs, tea.Batch(cmd, debounce(bs.tab, bs.seq))
}

// applySearch copies the input into the filter when seq is the latest.
func (bs browseState) applySearch(seq int) (browseState, bool) {
	if seq != bs.seq {
		return bs, false
	}
	bs.filter.Search = bs.search.Value()
	bs.cursor = 0
	return bs, true
}

// endSearch leaves the input; clear also drops the query.
func (bs browseState) endSearch(clear bool) browseState {
	bs.searching = false
	bs.search.Blur()
	if clear {
		bs.search.SetValue("")
		bs.filter.Search = ""
		bs.seq++
		bs.cursor = 0
	} else {
		bs.filter.Search = bs.search.Value()
	}
	return bs
}

// cycleStatus advances the status filter.
func (bs browseState) cycleStatus() browseState {
	bs.filter.Status = bs.filter.Status.Next()
	bs.cursor = 0
	return bs
}

// View renders the list pane for the given rows.
func (bs browseState) View(rows []row, height int, spinnerView string) string {
	var b strings.Builder
	if bs.searching || bs.filter.Search != "" {
		b.WriteString(bs.search.View())
		b.WriteByte('\n')
	}
	if bs.tab != TabSubcategories && bs.filter.Status != catalog.StatusAll {
		b.WriteString(mutedText.Render("status: " + string(bs.filter.Status)))
		b.WriteByte('\n')
	}

	switch {
	case bs.loading && len(rows) == 0:
		fmt.Fprintf(&b, "%s Loading %s...", spinnerView, strings.ToLower(bs.tab.String()))
		return b.String()
	case bs.err != "" && len(rows) == 0:
		fmt.Fprintf(&b, "%s\n\nPress r to retry", errorText.Render(bs.err))
		return b.String()
	case len(rows) == 0:
		if bs.filter.Search != "" || bs.filter.Status != catalog.StatusAll {
			b.WriteString("No matches")
		} else {
			fmt.Fprintf(&b, "No %s yet, press n to add one", strings.ToLower(bs.tab.String()))
		}
		return b.String()
	}

	start := 0
	if height > 0 && bs.cursor >= height {
		start = bs.cursor - height + 1
	}
	for i := start; i < len(rows); i++ {
		if height > 0 && i-start >= height {
			break
		}
		r := rows[i]
		if i > start {
			b.WriteByte('\n')
		}
		if i == bs.cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}
		b.WriteString(r.Title)
		if r.Meta != "" {
			b.WriteString(" " + mutedText.Render(r.Meta))
		}
		if r.HasStatus && !r.Active {
			b.WriteString(" " + ActiveBadge(false))
		}
	}
	if bs.loading {
		b.WriteString("\n" + spinnerView)
	}
	return b.String()
}
