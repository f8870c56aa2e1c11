package dashboard

import (
	"fmt"
	"strings"

	"github.com/smileynet/storefront/internal/catalog"
)

// confirmState holds the item awaiting delete confirmation.
type confirmState struct {
	tab      Tab
	id       int64
	name     string
	warning  string // shown when deleting may be refused
	deleting bool
}

// newConfirm builds the confirmation for deleting row r of tab.
func newConfirm(tab Tab, r row) confirmState {
	cs := confirmState{tab: tab, id: r.ID, name: r.Title}
	switch tab {
	case TabCategories:
		cs.warning = "Categories that still have products cannot be deleted."
	case TabSubcategories:
		cs.warning = "Subcategories that still have products cannot be deleted."
	}
	return cs
}

// View renders the confirmation screen.
func (cs confirmState) View(width, height int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Delete %s %q?\n", cs.tab.Singular(), cs.name)
	fmt.Fprintf(&b, "\n  %s", catalog.MsgConfirmDelete)
	fmt.Fprintf(&b, "\n  %s", catalog.MsgActionIrreversible)
	if cs.warning != "" {
		fmt.Fprintf(&b, "\n\n  %s", mutedText.Render(cs.warning))
	}
	if cs.deleting {
		b.WriteString("\n\n  Deleting...")
		return b.String()
	}
	b.WriteString("\n\n  [y] Delete   [Esc] Cancel")
	return b.String()
}
