// Package dashboard implements the two-pane admin TUI for the catalog:
// a tabbed list of categories, subcategories and products on the left and
// the selected item's detail on the right, with forms, delete confirmation,
// toasts and a backend health status bar.
package dashboard

import (
	"context"
	"time"

	"github.com/smileynet/storefront/internal/health"
	"github.com/smileynet/storefront/internal/lists"
	"github.com/smileynet/storefront/internal/toast"
)

// Mode represents the current dashboard view mode.
type Mode int

const (
	ModeLogin   Mode = iota // Credentials form; no token stored.
	ModeBrowse              // Tabbed list with detail pane.
	ModeForm                // Create or edit form for the active tab.
	ModeConfirm             // Delete confirmation.
	ModeError               // Unrecoverable error screen.
)

// Focus represents which pane has keyboard focus.
type Focus int

const (
	PaneLeft  Focus = iota // List has focus.
	PaneRight              // Detail viewport has focus.
)

// Tab selects the resource shown in browse mode.
type Tab int

const (
	TabCategories Tab = iota
	TabSubcategories
	TabProducts
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabCategories, TabSubcategories, TabProducts}

func (t Tab) String() string {
	switch t {
	case TabSubcategories:
		return "Subcategories"
	case TabProducts:
		return "Products"
	default:
		return "Categories"
	}
}

// Singular returns the lower-case name of one item of the tab.
func (t Tab) Singular() string {
	switch t {
	case TabSubcategories:
		return "subcategory"
	case TabProducts:
		return "product"
	default:
		return "category"
	}
}

// Deps wires the dashboard to the list managers. Health and Toasts may be
// nil.
type Deps struct {
	Context       context.Context
	Categories    *lists.Categories
	Subcategories *lists.Subcategories
	Products      *lists.Products
	Session       *lists.Session
	Health        *health.Monitor
	Toasts        *toast.Queue
	Debounce      time.Duration
}

// --- tea.Msg types ---

// ListLoadedMsg carries the outcome of a list fetch for a tab.
type ListLoadedMsg struct {
	Tab    Tab
	Result lists.Result
}

// WriteDoneMsg carries the outcome of a create, update or delete.
type WriteDoneMsg struct {
	Tab    Tab
	Result lists.Result
}

// LoginDoneMsg carries the outcome of a login attempt.
type LoginDoneMsg struct {
	Result lists.Result
}

// SearchTickMsg fires after the debounce delay. Only the tick whose Seq
// matches the latest keystroke applies the search.
type SearchTickMsg struct {
	Tab Tab
	Seq int
}

// HealthMsg carries a completed health check. Loop identifies the polling
// loop that requested it.
type HealthMsg struct {
	Status health.Status
	Loop   int
}

// healthTickMsg schedules the next health check of one polling loop.
type healthTickMsg struct {
	loop int
}

// ToastsMsg carries the current toast queue.
type ToastsMsg []toast.Toast
