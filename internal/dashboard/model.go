package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/storefront/internal/catalog"
	"github.com/smileynet/storefront/internal/health"
	"github.com/smileynet/storefront/internal/lists"
	"github.com/smileynet/storefront/internal/toast"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// headerHeight covers the tab strip and the status line.
const headerHeight = 2

// maxToasts is how many toasts are drawn at once; the newest win.
const maxToasts = 3

// DefaultDebounce is the search debounce used when Deps leaves it zero.
const DefaultDebounce = 300 * time.Millisecond

// Model is the root Bubble Tea model for the dashboard TUI.
// It manages a two-pane layout with mode-based routing and focus management.
type Model struct {
	deps     Deps
	mode     Mode
	focus    Focus
	tab      Tab
	width    int
	height   int
	browse   map[Tab]browseState
	form     formState
	confirm  confirmState
	login    loginState
	viewport viewport.Model
	help     help.Model
	spinner  spinner.Model
	health   health.Status
	toasts   []toast.Toast
	toastCh  <-chan []toast.Toast
	crash    string

	// healthLoop is the generation of the live polling loop. Ticks and
	// results from older loops are dropped.
	healthLoop int
}

// NewModel creates a dashboard Model. It starts in browse mode when a token
// is stored and on the login screen otherwise.
func NewModel(d Deps) Model {
	if d.Context == nil {
		d.Context = context.Background()
	}
	if d.Debounce <= 0 {
		d.Debounce = DefaultDebounce
	}
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		deps:     d,
		mode:     ModeBrowse,
		focus:    PaneLeft,
		browse:   make(map[Tab]browseState, len(Tabs)),
		login:    newLoginState(),
		viewport: viewport.New(0, 0),
		help:     help.New(),
		spinner:  s,
		health:   health.Status{State: health.StateUnknown},
	}
	for _, t := range Tabs {
		m.browse[t] = newBrowseState(t)
	}
	if d.Session != nil && !d.Session.Authenticated() {
		m.mode = ModeLogin
	}
	if d.Health != nil {
		m.health = d.Health.Status()
	}
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.mode == ModeBrowse {
		cmds = append(cmds, m.startFetch(m.tab, false))
		cmds = append(cmds, m.healthCheck())
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	if m.toastCh != nil {
		cmds = append(cmds, waitToasts(m.toastCh))
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages with mode-based routing. A panic while
// handling a message switches to the error screen instead of killing the
// terminal session.
func (m Model) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.mode = ModeError
			m.crash = fmt.Sprint(r)
			model, cmd = m, nil
		}
	}()
	return m.update(msg)
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ListLoadedMsg:
		bs := m.browse[msg.Tab]
		bs.loading = false
		bs.err = ""
		if !msg.Result.Success {
			bs.err = msg.Result.Error
		}
		m.browse[msg.Tab] = bs.clamp(len(m.rows(msg.Tab)))
		m.refreshDetail()
		return m, nil

	case WriteDoneMsg:
		return m.handleWriteDone(msg), nil

	case LoginDoneMsg:
		m.login.busy = false
		if !msg.Result.Success {
			m.login.err = msg.Result.Error
			m.login = m.login.focusField(msg.Result.Field)
			return m, nil
		}
		m.login = newLoginState()
		m.mode = ModeBrowse
		m.healthLoop++
		return m, tea.Batch(m.startFetch(m.tab, true), m.healthCheck())

	case SearchTickMsg:
		bs, applied := m.browse[msg.Tab].applySearch(msg.Seq)
		if applied {
			m.browse[msg.Tab] = bs
			m.refreshDetail()
		}
		return m, nil

	case HealthMsg:
		m.health = msg.Status
		if msg.Loop != m.healthLoop || m.mode == ModeLogin {
			return m, nil
		}
		return m, m.healthTick()

	case healthTickMsg:
		// Signing out stops the loop; a successful login starts the next one.
		if msg.loop != m.healthLoop || m.mode == ModeLogin {
			return m, nil
		}
		if m.deps.Health == nil || !m.deps.Health.Enabled() {
			return m, m.healthTick()
		}
		return m, m.healthCheck()

	case ToastsMsg:
		m.toasts = append([]toast.Toast(nil), msg...)
		m.resize()
		if m.toastCh == nil {
			return m, nil
		}
		return m, waitToasts(m.toastCh)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

// forward passes other messages (cursor blinks) to the active input.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case ModeLogin:
		m.login, cmd = m.login.Update(msg)
	case ModeForm:
		m.form, cmd = m.form.Update(msg)
	case ModeBrowse:
		bs := m.browse[m.tab]
		if bs.searching {
			bs.search, cmd = bs.search.Update(msg)
			m.browse[m.tab] = bs
		}
	}
	return m, cmd
}

// handleKey processes key messages with global and mode-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.mode {
	case ModeError:
		return m.handleErrorKey(msg)
	case ModeLogin:
		return m.handleLoginKey(msg)
	case ModeForm:
		return m.handleFormKey(msg)
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	default:
		if m.browse[m.tab].searching {
			return m.handleSearchKey(msg)
		}
		return m.handleBrowseKey(msg)
	}
}

func (m Model) handleErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := ErrorKeyMap()
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Reset):
		m.crash = ""
		m.mode = ModeBrowse
		if m.deps.Session != nil && !m.deps.Session.Authenticated() {
			m.mode = ModeLogin
			return m, nil
		}
		// The panic may have dropped the pending tick.
		m.healthLoop++
		return m, m.healthCheck()
	}
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	keys := FormKeyMap()
	switch {
	case key.Matches(msg, keys.Next), key.Matches(msg, keys.Prev):
		m.login = m.login.toggle()
		return m, nil
	case key.Matches(msg, keys.Submit):
		if m.login.focus == 0 && m.login.password.Value() == "" {
			m.login = m.login.toggle()
			return m, nil
		}
		m.login.busy = true
		m.login.err = ""
		return m, tea.Batch(m.loginCmd(m.login.username.Value(), m.login.password.Value()), m.spinner.Tick)
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.saving {
		return m, nil
	}
	keys := FormKeyMap()
	switch {
	case key.Matches(msg, keys.Cancel):
		m.mode = ModeBrowse
		m.resize()
		return m, nil
	case key.Matches(msg, keys.Next):
		m.form = m.form.focusAt(m.form.focus + 1)
		return m, nil
	case key.Matches(msg, keys.Prev):
		m.form = m.form.focusAt(m.form.focus - 1)
		return m, nil
	case key.Matches(msg, keys.Submit):
		return m.submitForm()
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm.deleting {
		return m, nil
	}
	keys := ConfirmKeyMap()
	switch {
	case key.Matches(msg, keys.Yes):
		m.confirm.deleting = true
		return m, m.deleteCmd(m.confirm.tab, m.confirm.id)
	case key.Matches(msg, keys.No):
		m.mode = ModeBrowse
		return m, nil
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := SearchKeyMap()
	bs := m.browse[m.tab]
	switch {
	case key.Matches(msg, keys.Done):
		m.browse[m.tab] = bs.endSearch(false)
		m.refreshDetail()
		return m, nil
	case key.Matches(msg, keys.Cancel):
		m.browse[m.tab] = bs.endSearch(true)
		m.refreshDetail()
		return m, nil
	}
	var cmd tea.Cmd
	m.browse[m.tab], cmd = bs.typeSearch(msg, m.debounce)
	return m, cmd
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := BrowseKeyMap()
	bs := m.browse[m.tab]
	rows := m.rows(m.tab)

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.NextTab):
		m.tab = Tabs[(int(m.tab)+1)%len(Tabs)]
		m.focus = PaneLeft
		m.refreshDetail()
		return m, m.startFetch(m.tab, false)

	case key.Matches(msg, keys.Focus):
		if m.focus == PaneLeft {
			m.focus = PaneRight
		} else {
			m.focus = PaneLeft
		}
		return m, nil

	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		if m.focus == PaneRight {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		delta := 1
		if key.Matches(msg, keys.Up) {
			delta = -1
		}
		m.browse[m.tab] = bs.move(delta, len(rows))
		m.refreshDetail()
		return m, nil

	case key.Matches(msg, keys.Search):
		var cmd tea.Cmd
		m.browse[m.tab], cmd = bs.startSearch()
		return m, cmd

	case key.Matches(msg, keys.Status):
		if m.tab == TabSubcategories {
			return m, nil
		}
		m.browse[m.tab] = bs.cycleStatus()
		m.refreshDetail()
		return m, nil

	case key.Matches(msg, keys.New):
		return m.openForm(nil)

	case key.Matches(msg, keys.Edit):
		if r, ok := m.selected(); ok {
			return m.openForm(&r)
		}
		return m, nil

	case key.Matches(msg, keys.Delete):
		if r, ok := m.selected(); ok {
			m.confirm = newConfirm(m.tab, r)
			m.mode = ModeConfirm
		}
		return m, nil

	case key.Matches(msg, keys.Refresh):
		return m, m.startFetch(m.tab, true)

	case key.Matches(msg, keys.Dismiss):
		if n := len(m.toasts); n > 0 && m.deps.Toasts != nil {
			m.deps.Toasts.Dismiss(m.toasts[n-1].ID)
		}
		return m, nil

	case key.Matches(msg, keys.Logout):
		if m.deps.Session != nil {
			m.deps.Session.Logout()
			m.healthLoop++
			m.mode = ModeLogin
			m.login = newLoginState()
			return m, textinput.Blink
		}
		return m, nil
	}
	return m, nil
}

// openForm enters form mode for the active tab. r is nil when creating.
func (m Model) openForm(r *row) (tea.Model, tea.Cmd) {
	switch m.tab {
	case TabCategories:
		var c *catalog.Category
		if r != nil {
			got, ok := m.deps.Categories.Get(r.ID)
			if !ok {
				return m, nil
			}
			c = &got
		}
		m.form = newCategoryForm(c)
	case TabSubcategories:
		var s *catalog.Subcategory
		if r != nil {
			got, ok := m.deps.Subcategories.Get(r.ID)
			if !ok {
				return m, nil
			}
			s = &got
		}
		m.form = newSubcategoryForm(s, 0)
	case TabProducts:
		var p *catalog.Product
		if r != nil {
			got, ok := m.deps.Products.Get(r.ID)
			if !ok {
				return m, nil
			}
			p = &got
		}
		m.form = newProductForm(p)
	}
	m.mode = ModeForm
	m.focus = PaneRight
	return m, textinput.Blink
}

// submitForm hands the form to the tab's manager.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	img, err := f.image()
	if err != nil {
		m.form = f.failed(err.Error(), "Image")
		return m, nil
	}
	ctx := m.deps.Context
	creating := f.creating()
	var run func() lists.Result
	switch f.tab {
	case TabCategories:
		in := f.categoryInput()
		run = func() lists.Result {
			if creating {
				return m.deps.Categories.Create(ctx, in, img)
			}
			return m.deps.Categories.Update(ctx, in, img)
		}
	case TabSubcategories:
		in := f.subcategoryInput()
		run = func() lists.Result {
			if creating {
				return m.deps.Subcategories.Create(ctx, in)
			}
			return m.deps.Subcategories.Update(ctx, in)
		}
	case TabProducts:
		in := f.productInput()
		run = func() lists.Result {
			if creating {
				return m.deps.Products.Create(ctx, in, img)
			}
			return m.deps.Products.Update(ctx, in, img)
		}
	}
	m.form.saving = true
	m.form.err = ""
	m.form.errField = ""
	tab := f.tab
	return m, func() tea.Msg { return WriteDoneMsg{Tab: tab, Result: run()} }
}

func (m Model) handleWriteDone(msg WriteDoneMsg) Model {
	switch m.mode {
	case ModeForm:
		if !msg.Result.Success {
			m.form = m.form.failed(msg.Result.Error, msg.Result.Field)
			return m
		}
		m.mode = ModeBrowse
		m.focus = PaneLeft
	case ModeConfirm:
		m.mode = ModeBrowse
	}
	bs := m.browse[msg.Tab]
	m.browse[msg.Tab] = bs.clamp(len(m.rows(msg.Tab)))
	m.refreshDetail()
	return m
}

// rows returns the filtered rows of tab from the managers' caches.
func (m Model) rows(tab Tab) []row {
	f := m.browse[tab].filter
	switch tab {
	case TabSubcategories:
		if m.deps.Subcategories == nil {
			return nil
		}
		return subcategoryRows(m.deps.Subcategories.Filtered(f))
	case TabProducts:
		if m.deps.Products == nil {
			return nil
		}
		return productRows(m.deps.Products.Filtered(f))
	default:
		if m.deps.Categories == nil {
			return nil
		}
		return categoryRows(m.deps.Categories.Filtered(f))
	}
}

// selected returns the row under the cursor of the active tab.
func (m Model) selected() (row, bool) {
	rows := m.rows(m.tab)
	c := m.browse[m.tab].cursor
	if c < 0 || c >= len(rows) {
		return row{}, false
	}
	return rows[c], true
}

// refreshDetail renders the selected item into the right viewport.
func (m *Model) refreshDetail() {
	m.viewport.SetContent(m.detail())
	m.viewport.GotoTop()
}

func (m Model) detail() string {
	var stats string
	switch m.tab {
	case TabCategories:
		if m.deps.Categories != nil {
			stats = categoryStatsView(m.deps.Categories.Stats())
		}
	case TabProducts:
		if m.deps.Products != nil {
			stats = productStatsView(m.deps.Products.Stats())
		}
	}

	body := "Nothing selected"
	if r, ok := m.selected(); ok {
		switch m.tab {
		case TabCategories:
			if c, ok := m.deps.Categories.Get(r.ID); ok {
				body = categoryDetail(c, m.subcategoriesOf(c.ID))
			}
		case TabSubcategories:
			if s, ok := m.deps.Subcategories.Get(r.ID); ok {
				body = subcategoryDetail(s)
			}
		case TabProducts:
			if p, ok := m.deps.Products.Get(r.ID); ok {
				body = productDetail(p)
			}
		}
	}
	if stats == "" {
		return body
	}
	return mutedText.Render(stats) + "\n\n" + body
}

func (m Model) subcategoriesOf(categoryID int64) []catalog.Subcategory {
	if m.deps.Subcategories == nil {
		return nil
	}
	if items := m.deps.Subcategories.ItemsFor(categoryID); len(items) > 0 {
		return items
	}
	var out []catalog.Subcategory
	for _, s := range m.deps.Subcategories.Items() {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out
}

// --- commands ---

// startFetch marks tab loading and returns the fetch command.
func (m Model) startFetch(tab Tab, force bool) tea.Cmd {
	bs := m.browse[tab]
	bs.loading = true
	m.browse[tab] = bs
	ctx := m.deps.Context
	d := m.deps
	return func() tea.Msg {
		var r lists.Result
		switch tab {
		case TabSubcategories:
			r = d.Subcategories.Fetch(ctx, force)
		case TabProducts:
			r = d.Products.Fetch(ctx, force)
		default:
			r = d.Categories.Fetch(ctx, force)
		}
		return ListLoadedMsg{Tab: tab, Result: r}
	}
}

func (m Model) deleteCmd(tab Tab, id int64) tea.Cmd {
	ctx := m.deps.Context
	d := m.deps
	return func() tea.Msg {
		var r lists.Result
		switch tab {
		case TabSubcategories:
			r = d.Subcategories.Delete(ctx, id)
		case TabProducts:
			r = d.Products.Delete(ctx, id)
		default:
			r = d.Categories.Delete(ctx, id)
		}
		return WriteDoneMsg{Tab: tab, Result: r}
	}
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	ctx := m.deps.Context
	s := m.deps.Session
	return func() tea.Msg {
		return LoginDoneMsg{Result: s.Login(ctx, username, password)}
	}
}

func (m Model) debounce(tab Tab, seq int) tea.Cmd {
	return tea.Tick(m.deps.Debounce, func(time.Time) tea.Msg {
		return SearchTickMsg{Tab: tab, Seq: seq}
	})
}

func (m Model) healthCheck() tea.Cmd {
	mon := m.deps.Health
	if mon == nil {
		return nil
	}
	if !mon.Enabled() {
		return m.healthTick()
	}
	ctx, loop := m.deps.Context, m.healthLoop
	return func() tea.Msg { return HealthMsg{Status: mon.Check(ctx), Loop: loop} }
}

func (m Model) healthTick() tea.Cmd {
	mon := m.deps.Health
	if mon == nil || mon.Interval() <= 0 {
		return nil
	}
	loop := m.healthLoop
	return tea.Tick(mon.Interval(), func(time.Time) tea.Msg { return healthTickMsg{loop: loop} })
}

func waitToasts(ch <-chan []toast.Toast) tea.Cmd {
	return func() tea.Msg {
		ts, ok := <-ch
		if !ok {
			return nil
		}
		return ToastsMsg(ts)
	}
}

// --- layout ---

func (m *Model) resize() {
	_, rightWidth := PaneWidths(m.width)
	m.viewport.Width = max(rightWidth-borderChrome, 0)
	m.viewport.Height = m.contentHeight()
}

// contentHeight returns the usable height for pane content,
// accounting for border chrome, the header, toasts and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - headerHeight - helpBarHeight
	if t := m.toastView(); t != "" {
		h -= lipgloss.Height(t)
	}
	if h < 1 {
		return 1
	}
	return h
}

// View renders the active screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	helpView := m.help.View(HelpBindings(m.mode, m.browse[m.tab].searching))

	switch m.mode {
	case ModeError:
		body := errorText.Render("Something went wrong") + "\n\n" + m.crash
		return lipgloss.JoinVertical(lipgloss.Left, UnfocusedBorder().Width(max(m.width-borderChrome, 1)).Render(body), helpView)
	case ModeLogin:
		box := FocusedBorder().Padding(1, 2).Render(m.login.View(m.spinner.View()))
		parts := []string{box}
		if t := m.toastView(); t != "" {
			parts = append(parts, t)
		}
		parts = append(parts, helpView)
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	leftWidth, rightWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	leftStyle, rightStyle := FocusedBorder(), UnfocusedBorder()
	if m.focus == PaneRight || m.mode != ModeBrowse {
		leftStyle, rightStyle = UnfocusedBorder(), FocusedBorder()
	}
	leftStyle = leftStyle.Width(max(leftWidth-borderChrome, 0)).Height(contentHeight)
	rightStyle = rightStyle.Width(max(rightWidth-borderChrome, 0)).Height(contentHeight)

	left := m.browse[m.tab].View(m.rows(m.tab), contentHeight, m.spinner.View())
	var right string
	switch m.mode {
	case ModeForm:
		right = m.form.View(rightWidth - borderChrome)
	case ModeConfirm:
		right = m.confirm.View(rightWidth-borderChrome, contentHeight)
	default:
		right = m.viewport.View()
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftStyle.Render(left), rightStyle.Render(right))
	parts := []string{m.tabsView(), panes, m.statusView()}
	if t := m.toastView(); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, helpView)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) tabsView() string {
	labels := make([]string, len(Tabs))
	for i, t := range Tabs {
		if t == m.tab {
			labels[i] = activeTab.Render(t.String())
		} else {
			labels[i] = idleTab.Render(t.String())
		}
	}
	return strings.Join(labels, "  ")
}

func (m Model) statusView() string {
	parts := []string{HealthBadge(m.health.State)}
	if !m.health.CheckedAt.IsZero() {
		parts = append(parts, "checked "+m.health.CheckedAt.Format("15:04:05"))
	}
	if bs := m.browse[m.tab]; bs.filter.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", bs.filter.Search))
	}
	return statusLine.Render(strings.Join(parts, " · "))
}

func (m Model) toastView() string {
	ts := m.toasts
	if len(ts) > maxToasts {
		ts = ts[len(ts)-maxToasts:]
	}
	if len(ts) == 0 {
		return ""
	}
	boxes := make([]string, len(ts))
	for i, t := range ts {
		boxes[i] = ToastBox(t, m.width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}
