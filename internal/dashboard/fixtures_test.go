package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/smileynet/storefront/internal/api"
	"github.com/smileynet/storefront/internal/catalog"
	"github.com/smileynet/storefront/internal/lists"
	"github.com/smileynet/storefront/internal/token"
)

// fakeBackend serves a small fixed catalog and records write requests.
type fakeBackend struct {
	mu        sync.Mutex
	writes    []string
	deleteErr string
}

func (b *fakeBackend) written() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.writes...)
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	reply := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	if r.Method != http.MethodGet {
		b.mu.Lock()
		b.writes = append(b.writes, r.Method+" "+path)
		deleteErr := b.deleteErr
		b.mu.Unlock()
		if r.Method == http.MethodDelete && deleteErr != "" {
			reply(409, map[string]any{"errorCode": deleteErr})
			return
		}
	}

	switch {
	case r.Method == http.MethodGet && path == "/categorias":
		reply(200, []map[string]any{
			{"id": 1, "nome": "Lips", "descricao": "Lipsticks and glosses", "ativo": true},
			{"id": 2, "nome": "Eyes", "descricao": "Mascaras", "ativo": true},
			{"id": 3, "nome": "Nails", "descricao": "Polish", "ativo": false},
		})
	case r.Method == http.MethodGet && path == "/subcategorias":
		reply(200, []map[string]any{
			{"id": 10, "name": "Matte", "category_info": map[string]any{"id": 1, "name": "Lips"}},
		})
	case r.Method == http.MethodGet && path == "/produtos":
		reply(200, map[string]any{"content": []map[string]any{
			{"id": 100, "name": "Velvet", "price": 39.9, "active": true, "tipo": "MULTI_COLOR",
				"cores": map[string]string{"Ruby": "#9B111E"}, "category": map[string]any{"id": 1, "nome": "Lips"}},
		}})
	case r.Method == http.MethodPost && path == "/login":
		reply(200, map[string]any{"accessToken": "tok"})
	case r.Method == http.MethodGet && path == "/health":
		reply(200, map[string]any{"status": "UP"})
	default:
		reply(200, map[string]any{"success": true})
	}
}

// memTokens is an in-memory token.Store.
type memTokens struct{ tok string }

func (m *memTokens) Has() bool { return m.tok != "" }
func (m *memTokens) Get() (string, error) {
	if m.tok == "" {
		return "", token.ErrNotFound
	}
	return m.tok, nil
}
func (m *memTokens) Set(t string) error { m.tok = t; return nil }
func (m *memTokens) Remove() error      { m.tok = ""; return nil }

// newTestDeps wires real managers to a fake backend.
func newTestDeps(t *testing.T, tokens *memTokens) (Deps, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	c := api.New(api.Options{BaseURL: srv.URL, Tokens: tokens, Timeout: 2 * time.Second})
	ld := lists.Deps{Validator: catalog.NewValidator(catalog.Limits{
		MaxColors:          5,
		SubcategoryNameMax: 100,
		AllowedImageTypes:  []string{"image/png"},
	})}
	return Deps{
		Categories:    lists.NewCategories(c.Categories(), ld),
		Subcategories: lists.NewSubcategories(c.Subcategories(), ld, 0),
		Products:      lists.NewProducts(c.Products(), ld),
		Session:       lists.NewSession(c.Auth(), tokens, ld),
		Debounce:      time.Millisecond,
	}, fb
}

// loaded returns a sized model in browse mode with tab's list fetched.
func loaded(t *testing.T, d Deps, tab Tab) Model {
	t.Helper()
	m := NewModel(d)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)
	for m.tab != tab {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = updated.(Model)
	}
	return send(t, m, m.startFetch(tab, true))
}

// send runs cmd and feeds every resulting message back into m.
func send(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range drain(t, cmd) {
		if msg == nil {
			continue
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// cmdWait bounds how long drain waits for one command. Commands still
// blocked after it are timers (health ticks, cursor blinks) and are dropped.
const cmdWait = time.Second

// drain runs cmd, flattening nested batches, and returns the messages the
// model should see next. Spinner ticks are skipped so the loop ends.
func drain(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(cmdWait):
		return nil
	}
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, drain(t, c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	}
	return []tea.Msg{msg}
}

// containsPlainText reports whether view contains sub once styling is removed.
func containsPlainText(view, sub string) bool {
	return strings.Contains(ansi.Strip(view), sub)
}
