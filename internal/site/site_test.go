package site

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smileynet/storefront/internal/api"
	"github.com/smileynet/storefront/internal/lists"
)

// catalogBackend is a read-only fake of the catalog API that counts requests.
type catalogBackend struct {
	mu        sync.Mutex
	hits      map[string]int
	failLists bool
}

var (
	fakeCategories = []map[string]any{
		{"id": 1, "nome": "Lips", "descricao": "Lipsticks and glosses", "ativo": true},
		{"id": 2, "nome": "Eyes", "descricao": "Mascaras", "ativo": false},
	}
	fakeSubcategories = []map[string]any{
		{"id": 10, "name": "Matte", "categoryId": 1},
	}
	fakeProducts = []map[string]any{
		{"id": 100, "nome": "Velvet", "descricao": "Soft matte", "preco": 39.9, "categoriaId": 1, "categoriaNome": "Lips",
			"tipo": "MULTI_COLOR", "cores": map[string]string{"Ruby": "#9B111E"}, "ativo": true},
		{"id": 101, "nome": "Satin", "descricao": "Satin finish", "preco": 29.9, "precoDesconto": 19.9, "categoriaId": 1, "subcategoriaId": 10, "ativo": true},
		{"id": 102, "nome": "Powder", "descricao": "Powder finish", "preco": 25, "categoriaId": 1, "subcategoriaId": 10, "ativo": true},
		{"id": 103, "nome": "Retired", "descricao": "Gone", "preco": 10, "categoriaId": 1, "ativo": false},
		{"id": 104, "nome": "Gloss", "descricao": "Shiny", "preco": 1234.5, "categoriaId": 1, "ativo": true},
	}
)

func (b *catalogBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func (b *catalogBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	b.hits[r.Method+" "+path]++

	reply := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	if b.failLists && path != "/health" {
		reply(500, map[string]any{"message": "database offline"})
		return
	}

	switch {
	case path == "/health":
		reply(200, map[string]any{"status": "UP"})
	case path == "/categorias":
		reply(200, map[string]any{"success": true, "data": map[string]any{"content": fakeCategories}})
	case strings.HasPrefix(path, "/categorias/subcategorias/"):
		catID := strings.TrimPrefix(path, "/categorias/subcategorias/")
		var out []map[string]any
		for _, s := range fakeSubcategories {
			if fmt.Sprint(s["categoryId"]) == catID {
				out = append(out, s)
			}
		}
		reply(200, map[string]any{"success": true, "data": out})
	case path == "/produtos":
		var out []map[string]any
		for _, p := range fakeProducts {
			if cat := r.URL.Query().Get("category"); cat == "" || fmt.Sprint(p["categoriaId"]) == cat {
				out = append(out, p)
			}
		}
		reply(200, map[string]any{"success": true, "data": map[string]any{"content": out}})
	case strings.HasPrefix(path, "/produtos/"):
		id := strings.TrimPrefix(path, "/produtos/")
		for _, p := range fakeProducts {
			if fmt.Sprint(p["id"]) == id {
				reply(200, map[string]any{"success": true, "data": p})
				return
			}
		}
		reply(404, map[string]any{"message": "product not found"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestSite(t *testing.T, withHealth bool) (*Server, *catalogBackend) {
	t.Helper()
	b := &catalogBackend{hits: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)

	c := api.New(api.Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	opts := Options{
		Categories:    lists.NewCategories(c.Categories(), lists.Deps{}),
		Subcategories: lists.NewSubcategories(c.Subcategories(), lists.Deps{}, 0),
		Products:      lists.NewProducts(c.Products(), lists.Deps{}),
		PageSize:      2,
	}
	if withHealth {
		opts.Health = c.Health()
	}
	return New(opts), b
}

func get(t *testing.T, s *Server, target string) (int, string, http.Header) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Header
}

func TestHome_ListsActiveCategoriesFromCache(t *testing.T) {
	s, b := newTestSite(t, false)

	status, body, header := get(t, s, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Lips")
	assert.Contains(t, body, `href="/categorias/1"`)
	assert.NotContains(t, body, "Eyes")
	assert.NotEmpty(t, header.Get(fiber.HeaderXRequestID))

	status, _, _ = get(t, s, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, b.count("GET /categorias"), "second page view is served from the list cache")
}

func TestCategory_Paginates(t *testing.T) {
	s, _ := newTestSite(t, false)

	// Active products in order: Velvet, Satin, Powder, Gloss. Page size is 2.
	status, body, _ := get(t, s, "/categorias/1")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Velvet")
	assert.Contains(t, body, "Satin")
	assert.NotContains(t, body, "Powder")
	assert.Contains(t, body, "Page 1 of 2")
	assert.NotContains(t, body, "Retired")

	status, body, _ = get(t, s, "/categorias/1?page=2")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Powder")
	assert.Contains(t, body, "Gloss")
	assert.Contains(t, body, "R$ 1.234,50")
	assert.Contains(t, body, "Page 2 of 2")
}

func TestCategory_SubcategoryFilter(t *testing.T) {
	s, _ := newTestSite(t, false)

	status, body, _ := get(t, s, "/categorias/1?sub=10")

	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Matte")
	assert.Contains(t, body, "Satin")
	assert.Contains(t, body, "Powder")
	assert.NotContains(t, body, "Velvet")
	assert.NotContains(t, body, "Page 1 of", "two matches fit on one page")
	assert.Contains(t, body, "R$ 19,90", "discounted price is shown")
}

func TestCategory_NotFound(t *testing.T) {
	s, _ := newTestSite(t, false)

	for _, target := range []string{"/categorias/2", "/categorias/99", "/categorias/abc", "/categorias/-1"} {
		status, body, _ := get(t, s, target)
		assert.Equal(t, http.StatusNotFound, status, target)
		assert.Contains(t, body, "Not found", target)
	}
}

func TestProduct_DetailWithSwatchesAndRelated(t *testing.T) {
	s, b := newTestSite(t, false)

	status, body, _ := get(t, s, "/produtos/100")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, b.count("GET /produtos/100"), "uncached product is loaded by id")
	assert.Contains(t, body, "Velvet")
	assert.Contains(t, body, "R$ 39,90")
	assert.Contains(t, body, "#9B111E")
	assert.Contains(t, body, "Ruby")
	assert.Contains(t, body, "More from Lips")
	assert.Contains(t, body, "Satin")
	assert.NotContains(t, body, "Retired")
	assert.Equal(t, 1, strings.Count(body, `href="/produtos/`+"101"+`"`))
	assert.Zero(t, strings.Count(body, `href="/produtos/100"`), "a product is not related to itself")
}

func TestProduct_CachedAfterCategoryPage(t *testing.T) {
	s, b := newTestSite(t, false)

	get(t, s, "/categorias/1")
	status, _, _ := get(t, s, "/produtos/101")

	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, b.count("GET /produtos/101"))
}

func TestProduct_InactiveOrMissingIsNotFound(t *testing.T) {
	s, _ := newTestSite(t, false)

	for _, target := range []string{"/produtos/103", "/produtos/999"} {
		status, body, _ := get(t, s, target)
		assert.Equal(t, http.StatusNotFound, status, target)
		assert.Contains(t, body, "This product is no longer available.", target)
	}
}

func TestBackendFailure_RendersErrorPage(t *testing.T) {
	s, b := newTestSite(t, false)
	b.failLists = true

	status, body, _ := get(t, s, "/")

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body, "Catalog unavailable")
	assert.Contains(t, body, "database offline")
	assert.Contains(t, body, "Reload")
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestSite(t, false)

	status, body, _ := get(t, s, "/nope")

	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "This page does not exist.")
	assert.NotContains(t, body, "Cannot GET")
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name       string
		withHealth bool
		want       map[string]string
	}{
		{name: "site only", withHealth: false, want: map[string]string{"status": "UP"}},
		{name: "with backend", withHealth: true, want: map[string]string{"status": "UP", "backend": "UP"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSite(t, tt.withHealth)

			status, body, _ := get(t, s, "/healthz")

			require.Equal(t, http.StatusOK, status)
			var got map[string]string
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}
