package lists

import (
	"context"

	"github.com/smileynet/storefront/internal/api"
	"github.com/smileynet/storefront/internal/catalog"
	"github.com/smileynet/storefront/internal/listcache"
)

const productsKey = "products"

// ProductAPI is the backend surface the Products manager needs.
type ProductAPI interface {
	List(ctx context.Context, q api.ProductQuery) ([]catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
	Create(ctx context.Context, in catalog.ProductInput, img *api.Upload) error
	Update(ctx context.Context, in catalog.ProductInput, img *api.Upload) error
	Delete(ctx context.Context, id int64) error
}

// Products manages the product list and per-category product lists.
type Products struct {
	core[catalog.Product]
	svc ProductAPI
}

// NewProducts creates a Products manager.
func NewProducts(svc ProductAPI, d Deps) *Products {
	return &Products{core: newCore[catalog.Product](d, "products"), svc: svc}
}

func productsInKey(categoryID int64) string {
	return listcache.Key(productsKey, "category", categoryID)
}

// Fetch loads the full product list unless it is fresh.
func (m *Products) Fetch(ctx context.Context, force bool) Result {
	load := func(ctx context.Context) ([]catalog.Product, error) {
		return m.svc.List(ctx, api.ProductQuery{})
	}
	return m.fetch(ctx, productsKey, force, load, catalog.MsgProductLoadError)
}

// FetchCategory loads the products of one category using the backend's
// category filter.
func (m *Products) FetchCategory(ctx context.Context, categoryID int64, force bool) Result {
	load := func(ctx context.Context) ([]catalog.Product, error) {
		return m.svc.List(ctx, api.ProductQuery{CategoryID: categoryID})
	}
	return m.fetch(ctx, productsInKey(categoryID), force, load, catalog.MsgProductLoadError)
}

// Create validates and posts a product. An image is required.
func (m *Products) Create(ctx context.Context, in catalog.ProductInput, img *api.Upload) Result {
	if err := m.validate.Product(in, img.Meta(), true); err != nil {
		return m.invalid(err)
	}
	if err := m.svc.Create(ctx, in, img); err != nil {
		return m.failed(ctx, err, catalog.MsgProductCreateError)
	}
	return m.written(ctx, catalog.MsgProductCreated)
}

// Update validates and replaces a product. img may be nil to keep the
// current image.
func (m *Products) Update(ctx context.Context, in catalog.ProductInput, img *api.Upload) Result {
	if err := m.validate.Product(in, img.Meta(), false); err != nil {
		return m.invalid(err)
	}
	if err := m.svc.Update(ctx, in, img); err != nil {
		return m.failed(ctx, err, catalog.MsgProductUpdateError)
	}
	return m.written(ctx, catalog.MsgProductUpdated)
}

// Delete removes a product.
func (m *Products) Delete(ctx context.Context, id int64) Result {
	if err := m.svc.Delete(ctx, id); err != nil {
		return m.failed(ctx, err, catalog.MsgProductDeleteError)
	}
	return m.written(ctx, catalog.MsgProductDeleted)
}

// written refetches the full list and marks per-category lists stale.
func (m *Products) written(ctx context.Context, msg string) Result {
	m.notify.Success(msg)
	m.store.InvalidatePrefix(productsKey + "#")
	m.Fetch(ctx, true)
	return OK
}

// Get returns a cached product. It never loads.
func (m *Products) Get(id int64) (catalog.Product, bool) {
	match := func(p catalog.Product) bool { return p.ID == id }
	if p, ok := m.store.Lookup(productsKey, match); ok {
		return p, true
	}
	for _, key := range m.store.Keys() {
		if p, ok := m.store.Lookup(key, match); ok {
			return p, true
		}
	}
	return catalog.Product{}, false
}

// Find returns a product from the cache, falling back to the backend.
func (m *Products) Find(ctx context.Context, id int64) (catalog.Product, Result) {
	if p, ok := m.Get(id); ok {
		return p, OK
	}
	p, err := m.svc.Get(ctx, id)
	if err != nil {
		msg := describe(err, catalog.MsgProductLoadError)
		return catalog.Product{}, Result{Error: msg}
	}
	return p, OK
}

// Items returns the cached full list.
func (m *Products) Items() []catalog.Product {
	return m.store.Entry(productsKey).Items
}

// ItemsIn returns the cached products of one category.
func (m *Products) ItemsIn(categoryID int64) []catalog.Product {
	return m.store.Entry(productsInKey(categoryID)).Items
}

// Entry returns the full cache entry.
func (m *Products) Entry() listcache.Entry[catalog.Product] {
	return m.store.Entry(productsKey)
}

// Loading reports whether the full list is loading.
func (m *Products) Loading() bool {
	return m.store.Entry(productsKey).Loading
}

// Err returns the last load error of the full list.
func (m *Products) Err() string {
	return m.store.Entry(productsKey).Err
}

// Filtered applies f to the cached full list.
func (m *Products) Filtered(f catalog.Filter) []catalog.Product {
	return catalog.FilterProducts(m.Items(), f)
}

// Stats summarizes the cached full list.
func (m *Products) Stats() catalog.ProductStats {
	return catalog.ProductSummary(m.Items())
}

// Recent returns the n newest cached products.
func (m *Products) Recent(n int) []catalog.Product {
	return catalog.RecentProducts(m.Items(), n)
}
