package lists

import (
	"context"

	"github.com/smileynet/storefront/internal/api"
	"github.com/smileynet/storefront/internal/catalog"
	"github.com/smileynet/storefront/internal/listcache"
)

const categoriesKey = "categories"

// CategoryAPI is the backend surface the Categories manager needs.
type CategoryAPI interface {
	List(ctx context.Context) ([]catalog.Category, error)
	Create(ctx context.Context, in catalog.CategoryInput, img *api.Upload) error
	Update(ctx context.Context, in catalog.CategoryInput, img *api.Upload) error
	Delete(ctx context.Context, id int64) error
}

// Categories manages the category list.
type Categories struct {
	core[catalog.Category]
	svc CategoryAPI
}

// NewCategories creates a Categories manager.
func NewCategories(svc CategoryAPI, d Deps) *Categories {
	return &Categories{core: newCore[catalog.Category](d, "categories"), svc: svc}
}

// Fetch loads the list unless it is fresh; force always loads.
func (m *Categories) Fetch(ctx context.Context, force bool) Result {
	return m.fetch(ctx, categoriesKey, force, m.svc.List, catalog.MsgCategoryLoadError)
}

// Create validates and posts a category. An image is required.
func (m *Categories) Create(ctx context.Context, in catalog.CategoryInput, img *api.Upload) Result {
	if err := m.validate.Category(in, img.Meta(), true); err != nil {
		return m.invalid(err)
	}
	if err := m.svc.Create(ctx, in, img); err != nil {
		return m.failed(ctx, err, catalog.MsgCategoryCreateError)
	}
	return m.written(ctx, catalog.MsgCategoryCreated)
}

// Update validates and replaces a category. img may be nil to keep the
// current image.
func (m *Categories) Update(ctx context.Context, in catalog.CategoryInput, img *api.Upload) Result {
	if err := m.validate.Category(in, img.Meta(), false); err != nil {
		return m.invalid(err)
	}
	if err := m.svc.Update(ctx, in, img); err != nil {
		return m.failed(ctx, err, catalog.MsgCategoryUpdateError)
	}
	return m.written(ctx, catalog.MsgCategoryUpdated)
}

// Delete removes a category. A category that still has products is refused
// by the backend with C.ITDx0001.
func (m *Categories) Delete(ctx context.Context, id int64) Result {
	if err := m.svc.Delete(ctx, id); err != nil {
		return m.failed(ctx, err, catalog.MsgCategoryDeleteError)
	}
	return m.written(ctx, catalog.MsgCategoryDeleted)
}

func (m *Categories) written(ctx context.Context, msg string) Result {
	m.notify.Success(msg)
	m.Fetch(ctx, true)
	return OK
}

// Get returns a cached category. It never loads.
func (m *Categories) Get(id int64) (catalog.Category, bool) {
	return m.store.Lookup(categoriesKey, func(c catalog.Category) bool { return c.ID == id })
}

// Items returns the cached list.
func (m *Categories) Items() []catalog.Category {
	return m.store.Entry(categoriesKey).Items
}

// Entry returns the full cache entry.
func (m *Categories) Entry() listcache.Entry[catalog.Category] {
	return m.store.Entry(categoriesKey)
}

// Loading reports whether a load is in flight.
func (m *Categories) Loading() bool {
	return m.store.Entry(categoriesKey).Loading
}

// Err returns the last load error, or "".
func (m *Categories) Err() string {
	return m.store.Entry(categoriesKey).Err
}

// Filtered applies f to the cached list.
func (m *Categories) Filtered(f catalog.Filter) []catalog.Category {
	return catalog.FilterCategories(m.Items(), f)
}

// Stats summarizes the cached list.
func (m *Categories) Stats() catalog.CategoryStats {
	return catalog.CategorySummary(m.Items())
}
