package lists

import (
	"context"
	"strconv"
	"strings"

	"github.com/smileynet/storefront/internal/catalog"
	"github.com/smileynet/storefront/internal/listcache"
)

const subcategoriesKey = "subcategories"

// SubcategoryAPI is the backend surface the Subcategories manager needs.
type SubcategoryAPI interface {
	List(ctx context.Context) ([]catalog.Subcategory, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]catalog.Subcategory, error)
	Create(ctx context.Context, in catalog.SubcategoryInput) error
	Update(ctx context.Context, in catalog.SubcategoryInput) error
	Delete(ctx context.Context, id int64) error
}

// Subcategories manages one list per category plus the full list. Each
// category key keeps its own timestamp.
type Subcategories struct {
	core[catalog.Subcategory]
	svc         SubcategoryAPI
	maxPerGroup int
}

// NewSubcategories creates a Subcategories manager. maxPerCategory caps how
// many subcategories a category may hold; 0 disables the check.
func NewSubcategories(svc SubcategoryAPI, d Deps, maxPerCategory int) *Subcategories {
	return &Subcategories{
		core:        newCore[catalog.Subcategory](d, "subcategories"),
		svc:         svc,
		maxPerGroup: maxPerCategory,
	}
}

// categoryKey is the cache key for one category's subcategories.
func categoryKey(categoryID int64) string {
	return subcategoriesKey + "/" + strconv.FormatInt(categoryID, 10)
}

// Fetch loads every subcategory.
func (m *Subcategories) Fetch(ctx context.Context, force bool) Result {
	return m.fetch(ctx, subcategoriesKey, force, m.svc.List, catalog.MsgSubcategoryLoadError)
}

// FetchFor loads the subcategories of one category.
func (m *Subcategories) FetchFor(ctx context.Context, categoryID int64, force bool) Result {
	load := func(ctx context.Context) ([]catalog.Subcategory, error) {
		return m.svc.ListByCategory(ctx, categoryID)
	}
	return m.fetch(ctx, categoryKey(categoryID), force, load, catalog.MsgSubcategoryLoadError)
}

// Create validates and posts a subcategory.
func (m *Subcategories) Create(ctx context.Context, in catalog.SubcategoryInput) Result {
	if err := m.validate.Subcategory(in); err != nil {
		return m.invalid(err)
	}
	if r := m.checkLimit(ctx, in.CategoryID); !r.Success {
		return r
	}
	if err := m.svc.Create(ctx, in); err != nil {
		return m.failed(ctx, err, catalog.MsgSubcategoryCreateError)
	}
	m.notify.Success(catalog.MsgSubcategoryCreated)
	m.refresh(ctx, in.CategoryID)
	return OK
}

// Update validates and saves a subcategory.
func (m *Subcategories) Update(ctx context.Context, in catalog.SubcategoryInput) Result {
	if err := m.validate.Subcategory(in); err != nil {
		return m.invalid(err)
	}
	previous := m.owner(in.ID)
	if err := m.svc.Update(ctx, in); err != nil {
		return m.failed(ctx, err, catalog.MsgSubcategoryUpdateError)
	}
	m.notify.Success(catalog.MsgSubcategoryUpdated)
	m.refresh(ctx, in.CategoryID, previous)
	return OK
}

// Delete removes a subcategory. One that still has products is refused by
// the backend with S.ITDx0001.
func (m *Subcategories) Delete(ctx context.Context, id int64) Result {
	owner := m.owner(id)
	if err := m.svc.Delete(ctx, id); err != nil {
		return m.failed(ctx, err, catalog.MsgSubcategoryDeleteError)
	}
	m.notify.Success(catalog.MsgSubcategoryDeleted)
	m.refresh(ctx, owner)
	return OK
}

// checkLimit refuses a create when the category already holds the maximum.
// It counts the category's cached list, else the cached full list, and
// loads the category's list only when neither is cached. A failed load
// leaves the decision to the backend.
func (m *Subcategories) checkLimit(ctx context.Context, categoryID int64) Result {
	if m.maxPerGroup <= 0 {
		return OK
	}
	n, ok := m.countIn(categoryID)
	if !ok {
		if r := m.FetchFor(ctx, categoryID, false); !r.Success {
			return OK
		}
		n, _ = m.countIn(categoryID)
	}
	if n >= m.maxPerGroup {
		m.notify.Error(catalog.MsgSubcategoryLimitReached)
		return Result{Error: catalog.MsgSubcategoryLimitReached, Field: "CategoryID"}
	}
	return OK
}

// countIn counts the cached subcategories of a category. ok is false when
// neither the category's list nor the full list has been fetched.
func (m *Subcategories) countIn(categoryID int64) (n int, ok bool) {
	if e := m.store.Entry(categoryKey(categoryID)); e.Fetched() {
		return len(e.Items), true
	}
	e := m.store.Entry(subcategoriesKey)
	if !e.Fetched() {
		return 0, false
	}
	for _, s := range e.Items {
		if s.CategoryID == categoryID {
			n++
		}
	}
	return n, true
}

// owner finds the category of a cached subcategory, or 0.
func (m *Subcategories) owner(id int64) int64 {
	if s, ok := m.Get(id); ok {
		return s.CategoryID
	}
	return 0
}

// refresh force-loads the category keys touched by a write and the full
// list if it was ever loaded. Other category keys are only marked stale.
func (m *Subcategories) refresh(ctx context.Context, categoryIDs ...int64) {
	forced := map[string]bool{}
	for _, id := range categoryIDs {
		if id > 0 && !forced[categoryKey(id)] {
			forced[categoryKey(id)] = true
			m.FetchFor(ctx, id, true)
		}
	}
	if m.store.Entry(subcategoriesKey).Fetched() {
		m.Fetch(ctx, true)
	}
	for _, key := range m.store.Keys() {
		if key != subcategoriesKey && !forced[key] {
			m.store.Invalidate(key)
		}
	}
}

// Get finds a cached subcategory in any loaded list. It never loads.
func (m *Subcategories) Get(id int64) (catalog.Subcategory, bool) {
	match := func(s catalog.Subcategory) bool { return s.ID == id }
	for _, key := range m.store.Keys() {
		if s, ok := m.store.Lookup(key, match); ok {
			return s, true
		}
	}
	return catalog.Subcategory{}, false
}

// Items returns the full cached list.
func (m *Subcategories) Items() []catalog.Subcategory {
	return m.store.Entry(subcategoriesKey).Items
}

// ItemsFor returns the cached subcategories of one category.
func (m *Subcategories) ItemsFor(categoryID int64) []catalog.Subcategory {
	return m.store.Entry(categoryKey(categoryID)).Items
}

// EntryFor returns the cache entry of one category.
func (m *Subcategories) EntryFor(categoryID int64) listcache.Entry[catalog.Subcategory] {
	return m.store.Entry(categoryKey(categoryID))
}

// Loading reports whether the full list is loading.
func (m *Subcategories) Loading() bool {
	return m.store.Entry(subcategoriesKey).Loading
}

// LoadingFor reports whether one category's list is loading.
func (m *Subcategories) LoadingFor(categoryID int64) bool {
	return m.store.Entry(categoryKey(categoryID)).Loading
}

// Err returns the last load error of the full list.
func (m *Subcategories) Err() string {
	return m.store.Entry(subcategoriesKey).Err
}

// Filtered applies f to the full cached list.
func (m *Subcategories) Filtered(f catalog.Filter) []catalog.Subcategory {
	return catalog.FilterSubcategories(m.Items(), f)
}

// Categories returns the ids of every category with a loaded list.
func (m *Subcategories) Categories() []int64 {
	var ids []int64
	for _, key := range m.store.Keys() {
		rest, ok := strings.CutPrefix(key, subcategoriesKey+"/")
		if !ok {
			continue
		}
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
