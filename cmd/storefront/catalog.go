package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smileynet/storefront/internal/api"
	"github.com/smileynet/storefront/internal/catalog"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ListFlags narrow a list command.
type ListFlags struct {
	Search string `help:"Case-insensitive name filter." short:"s"`
	Status string `help:"Filter by status." enum:"all,active,inactive" default:"all"`
}

func (f ListFlags) filter() catalog.Filter {
	return catalog.Filter{Search: f.Search, Status: catalog.Status(f.Status)}
}

// ActiveFlags toggle the Active flag on update.
type ActiveFlags struct {
	Activate   bool `help:"Mark as active." xor:"active"`
	Deactivate bool `help:"Mark as inactive." xor:"active"`
}

func (f ActiveFlags) apply(active *bool) {
	switch {
	case f.Activate:
		*active = true
	case f.Deactivate:
		*active = false
	}
}

// openImage loads an upload from path, or returns nil for "".
func openImage(path string) (*api.Upload, error) {
	if path == "" {
		return nil, nil
	}
	img, err := api.OpenUpload(path)
	if err != nil {
		return nil, &opError{msg: err.Error()}
	}
	return img, nil
}

// --- categories ---

// CategoriesCmd groups the category commands.
type CategoriesCmd struct {
	List   CategoriesListCmd `cmd:"" default:"withargs" help:"List categories."`
	Create CategoryCreateCmd `cmd:"" help:"Create a category."`
	Update CategoryUpdateCmd `cmd:"" help:"Update a category."`
	Delete CategoryDeleteCmd `cmd:"" help:"Delete a category."`
}

// CategoriesListCmd prints categories.
type CategoriesListCmd struct {
	ListFlags `embed:""`

	Stats bool `help:"Print totals instead of the list."`
}

// Run executes the categories list command.
func (c *CategoriesListCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("categories: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()

	m := e.categories()
	if res := m.Fetch(ctx, false); !res.Success {
		return e.report(res)
	}
	if c.Stats {
		s := m.Stats()
		e.out.Fields([][2]string{
			{"Total", strconv.Itoa(s.Total)},
			{"Active", strconv.Itoa(s.Active)},
			{"Inactive", strconv.Itoa(s.Inactive)},
		})
		return nil
	}
	var rows [][]string
	for _, cat := range m.Filtered(c.filter()) {
		rows = append(rows, []string{strconv.FormatInt(cat.ID, 10), cat.Name, yesNo(cat.Active), cat.Description})
	}
	e.out.Table([]string{"ID", "NAME", "ACTIVE", "DESCRIPTION"}, rows)
	return nil
}

// CategoryCreateCmd creates a category.
type CategoryCreateCmd struct {
	Name        string `help:"Category name." required:""`
	Description string `help:"Category description." required:""`
	Inactive    bool   `help:"Create the category inactive."`
	Image       string `help:"JPEG, PNG or GIF image." required:"" type:"existingfile"`
}

// Run executes the categories create command.
func (c *CategoryCreateCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("categories: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()

	img, err := openImage(c.Image)
	if err != nil {
		return err
	}
	in := catalog.CategoryInput{Name: c.Name, Description: c.Description, Active: !c.Inactive}
	return e.report(e.categories().Create(ctx, in, img))
}

// CategoryUpdateCmd changes the given fields of a category.
type CategoryUpdateCmd struct {
	ID          int64  `arg:"" help:"Category id."`
	Name        string `help:"New name."`
	Description string `help:"New description."`
	Image       string `help:"Replacement image." type:"existingfile"`

	ActiveFlags `embed:""`
}

// Run executes the categories update command.
func (c *CategoryUpdateCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("categories: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()

	m := e.categories()
	if res := m.Fetch(ctx, false); !res.Success {
		return e.report(res)
	}
	cat, ok := m.Get(c.ID)
	if !ok {
		return &opError{msg: fmt.Sprintf("category %d not found", c.ID)}
	}
	in := cat.Input()
	if c.Name != "" {
		in.Name = c.Name
	}
	if c.Description != "" {
		in.Description = c.Description
	}
	c.apply(&in.Active)

	img, err := openImage(c.Image)
	if err != nil {
		return err
	}
	return e.report(m.Update(ctx, in, img))
}

// CategoryDeleteCmd deletes a category.
type CategoryDeleteCmd struct {
	ID int64 `arg:"" help:"Category id."`
}

// Run executes the categories delete command.
func (c *CategoryDeleteCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("categories: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()
	return e.report(e.categories().Delete(ctx, c.ID))
}

// --- subcategories ---

// SubcategoriesCmd groups the subcategory commands.
type SubcategoriesCmd struct {
	List   SubcategoriesListCmd `cmd:"" default:"withargs" help:"List subcategories."`
	Create SubcategoryCreateCmd `cmd:"" help:"Create a subcategory."`
	Update SubcategoryUpdateCmd `cmd:"" help:"Rename or move a subcategory."`
	Delete SubcategoryDeleteCmd `cmd:"" help:"Delete a subcategory."`
}

// SubcategoriesListCmd prints subcategories.
type SubcategoriesListCmd struct {
	Category int64  `help:"Only subcategories of this category." short:"c"`
	Search   string `help:"Case-insensitive name filter." short:"s"`
}

// Run executes the subcategories list command.
func (c *SubcategoriesListCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("subcategories: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()

	m := e.subcategories()
	var items []catalog.Subcategory
	if c.Category > 0 {
		if res := m.FetchFor(ctx, c.Category, false); !res.Success {
			return e.report(res)
		}
		items = catalog.FilterSubcategories(m.ItemsFor(c.Category), catalog.Filter{Search: c.Search})
	} else {
		if res := m.Fetch(ctx, false); !res.Success {
			return e.report(res)
		}
		items = m.Filtered(catalog.Filter{Search: c.Search})
	}

	var rows [][]string
	for _, s := range items {
		rows = append(rows, []string{strconv.FormatInt(s.ID, 10), s.Name, strconv.FormatInt(s.CategoryID, 10), s.CategoryName})
	}
	e.out.Table([]string{"ID", "NAME", "CATEGORY", "CATEGORY NAME"}, rows)
	return nil
}

// SubcategoryCreateCmd creates a subcategory.
type SubcategoryCreateCmd struct {
	Name     string `help:"Subcategory name." required:""`
	Category int64  `help:"Owning category id." required:"" short:"c"`
}

// Run executes the subcategories create command.
func (c *SubcategoryCreateCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("subcategories: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()

	in := catalog.SubcategoryInput{Name: c.Name, CategoryID: c.Category}
	return e.report(e.subcategories().Create(ctx, in))
}

// SubcategoryUpdateCmd renames or moves a subcategory.
type SubcategoryUpdateCmd struct {
	ID       int64  `arg:"" help:"Subcategory id."`
	Name     string `help:"New name."`
	Category int64  `help:"New owning category id." short:"c"`
}

// Run executes the subcategories update command.
func (c *SubcategoryUpdateCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("subcategories: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()

	m := e.subcategories()
	if res := m.Fetch(ctx, false); !res.Success {
		return e.report(res)
	}
	s, ok := m.Get(c.ID)
	if !ok {
		return &opError{msg: fmt.Sprintf("subcategory %d not found", c.ID)}
	}
	in := s.Input()
	if c.Name != "" {
		in.Name = c.Name
	}
	if c.Category > 0 {
		in.CategoryID = c.Category
	}
	return e.report(m.Update(ctx, in))
}

// SubcategoryDeleteCmd deletes a subcategory.
type SubcategoryDeleteCmd struct {
	ID int64 `arg:"" help:"Subcategory id."`
}

// Run executes the subcategories delete command.
func (c *SubcategoryDeleteCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("subcategories: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()
	return e.report(e.subcategories().Delete(ctx, c.ID))
}

// --- products ---

// ProductsCmd groups the product commands.
type ProductsCmd struct {
	List   ProductsListCmd  `cmd:"" default:"withargs" help:"List products."`
	Show   ProductShowCmd   `cmd:"" help:"Show one product."`
	Create ProductCreateCmd `cmd:"" help:"Create a product."`
	Update ProductUpdateCmd `cmd:"" help:"Update a product."`
	Delete ProductDeleteCmd `cmd:"" help:"Delete a product."`
}

// ProductsListCmd prints products.
type ProductsListCmd struct {
	ListFlags `embed:""`

	Category int64 `help:"Only products of this category." short:"c"`
	Recent   int   `help:"Only the N most recently created products."`
	Stats    bool  `help:"Print totals instead of the list."`
}

// Run executes the products list command.
func (c *ProductsListCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("products: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()

	m := e.products()
	var items []catalog.Product
	if c.Category > 0 {
		if res := m.FetchCategory(ctx, c.Category, false); !res.Success {
			return e.report(res)
		}
		items = catalog.FilterProducts(m.ItemsIn(c.Category), c.filter())
	} else {
		if res := m.Fetch(ctx, false); !res.Success {
			return e.report(res)
		}
		items = m.Filtered(c.filter())
	}

	if c.Stats {
		c.printStats(e, catalog.ProductSummary(items))
		return nil
	}
	if c.Recent > 0 {
		items = catalog.RecentProducts(items, c.Recent)
	}
	var rows [][]string
	for _, p := range items {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.CategoryName,
			catalog.FormatBRL(p.EffectivePrice()),
			yesNo(p.Active),
		})
	}
	e.out.Table([]string{"ID", "NAME", "CATEGORY", "PRICE", "ACTIVE"}, rows)
	return nil
}

func (c *ProductsListCmd) printStats(e *env, s catalog.ProductStats) {
	e.out.Fields([][2]string{
		{"Total", strconv.Itoa(s.Total)},
		{"Active", strconv.Itoa(s.Active)},
		{"Inactive", strconv.Itoa(s.Inactive)},
		{"With discount", strconv.Itoa(s.WithDiscount)},
		{"Total value", catalog.FormatBRL(s.TotalValue)},
		{"Average price", catalog.FormatBRL(s.AveragePrice)},
	})
	ids := make([]int64, 0, len(s.ByCategory))
	for id := range s.ByCategory {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	var rows [][]string
	for _, id := range ids {
		cs := s.ByCategory[id]
		rows = append(rows, []string{cs.Name, strconv.Itoa(cs.Count), catalog.FormatBRL(cs.Value)})
	}
	if len(rows) > 0 {
		e.out.Line("")
		e.out.Table([]string{"CATEGORY", "PRODUCTS", "VALUE"}, rows)
	}
}

// ProductShowCmd prints one product.
type ProductShowCmd struct {
	ID int64 `arg:"" help:"Product id."`
}

// Run executes the products show command.
func (c *ProductShowCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("products: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()

	p, res := e.products().Find(ctx, c.ID)
	if !res.Success {
		return &opError{msg: res.Error}
	}
	e.out.Fields(productFields(p))
	return nil
}

func productFields(p catalog.Product) [][2]string {
	var discount, sub string
	if p.HasDiscount() {
		discount = catalog.FormatBRL(*p.DiscountPrice)
	}
	if p.SubcategoryID != nil {
		sub = fmt.Sprintf("%s (%d)", p.SubcategoryName, *p.SubcategoryID)
	}
	var colors []string
	for _, col := range p.ColorList() {
		colors = append(colors, col.Name+" "+col.Hex)
	}
	return [][2]string{
		{"ID", strconv.FormatInt(p.ID, 10)},
		{"Name", p.Name},
		{"Type", p.Type.Label()},
		{"Category", fmt.Sprintf("%s (%d)", p.CategoryName, p.CategoryID)},
		{"Subcategory", sub},
		{"Price", catalog.FormatBRL(p.Price)},
		{"Discount", discount},
		{"Active", yesNo(p.Active)},
		{"Description", p.Description},
		{"Details", p.CompleteDescription},
		{"Colors", strings.Join(colors, ", ")},
		{"Tags", strings.Join(p.Tags, ", ")},
		{"Ingredients", strings.Join(p.Ingredients, ", ")},
		{"How to use", p.HowToUse},
		{"Image", api.ImageURL(p.ImageURL, api.ImageDisplay)},
	}
}

// ProductFlags are the product fields settable from the command line.
type ProductFlags struct {
	Name                string   `help:"Product name."`
	Description         string   `help:"Short description."`
	CompleteDescription string   `help:"Full description; defaults to the short one." name:"complete-description"`
	Category            int64    `help:"Category id." short:"c"`
	Subcategory         int64    `help:"Subcategory id."`
	Price               string   `help:"List price, e.g. 39.90."`
	Discount            string   `help:"Discount price, e.g. 29.90."`
	Type                string   `help:"Product type: STATIC or MULTI_COLOR."`
	Color               []string `help:"Color variant as Name=#RRGGBB or a predefined color name. Repeatable."`
	Tag                 []string `help:"Tag. Repeatable."`
	Ingredient          []string `help:"Ingredient. Repeatable."`
	HowToUse            string   `help:"Usage instructions." name:"how-to-use"`
	Image               string   `help:"JPEG, PNG or GIF image." type:"existingfile"`
}

func parseMoney(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero, &opError{msg: fmt.Sprintf("--%s: %q is not a price", flag, s)}
	}
	return d, nil
}

// apply overwrites the fields of in that were given on the command line.
func (f ProductFlags) apply(in *catalog.ProductInput) error {
	if f.Name != "" {
		in.Name = f.Name
	}
	if f.Description != "" {
		in.Description = f.Description
	}
	if f.CompleteDescription != "" {
		in.CompleteDescription = f.CompleteDescription
	}
	if f.Category > 0 {
		in.CategoryID = f.Category
	}
	if f.Subcategory > 0 {
		id := f.Subcategory
		in.SubcategoryID = &id
	}
	if f.Price != "" {
		d, err := parseMoney("price", f.Price)
		if err != nil {
			return err
		}
		in.Price = d
	}
	if f.Discount != "" {
		d, err := parseMoney("discount", f.Discount)
		if err != nil {
			return err
		}
		in.DiscountPrice = &d
	}
	if f.Type != "" {
		t := catalog.ProductType(strings.ToUpper(f.Type))
		if t != catalog.TypeStatic && t != catalog.TypeMultiColor {
			return &opError{msg: fmt.Sprintf("--type: %q is not STATIC or MULTI_COLOR", f.Type)}
		}
		in.Type = t
	}
	if len(f.Color) > 0 {
		in.Colors = in.Colors[:0:0]
		for _, spec := range f.Color {
			in.Colors = append(in.Colors, catalog.ParseColor(spec))
		}
		if f.Type == "" {
			in.Type = catalog.TypeMultiColor
		}
	}
	if in.Type != catalog.TypeMultiColor {
		in.Colors = nil
	}
	if len(f.Tag) > 0 {
		in.Tags = f.Tag
	}
	if len(f.Ingredient) > 0 {
		in.Ingredients = f.Ingredient
	}
	if f.HowToUse != "" {
		in.HowToUse = f.HowToUse
	}
	return nil
}

// ProductCreateCmd creates a product.
type ProductCreateCmd struct {
	ProductFlags `embed:""`

	Inactive bool `help:"Create the product inactive."`
}

// Run executes the products create command.
func (c *ProductCreateCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("products: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()

	in := catalog.ProductInput{Type: catalog.TypeStatic, Active: !c.Inactive}
	if err := c.apply(&in); err != nil {
		return err
	}
	img, err := openImage(c.Image)
	if err != nil {
		return err
	}
	return e.report(e.products().Create(ctx, in, img))
}

// ProductUpdateCmd changes the given fields of a product.
type ProductUpdateCmd struct {
	ID int64 `arg:"" help:"Product id."`

	ProductFlags `embed:""`
	ActiveFlags  `embed:""`
}

// Run executes the products update command.
func (c *ProductUpdateCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("products: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()

	m := e.products()
	p, res := m.Find(ctx, c.ID)
	if !res.Success {
		return &opError{msg: res.Error}
	}
	in := p.Input()
	if err := c.ProductFlags.apply(&in); err != nil {
		return err
	}
	c.ActiveFlags.apply(&in.Active)

	img, err := openImage(c.Image)
	if err != nil {
		return err
	}
	return e.report(m.Update(ctx, in, img))
}

// ProductDeleteCmd deletes a product.
type ProductDeleteCmd struct {
	ID int64 `arg:"" help:"Product id."`
}

// Run executes the products delete command.
func (c *ProductDeleteCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("products: %w", err)
	}
	defer e.Close()
	ctx, stop := signalContext()
	defer stop()
	return e.report(e.products().Delete(ctx, c.ID))
}
