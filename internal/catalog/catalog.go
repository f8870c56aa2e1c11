// Package catalog defines the storefront domain types (categories,
// subcategories, products) along with filtering, statistics and local input
// validation. It has no knowledge of the wire format; see internal/api.
package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductType distinguishes single-variant products from color variants.
type ProductType string

const (
	TypeStatic     ProductType = "STATIC"
	TypeMultiColor ProductType = "MULTI_COLOR"
)

// Label returns the human-readable name of the product type.
func (t ProductType) Label() string {
	if t == TypeMultiColor {
		return "Multi-color product"
	}
	return "Simple product"
}

// Category is a top-level catalog grouping.
type Category struct {
	ID          int64
	Name        string
	Description string
	Active      bool
	ImageURL    string
}

// Subcategory belongs to exactly one category.
type Subcategory struct {
	ID           int64
	Name         string
	CategoryID   int64
	CategoryName string
}

// Product is a sellable catalog item.
type Product struct {
	ID                  int64
	Name                string
	Slug                string
	Description         string
	CompleteDescription string
	Price               decimal.Decimal
	DiscountPrice       *decimal.Decimal // nil when there is no discount
	CategoryID          int64
	CategoryName        string
	SubcategoryID       *int64
	SubcategoryName     string
	Type                ProductType
	Colors              map[string]string // color name -> #RRGGBB
	Tags                []string
	Ingredients         []string
	HowToUse            string
	Active              bool
	ImageURL            string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasDiscount reports whether the product carries a positive discount price.
func (p Product) HasDiscount() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.IsPositive()
}

// EffectivePrice returns the discount price when present, else the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.HasDiscount() {
		return *p.DiscountPrice
	}
	return p.Price
}

// Color is a single named color variant.
type Color struct {
	Name string
	Hex  string
}

// ColorList returns the product colors sorted by name.
func (p Product) ColorList() []Color {
	out := make([]Color, 0, len(p.Colors))
	for name, hex := range p.Colors {
		out = append(out, Color{Name: name, Hex: hex})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PredefinedColors offers quick picks for multi-color products.
var PredefinedColors = []Color{
	{"White", "#FFFFFF"},
	{"Black", "#000000"},
	{"Gray", "#808080"},
	{"Red", "#FF0000"},
	{"Green", "#00FF00"},
	{"Blue", "#0000FF"},
	{"Yellow", "#FFFF00"},
	{"Magenta", "#FF00FF"},
	{"Cyan", "#00FFFF"},
	{"Beige", "#F5F5DC"},
	{"Brown", "#8B4513"},
	{"Pink", "#FFC0CB"},
	{"Gold", "#FFD700"},
	{"Silver", "#C0C0C0"},
	{"Navy", "#000080"},
	{"Olive", "#556B2F"},
	{"Purple", "#800080"},
	{"Orange", "#FFA500"},
	{"Turquoise", "#40E0D0"},
}

// ParseColor reads "Name=#RRGGBB". A bare name takes the hex of the matching
// predefined color, or "" when there is none.
func ParseColor(spec string) Color {
	name, hex, ok := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if !ok {
		for _, c := range PredefinedColors {
			if strings.EqualFold(c.Name, name) {
				return Color{Name: name, Hex: c.Hex}
			}
		}
	}
	return Color{Name: name, Hex: strings.TrimSpace(hex)}
}

// Input returns the editable fields of c, for updates.
func (c Category) Input() CategoryInput {
	return CategoryInput{ID: c.ID, Name: c.Name, Description: c.Description, Active: c.Active}
}

// Input returns the editable fields of s, for updates.
func (s Subcategory) Input() SubcategoryInput {
	return SubcategoryInput{ID: s.ID, Name: s.Name, CategoryID: s.CategoryID}
}

// Input returns the editable fields of p, for updates. Colors are kept only
// for multi-color products.
func (p Product) Input() ProductInput {
	in := ProductInput{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		CompleteDescription: p.CompleteDescription,
		CategoryID:          p.CategoryID,
		SubcategoryID:       p.SubcategoryID,
		Price:               p.Price,
		DiscountPrice:       p.DiscountPrice,
		Type:                p.Type,
		Tags:                p.Tags,
		Ingredients:         p.Ingredients,
		HowToUse:            p.HowToUse,
		Active:              p.Active,
	}
	if p.Type == TypeMultiColor {
		in.Colors = p.ColorList()
	}
	return in
}
