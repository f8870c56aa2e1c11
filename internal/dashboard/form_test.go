package dashboard

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/smileynet/storefront/internal/catalog"
)

func setField(f formState, key, value string) formState {
	fields := append([]field(nil), f.fields...)
	for i := range fields {
		if fields[i].key == key {
			fields[i].input.SetValue(value)
		}
	}
	f.fields = fields
	return f
}

func TestParseColors(t *testing.T) {
	tests := []struct {
		in   string
		want []catalog.Color
	}{
		{in: "", want: nil},
		{in: "Ruby=#9B111E", want: []catalog.Color{{Name: "Ruby", Hex: "#9B111E"}}},
		{in: " Ruby = #9B111E , gold", want: []catalog.Color{{Name: "Ruby", Hex: "#9B111E"}, {Name: "gold", Hex: "#FFD700"}}},
		{in: "Mystery", want: []catalog.Color{{Name: "Mystery", Hex: ""}}},
	}
	for _, tt := range tests {
		got := parseColors(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("parseColors(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseColors(%q)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseMoney(t *testing.T) {
	tests := map[string]string{
		"39.90": "39.9",
		"39,90": "39.9",
		"":      "0",
		"abc":   "0",
	}
	for in, want := range tests {
		if got := parseMoney(in).String(); got != want {
			t.Errorf("parseMoney(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"yes", "Y", "true", "1", "sim"} {
		if !parseBool(s) {
			t.Errorf("parseBool(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"no", "", "0", "maybe"} {
		if parseBool(s) {
			t.Errorf("parseBool(%q) = true, want false", s)
		}
	}
}

func TestProductForm_RoundTrip(t *testing.T) {
	// Given: an existing multi-color product on sale
	discount := decimal.RequireFromString("29.90")
	sub := int64(4)
	p := catalog.Product{
		ID:            7,
		Name:          "Velvet",
		Description:   "Matte",
		CategoryID:    2,
		SubcategoryID: &sub,
		Price:         decimal.RequireFromString("39.90"),
		DiscountPrice: &discount,
		Type:          catalog.TypeMultiColor,
		Colors:        map[string]string{"Ruby": "#9B111E"},
		Tags:          []string{"matte", "long-lasting"},
		Active:        true,
	}

	// When: the edit form is built and read back
	in := newProductForm(&p).productInput()

	// Then: every editable field survives
	if in.ID != 7 || in.Name != "Velvet" || in.CategoryID != 2 {
		t.Errorf("identity = %d %q %d", in.ID, in.Name, in.CategoryID)
	}
	if in.SubcategoryID == nil || *in.SubcategoryID != 4 {
		t.Errorf("SubcategoryID = %v, want 4", in.SubcategoryID)
	}
	if !in.Price.Equal(p.Price) {
		t.Errorf("Price = %s, want %s", in.Price, p.Price)
	}
	if in.DiscountPrice == nil || !in.DiscountPrice.Equal(discount) {
		t.Errorf("DiscountPrice = %v, want %s", in.DiscountPrice, discount)
	}
	if len(in.Colors) != 1 || in.Colors[0] != (catalog.Color{Name: "Ruby", Hex: "#9B111E"}) {
		t.Errorf("Colors = %v", in.Colors)
	}
	if len(in.Tags) != 2 || !in.Active {
		t.Errorf("Tags = %v Active = %v", in.Tags, in.Active)
	}
}

func TestProductForm_StaticIgnoresColors(t *testing.T) {
	f := newProductForm(nil)
	f = setField(f, "Type", "static")
	f = setField(f, "Colors", "Ruby=#9B111E")

	in := f.productInput()

	if in.Type != catalog.TypeStatic {
		t.Errorf("Type = %q, want %q", in.Type, catalog.TypeStatic)
	}
	if in.Colors != nil {
		t.Errorf("Colors = %v, want nil for static products", in.Colors)
	}
	if in.DiscountPrice != nil {
		t.Errorf("DiscountPrice = %v, want nil when empty", in.DiscountPrice)
	}
}

func TestForm_FocusWrapsAndFailedFocusesField(t *testing.T) {
	f := newCategoryForm(nil)

	f = f.focusAt(-1)
	if got := f.fields[f.focus].key; got != "Image" {
		t.Errorf("focusAt(-1) = %q, want last field Image", got)
	}

	f = f.failed(catalog.MsgCategoryNameRequired, "Name")
	if f.focus != 0 || f.errField != "Name" || f.err != catalog.MsgCategoryNameRequired {
		t.Errorf("failed() focus=%d errField=%q err=%q", f.focus, f.errField, f.err)
	}
	if !containsPlainText(f.View(60), catalog.MsgCategoryNameRequired) {
		t.Error("form view should show the error")
	}
	if !containsPlainText(f.View(60), "New category") {
		t.Error("form view should title a create form")
	}
}

func TestForm_MissingImageFile(t *testing.T) {
	f := setField(newCategoryForm(nil), "Image", "/does/not/exist.png")

	if _, err := f.image(); err == nil {
		t.Error("image() should fail for a missing file")
	}
	if img, err := newCategoryForm(nil).image(); img != nil || err != nil {
		t.Errorf("image() with no path = %v, %v; want nil, nil", img, err)
	}
}
