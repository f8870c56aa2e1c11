package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/smileynet/storefront/internal/api"
	"github.com/smileynet/storefront/internal/catalog"
)

// field is one labeled input. key matches catalog.ValidationError.Field.
type field struct {
	key   string
	label string
	input textinput.Model
}

func newField(key, label, value, placeholder string) field {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.SetValue(value)
	return field{key: key, label: label, input: ti}
}

// formState is a create or edit form for one tab. id is 0 when creating.
type formState struct {
	tab      Tab
	id       int64
	fields   []field
	focus    int
	err      string
	errField string
	saving   bool
}

func (f formState) creating() bool { return f.id == 0 }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func idText(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func newCategoryForm(c *catalog.Category) formState {
	f := formState{tab: TabCategories}
	var in catalog.Category
	in.Active = true
	if c != nil {
		in = *c
		f.id = c.ID
	}
	f.fields = []field{
		newField("Name", "Name", in.Name, "Lips"),
		newField("Description", "Description", in.Description, "Lipsticks, glosses and liners"),
		newField("Active", "Active", yesNo(in.Active), "yes/no"),
		newField("Image", "Image file", "", imagePlaceholder(f.creating())),
	}
	return f.focusAt(0)
}

func newSubcategoryForm(s *catalog.Subcategory, categoryID int64) formState {
	f := formState{tab: TabSubcategories}
	in := catalog.Subcategory{CategoryID: categoryID}
	if s != nil {
		in = *s
		f.id = s.ID
	}
	f.fields = []field{
		newField("Name", "Name", in.Name, "Matte"),
		newField("CategoryID", "Category id", idText(in.CategoryID), "1"),
	}
	return f.focusAt(0)
}

func newProductForm(p *catalog.Product) formState {
	f := formState{tab: TabProducts}
	in := catalog.Product{Active: true, Type: catalog.TypeStatic}
	if p != nil {
		in = *p
		f.id = p.ID
	}
	var sub, discount string
	if in.SubcategoryID != nil {
		sub = idText(*in.SubcategoryID)
	}
	if in.DiscountPrice != nil {
		discount = in.DiscountPrice.StringFixed(2)
	}
	price := ""
	if !in.Price.IsZero() {
		price = in.Price.StringFixed(2)
	}
	f.fields = []field{
		newField("Name", "Name", in.Name, "Velvet Lipstick"),
		newField("Description", "Description", in.Description, "Short description"),
		newField("CompleteDescription", "Full description", in.CompleteDescription, "Defaults to the description"),
		newField("CategoryID", "Category id", idText(in.CategoryID), "1"),
		newField("SubcategoryID", "Subcategory id", sub, "optional"),
		newField("Price", "Price", price, "39.90"),
		newField("DiscountPrice", "Discount price", discount, "optional"),
		newField("Type", "Type", string(in.Type), "STATIC or MULTI_COLOR"),
		newField("Colors", "Colors", formatColors(in.ColorList()), "Ruby=#9B111E, Nude=#E3BC9A"),
		newField("Tags", "Tags", strings.Join(in.Tags, ", "), "comma separated"),
		newField("Ingredients", "Ingredients", strings.Join(in.Ingredients, ", "), "comma separated"),
		newField("HowToUse", "How to use", in.HowToUse, ""),
		newField("Active", "Active", yesNo(in.Active), "yes/no"),
		newField("Image", "Image file", "", imagePlaceholder(f.creating())),
	}
	return f.focusAt(0)
}

func imagePlaceholder(creating bool) string {
	if creating {
		return "path to a jpeg/png"
	}
	return "leave empty to keep the current image"
}

// focusAt moves keyboard focus to field i.
func (f formState) focusAt(i int) formState {
	if len(f.fields) == 0 {
		return f
	}
	i = (i + len(f.fields)) % len(f.fields)
	fields := append([]field(nil), f.fields...)
	for j := range fields {
		if j == i {
			fields[j].input.Focus()
		} else {
			fields[j].input.Blur()
		}
	}
	f.fields = fields
	f.focus = i
	return f
}

// focusKey moves focus to the field named key, if present.
func (f formState) focusKey(key string) formState {
	for i, fl := range f.fields {
		if fl.key == key {
			return f.focusAt(i)
		}
	}
	return f
}

// value returns the trimmed text of the field named key.
func (f formState) value(key string) string {
	for _, fl := range f.fields {
		if fl.key == key {
			return strings.TrimSpace(fl.input.Value())
		}
	}
	return ""
}

// Update feeds a key to the focused input.
func (f formState) Update(msg tea.Msg) (formState, tea.Cmd) {
	if len(f.fields) == 0 {
		return f, nil
	}
	fields := append([]field(nil), f.fields...)
	var cmd tea.Cmd
	fields[f.focus].input, cmd = fields[f.focus].input.Update(msg)
	f.fields = fields
	return f, cmd
}

// failed records a rejected submit and focuses the offending field.
func (f formState) failed(msg, key string) formState {
	f.saving = false
	f.err = msg
	f.errField = key
	if key != "" {
		f = f.focusKey(key)
	}
	return f
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "s", "sim":
		return true
	default:
		return false
	}
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// parseMoney accepts "39.90" or "39,90". Unparseable input yields zero so
// the validator reports the missing price.
func parseMoney(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseColors reads "Name=#RRGGBB, ..." pairs. A bare predefined color name
// takes its preset hex.
func parseColors(s string) []catalog.Color {
	var out []catalog.Color
	for _, part := range splitList(s) {
		out = append(out, catalog.ParseColor(part))
	}
	return out
}

func formatColors(colors []catalog.Color) string {
	parts := make([]string, len(colors))
	for i, c := range colors {
		parts[i] = c.Name + "=" + c.Hex
	}
	return strings.Join(parts, ", ")
}

func (f formState) categoryInput() catalog.CategoryInput {
	return catalog.CategoryInput{
		ID:          f.id,
		Name:        f.value("Name"),
		Description: f.value("Description"),
		Active:      parseBool(f.value("Active")),
	}
}

func (f formState) subcategoryInput() catalog.SubcategoryInput {
	return catalog.SubcategoryInput{
		ID:         f.id,
		Name:       f.value("Name"),
		CategoryID: parseID(f.value("CategoryID")),
	}
}

func (f formState) productInput() catalog.ProductInput {
	in := catalog.ProductInput{
		ID:                  f.id,
		Name:                f.value("Name"),
		Description:         f.value("Description"),
		CompleteDescription: f.value("CompleteDescription"),
		CategoryID:          parseID(f.value("CategoryID")),
		Price:               parseMoney(f.value("Price")),
		Type:                catalog.ProductType(strings.ToUpper(f.value("Type"))),
		Tags:                splitList(f.value("Tags")),
		Ingredients:         splitList(f.value("Ingredients")),
		HowToUse:            f.value("HowToUse"),
		Active:              parseBool(f.value("Active")),
	}
	if in.Type == "" {
		in.Type = catalog.TypeStatic
	}
	if in.Type == catalog.TypeMultiColor {
		in.Colors = parseColors(f.value("Colors"))
	}
	if id := parseID(f.value("SubcategoryID")); id > 0 {
		in.SubcategoryID = &id
	}
	if s := f.value("DiscountPrice"); s != "" {
		d := parseMoney(s)
		in.DiscountPrice = &d
	}
	return in
}

// image opens the chosen image file, or returns nil when none was given.
func (f formState) image() (*api.Upload, error) {
	path := f.value("Image")
	if path == "" {
		return nil, nil
	}
	return api.OpenUpload(path)
}

// View renders the form.
func (f formState) View(width int) string {
	var b strings.Builder
	verb := "Edit"
	if f.creating() {
		verb = "New"
	}
	b.WriteString(titleText.Render(fmt.Sprintf("%s %s", verb, f.tab.Singular())))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, fl := range f.fields {
		labelWidth = max(labelWidth, len(fl.label))
	}
	for i, fl := range f.fields {
		marker := "  "
		if i == f.focus {
			marker = CursorMarker
		}
		label := fmt.Sprintf("%-*s", labelWidth, fl.label)
		if fl.key == f.errField {
			label = errorText.Render(label)
		}
		fmt.Fprintf(&b, "%s%s  %s\n", marker, label, fl.input.View())
	}
	if f.tab == TabProducts {
		b.WriteString("\n" + mutedText.Render("Presets: "+presetNames()) + "\n")
	}
	if f.err != "" {
		b.WriteString("\n" + errorText.Render(f.err) + "\n")
	}
	if f.saving {
		b.WriteString("\nSaving...")
	}
	return strings.TrimRight(b.String(), "\n")
}

func presetNames() string {
	names := make([]string, len(catalog.PredefinedColors))
	for i, c := range catalog.PredefinedColors {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
