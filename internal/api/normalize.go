package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smileynet/storefront/internal/catalog"
)

// The backend has shipped Portuguese and English field names and several
// response envelopes. All of that is absorbed here; nothing outside this
// file looks at alternate names.

// fields is one decoded JSON object.
type fields map[string]json.RawMessage

// first returns the first present, non-null value among keys.
func (f fields) first(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || string(bytes.TrimSpace(v)) == "null"
}

func (f fields) str(keys ...string) string {
	v, ok := f.first(keys...)
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(v, &s) == nil {
		return s
	}
	return ""
}

// integer accepts numbers and numeric strings.
func (f fields) integer(keys ...string) int64 {
	v, ok := f.first(keys...)
	if !ok {
		return 0
	}
	var n json.Number
	if json.Unmarshal(v, &n) == nil {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if fl, err := n.Float64(); err == nil {
			return int64(fl)
		}
	}
	var s string
	if json.Unmarshal(v, &s) == nil {
		i, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return i
	}
	return 0
}

func (f fields) boolean(def bool, keys ...string) bool {
	v, ok := f.first(keys...)
	if !ok {
		return def
	}
	var b bool
	if json.Unmarshal(v, &b) == nil {
		return b
	}
	return def
}

// decimal accepts numbers and quoted numbers.
func (f fields) decimal(keys ...string) (decimal.Decimal, bool) {
	v, ok := f.first(keys...)
	if !ok {
		return decimal.Zero, false
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(v); err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// object returns the nested object under the first matching key, or nil when
// the value is missing or not an object.
func (f fields) object(keys ...string) fields {
	v, ok := f.first(keys...)
	if !ok {
		return nil
	}
	var o fields
	if json.Unmarshal(v, &o) != nil {
		return nil
	}
	return o
}

func (f fields) strList(keys ...string) []string {
	v, ok := f.first(keys...)
	if !ok {
		return nil
	}
	var ss []string
	if json.Unmarshal(v, &ss) == nil {
		return ss
	}
	// Some endpoints return [{"name": "..."}] for tags and ingredients.
	var objs []fields
	if json.Unmarshal(v, &objs) != nil {
		return nil
	}
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		if s := o.str("name", "nome", "ingredient", "ingrediente"); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (f fields) stringMap(keys ...string) map[string]string {
	v, ok := f.first(keys...)
	if !ok {
		return nil
	}
	var m map[string]string
	if json.Unmarshal(v, &m) != nil {
		return nil
	}
	return m
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timestamp parses ISO timestamps with or without a zone. Zone-less values are UTC.
func (f fields) timestamp(keys ...string) time.Time {
	s := f.str(keys...)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// listItems unwraps {success, data:{content}}, {success, data:[...]},
// {content} or a bare array. Unknown shapes yield an empty list.
func listItems(body []byte) ([]fields, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '[' {
		return decodeArray(body)
	}
	var env fields
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, decodeError(err)
	}
	if data, ok := env.first("data"); ok {
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '[' {
			return decodeArray(data)
		}
		var inner fields
		if json.Unmarshal(data, &inner) == nil {
			if content, ok := inner.first("content"); ok {
				return decodeArray(content)
			}
		}
		return nil, nil
	}
	if content, ok := env.first("content"); ok {
		return decodeArray(content)
	}
	return nil, nil
}

// singleItem unwraps {success, data:{...}} or a bare object.
func singleItem(body []byte) (fields, error) {
	var obj fields
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, decodeError(err)
	}
	if _, hasSuccess := obj["success"]; hasSuccess {
		if data := obj.object("data"); data != nil {
			return data, nil
		}
	}
	return obj, nil
}

func decodeArray(b []byte) ([]fields, error) {
	var items []fields
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, decodeError(err)
	}
	return items, nil
}

func decodeError(err error) *Error {
	return &Error{Code: CodeDecode, Message: fmt.Sprintf("unexpected response: %v", err), Err: err}
}

func toCategory(f fields) catalog.Category {
	return catalog.Category{
		ID:          f.integer("id"),
		Name:        f.str("nome", "name"),
		Description: f.str("descricao", "description"),
		Active:      f.boolean(true, "ativo", "active"),
		ImageURL:    f.str("imageUrl", "imageURL", "imagem", "image"),
	}
}

func toSubcategory(f fields) catalog.Subcategory {
	s := catalog.Subcategory{
		ID:           f.integer("id"),
		Name:         f.str("name", "nome"),
		CategoryID:   f.integer("categoryId", "categoriaId", "categoria_id"),
		CategoryName: f.str("categoryName", "categoriaNome", "categoria_nome"),
	}
	if c := f.object("category_info", "category", "categoria"); c != nil {
		if s.CategoryID == 0 {
			s.CategoryID = c.integer("id")
		}
		if s.CategoryName == "" {
			s.CategoryName = c.str("name", "nome")
		}
	}
	return s
}

func toProduct(f fields) catalog.Product {
	p := catalog.Product{
		ID:                  f.integer("id"),
		Name:                f.str("name", "nome"),
		Slug:                f.str("slug"),
		Description:         f.str("description", "descricao"),
		CompleteDescription: f.str("completeDescription", "descricaoCompleta"),
		CategoryID:          f.integer("categoryId", "categoriaId"),
		CategoryName:        f.str("categoryName", "categoriaNome"),
		SubcategoryName:     f.str("subCategoryName", "subcategoryName", "subcategoriaNome"),
		Type:                catalog.ProductType(strings.ToUpper(f.str("type", "tipo"))),
		Colors:              f.stringMap("colors", "cores"),
		Tags:                f.strList("tags"),
		Ingredients:         f.strList("ingredients", "ingredientes"),
		HowToUse:            f.str("howToUse", "modoUso"),
		Active:              f.boolean(true, "active", "ativo"),
		ImageURL:            f.str("imageURL", "imageUrl", "imagem", "image"),
		CreatedAt:           f.timestamp("createdAt", "createAt"),
		UpdatedAt:           f.timestamp("updatedAt", "updateAt"),
	}
	if p.Type == "" {
		p.Type = catalog.TypeStatic
	}
	p.Price, _ = f.decimal("price", "preco")
	if d, ok := f.decimal("discountPrice", "precoDesconto"); ok && d.IsPositive() {
		p.DiscountPrice = &d
	}

	if c := f.object("category", "categoria"); c != nil {
		if p.CategoryID == 0 {
			p.CategoryID = c.integer("id")
		}
		if p.CategoryName == "" {
			p.CategoryName = c.str("nome", "name")
		}
	} else if p.CategoryName == "" {
		p.CategoryName = f.str("category", "categoria")
	}

	subID := f.integer("subcategoryId", "subCategoryId", "subcategoriaId")
	if sc := f.object("subcategory", "subCategory", "subcategoria"); sc != nil {
		if subID == 0 {
			subID = sc.integer("id")
		}
		if p.SubcategoryName == "" {
			p.SubcategoryName = sc.str("nome", "name")
		}
	}
	if subID > 0 {
		p.SubcategoryID = &subID
	} else {
		// The backend labels a missing subcategory with placeholder text.
		p.SubcategoryName = ""
	}
	return p
}

func mapItems[T any](items []fields, conv func(fields) T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, conv(it))
	}
	return out
}
