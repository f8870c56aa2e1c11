package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smileynet/storefront/internal/catalog"
)

// CategoryService maps category operations to /categorias.
type CategoryService struct {
	c *Client
}

// Categories returns the category service.
func (c *Client) Categories() *CategoryService {
	return &CategoryService{c: c}
}

type categoryPayload struct {
	ID        int64  `json:"id,omitempty"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
	Ativo     bool   `json:"ativo"`
}

func newCategoryPayload(in catalog.CategoryInput) categoryPayload {
	return categoryPayload{
		ID:        in.ID,
		Nome:      strings.TrimSpace(in.Name),
		Descricao: strings.TrimSpace(in.Description),
		Ativo:     in.Active,
	}
}

// List returns every category.
func (s *CategoryService) List(ctx context.Context) ([]catalog.Category, error) {
	body, err := s.c.get(ctx, "/categorias", nil)
	if err != nil {
		return nil, err
	}
	items, err := listItems(body)
	if err != nil {
		return nil, err
	}
	return mapItems(items, toCategory), nil
}

// Create posts a new category with its image.
func (s *CategoryService) Create(ctx context.Context, in catalog.CategoryInput, img *Upload) error {
	in.ID = 0
	_, err := s.c.sendMultipart(ctx, http.MethodPost, "/categorias", newCategoryPayload(in), img)
	return err
}

// Update replaces a category. The id travels in the payload; img may be nil.
func (s *CategoryService) Update(ctx context.Context, in catalog.CategoryInput, img *Upload) error {
	_, err := s.c.sendMultipart(ctx, http.MethodPut, "/categorias", newCategoryPayload(in), img)
	return err
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.c.del(ctx, "/categorias/"+strconv.FormatInt(id, 10))
}

// SubcategoryService maps subcategory operations to /subcategorias.
type SubcategoryService struct {
	c *Client
}

// Subcategories returns the subcategory service.
func (c *Client) Subcategories() *SubcategoryService {
	return &SubcategoryService{c: c}
}

type subcategoryPayload struct {
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name"`
	CategoryID int64  `json:"categoryId"`
}

// List returns every subcategory.
func (s *SubcategoryService) List(ctx context.Context) ([]catalog.Subcategory, error) {
	return s.list(ctx, "/subcategorias")
}

// ListByCategory returns the subcategories of one category.
func (s *SubcategoryService) ListByCategory(ctx context.Context, categoryID int64) ([]catalog.Subcategory, error) {
	subs, err := s.list(ctx, "/categorias/subcategorias/"+strconv.FormatInt(categoryID, 10))
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].CategoryID == 0 {
			subs[i].CategoryID = categoryID
		}
	}
	return subs, nil
}

func (s *SubcategoryService) list(ctx context.Context, path string) ([]catalog.Subcategory, error) {
	body, err := s.c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := listItems(body)
	if err != nil {
		return nil, err
	}
	return mapItems(items, toSubcategory), nil
}

// Create posts a new subcategory.
func (s *SubcategoryService) Create(ctx context.Context, in catalog.SubcategoryInput) error {
	_, err := s.c.sendJSON(ctx, http.MethodPost, "/subcategorias", subcategoryPayload{
		Name:       strings.TrimSpace(in.Name),
		CategoryID: in.CategoryID,
	})
	return err
}

// Update renames or moves a subcategory.
func (s *SubcategoryService) Update(ctx context.Context, in catalog.SubcategoryInput) error {
	_, err := s.c.sendJSON(ctx, http.MethodPut, "/subcategorias/"+strconv.FormatInt(in.ID, 10), subcategoryPayload{
		ID:         in.ID,
		Name:       strings.TrimSpace(in.Name),
		CategoryID: in.CategoryID,
	})
	return err
}

// Delete removes a subcategory.
func (s *SubcategoryService) Delete(ctx context.Context, id int64) error {
	return s.c.del(ctx, "/subcategorias/"+strconv.FormatInt(id, 10))
}

// ProductService maps product operations to /produtos.
type ProductService struct {
	c *Client
}

// Products returns the product service.
func (c *Client) Products() *ProductService {
	return &ProductService{c: c}
}

// ProductQuery narrows a product listing. Zero values are omitted.
type ProductQuery struct {
	Page       int
	Size       int
	CategoryID int64
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.CategoryID > 0 {
		v.Set("category", strconv.FormatInt(q.CategoryID, 10))
	}
	return v
}

type productPayload struct {
	Nome              string            `json:"nome"`
	Preco             json.Number       `json:"preco"`
	PrecoDesconto     json.Number       `json:"precoDesconto,omitempty"`
	Descricao         string            `json:"descricao"`
	DescricaoCompleta string            `json:"descricaoCompleta"`
	Ingredientes      []string          `json:"ingredientes"`
	Tags              []string          `json:"tags"`
	ModoUso           string            `json:"modoUso"`
	Ativo             bool              `json:"ativo"`
	Categoria         int64             `json:"categoria"`
	SubCategoria      *int64            `json:"sub_categoria"`
	Tipo              string            `json:"tipo"`
	Cores             map[string]string `json:"cores"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func newProductPayload(in catalog.ProductInput) productPayload {
	p := productPayload{
		Nome:              strings.TrimSpace(in.Name),
		Preco:             number(in.Price),
		Descricao:         strings.TrimSpace(in.Description),
		DescricaoCompleta: strings.TrimSpace(in.CompleteDescription),
		Ingredientes:      nonNil(in.Ingredients),
		Tags:              nonNil(in.Tags),
		ModoUso:           in.HowToUse,
		Ativo:             in.Active,
		Categoria:         in.CategoryID,
		SubCategoria:      in.SubcategoryID,
		Tipo:              string(in.Type),
		Cores:             map[string]string{},
	}
	if p.DescricaoCompleta == "" {
		p.DescricaoCompleta = p.Descricao
	}
	if p.Tipo == "" {
		p.Tipo = string(catalog.TypeStatic)
	}
	if in.DiscountPrice != nil && in.DiscountPrice.IsPositive() {
		p.PrecoDesconto = number(*in.DiscountPrice)
	}
	if in.Type == catalog.TypeMultiColor {
		for _, c := range in.Colors {
			p.Cores[strings.TrimSpace(c.Name)] = strings.ToUpper(c.Hex)
		}
	}
	return p
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// List returns products matching q.
func (s *ProductService) List(ctx context.Context, q ProductQuery) ([]catalog.Product, error) {
	body, err := s.c.get(ctx, "/produtos", q.values())
	if err != nil {
		return nil, err
	}
	items, err := listItems(body)
	if err != nil {
		return nil, err
	}
	return mapItems(items, toProduct), nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id int64) (catalog.Product, error) {
	body, err := s.c.get(ctx, "/produtos/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return catalog.Product{}, err
	}
	item, err := singleItem(body)
	if err != nil {
		return catalog.Product{}, err
	}
	return toProduct(item), nil
}

// Create posts a new product with its image.
func (s *ProductService) Create(ctx context.Context, in catalog.ProductInput, img *Upload) error {
	_, err := s.c.sendMultipart(ctx, http.MethodPost, "/produtos", newProductPayload(in), img)
	return err
}

// Update replaces a product; img may be nil.
func (s *ProductService) Update(ctx context.Context, in catalog.ProductInput, img *Upload) error {
	if in.ID <= 0 {
		return errors.New("api: updating product: missing id")
	}
	_, err := s.c.sendMultipart(ctx, http.MethodPut, "/produtos/"+strconv.FormatInt(in.ID, 10), newProductPayload(in), img)
	return err
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.c.del(ctx, "/produtos/"+strconv.FormatInt(id, 10))
}
