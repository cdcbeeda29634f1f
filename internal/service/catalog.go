package service

import (
	"context"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	defaultSort     = "-createdAt"
)

var sortable = map[string]bool{"createdAt": true, "price": true, "rating": true, "title": true}

// ProductQuery is a listing request. Zero Page/Limit take defaults.
type ProductQuery struct {
	Category    string
	NewArrivals bool
	Featured    bool
	Search      string
	Sort        string
	Page        int
	Limit       int
}

type Page struct {
	Count       int              `json:"count"`
	Total       int64            `json:"total"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Category    string           `json:"category,omitempty"`
	Products    []domain.Product `json:"products"`
}

type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) List(ctx context.Context, q ProductQuery) (*Page, error) {
	page, limit := normalizePage(q.Page, q.Limit)
	search := strings.TrimSpace(q.Search)
	f := repository.ProductFilter{
		ActiveOnly:  true,
		Category:    domain.Category(strings.ToLower(strings.TrimSpace(q.Category))),
		NewArrivals: q.NewArrivals,
		Featured:    q.Featured,
		Search:      search,
		Sort:        parseSort(q.Sort, search != ""),
		Skip:        int64(page-1) * int64(limit),
		Limit:       int64(limit),
	}

	var (
		products []domain.Product
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.products.List(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.products.Count(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal(err)
	}

	for i := range products {
		products[i].Image = products[i].FirstImage()
	}
	return &Page{
		Count:       len(products),
		Total:       total,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		CurrentPage: page,
		Products:    products,
	}, nil
}

func (s *CatalogService) Search(ctx context.Context, q string, page, limit int) (*Page, error) {
	if strings.TrimSpace(q) == "" {
		return nil, apperr.InvalidInput("Query parameter q is required", "q")
	}
	return s.List(ctx, ProductQuery{Search: q, Page: page, Limit: limit})
}

func (s *CatalogService) ByCategory(ctx context.Context, category, sort string, page, limit int) (*Page, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperr.InvalidInput("Category is required", "category")
	}
	p, err := s.List(ctx, ProductQuery{Category: category, Sort: sort, Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}
	p.Category = category
	return p, nil
}

// Get returns an active product. Malformed ids read as "not found".
func (s *CatalogService) Get(ctx context.Context, rawID string) (*domain.Product, error) {
	id, err := parseID(rawID, "Product not found")
	if err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	if !p.IsActive {
		return nil, apperr.NotFound("Product not found")
	}
	p.Image = p.FirstImage()
	return p, nil
}

// normalizePage applies defaults and caps the page so the skip offset stays
// within int32, which both stores accept.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

// parseSort reads "-createdAt,price" style keys, dropping unknown fields. With
// no usable key a text search keeps relevance order, otherwise newest first.
func parseSort(raw string, searching bool) []repository.SortField {
	var out []repository.SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if sortable[field] {
			out = append(out, repository.SortField{Field: field, Desc: desc})
		}
	}
	if len(out) > 0 || searching {
		return out
	}
	return parseSort(defaultSort, false)
}
