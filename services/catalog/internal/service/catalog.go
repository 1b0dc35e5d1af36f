package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/search"
	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
)

// Indexer is the product search index.
type Indexer interface {
	Put(ctx context.Context, doc search.Document) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []string, error)
}

type CatalogService struct {
	Repo      *repo.GormRepo
	Index     Indexer
	Publisher events.Publisher
}

type ProductInput struct {
	Title       string
	Price       *float64
	Image       string
	Description string
	Category    string
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "" || in.Price == nil || in.Image == "" ||
		strings.TrimSpace(in.Description) == "" || in.Category == "":
		return fmt.Errorf("%w: All fields are required", ErrValidation)
	case len(strings.TrimSpace(in.Title)) > 100:
		return fmt.Errorf("%w: Title cannot be more than 100 characters", ErrValidation)
	case len(in.Description) > 500:
		return fmt.Errorf("%w: Description cannot be more than 500 characters", ErrValidation)
	case *in.Price < 0:
		return fmt.Errorf("%w: Price cannot be negative", ErrValidation)
	case !models.ValidCategory(in.Category):
		return fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	}
	return nil
}

func (in ProductInput) model() models.Product {
	return models.Product{
		Title:       strings.TrimSpace(in.Title),
		Price:       *in.Price,
		Image:       in.Image,
		Description: in.Description,
		Category:    in.Category,
	}
}

func document(p *models.Product) search.Document {
	return search.Document{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Image:       p.Image,
	}
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: Product not found", ErrNotFound)
	}
	return p, err
}

func (s *CatalogService) ListProducts(ctx context.Context, category string, offset, limit int) (int64, []models.Product, error) {
	if category != "" && !models.ValidCategory(category) {
		return 0, nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	return s.Repo.ListProducts(ctx, category, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := in.model()
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, contracts.EventProductCreated, &p)
	return &p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.Repo.UpdateProduct(ctx, id, in.model())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: Product not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, contracts.EventProductUpdated, p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: Product not found", ErrNotFound)
		}
		return err
	}
	l := logging.FromContext(ctx)
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id.String()); err != nil {
			l.Error("index_product_error", "product_id", id, "error", err)
		}
	}
	events.Emit(ctx, s.Publisher, contracts.TopicProducts, id.String(),
		contracts.NewEvent(contracts.EventProductDeleted, map[string]any{"product_id": id.String()}))
	return nil
}

// Search uses the index when configured, falling back to the database if the
// index is absent or failing.
func (s *CatalogService) Search(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: q is required", ErrValidation)
	}
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			uuids := make([]uuid.UUID, 0, len(ids))
			for _, id := range ids {
				if u, perr := uuid.Parse(id); perr == nil {
					uuids = append(uuids, u)
				}
			}
			items, err := s.Repo.ProductsByIDs(ctx, uuids)
			return total, items, err
		}
		l.Warn("search_index_error", "reason", "falling back to database", "error", err)
	}
	return s.Repo.SearchProducts(ctx, query, offset, limit)
}

func (s *CatalogService) ListBanners(ctx context.Context) ([]models.Banner, error) {
	return s.Repo.ListBanners(ctx)
}

func (s *CatalogService) CreateBanner(ctx context.Context, title, link, image string) (*models.Banner, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(link) == "" || strings.TrimSpace(image) == "" {
		return nil, fmt.Errorf("%w: Missing required fields", ErrValidation)
	}
	b := &models.Banner{Title: strings.TrimSpace(title), Link: link, Image: image}
	if err := s.Repo.CreateBanner(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *CatalogService) afterWrite(ctx context.Context, eventType string, p *models.Product) {
	if s.Index != nil {
		if err := s.Index.Put(ctx, document(p)); err != nil {
			logging.FromContext(ctx).Error("index_product_error", "product_id", p.ID, "error", err)
		}
	}
	events.Emit(ctx, s.Publisher, contracts.TopicProducts, p.ID.String(),
		contracts.NewEvent(eventType, map[string]any{
			"product_id": p.ID.String(),
			"title":      p.Title,
			"price":      p.Price,
			"category":   p.Category,
		}))
}
