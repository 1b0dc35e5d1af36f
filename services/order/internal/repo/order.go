package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/services/order/internal/models"
)

var ErrNotFound = errors.New("not found")

type GormRepo struct {
	DB *gorm.DB
}

// Filter narrows a listing. Zero values mean no restriction.
type Filter struct {
	UserID uuid.UUID
	From   time.Time
	To     time.Time
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lines", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Lines.Product")
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := withLines(r.DB.WithContext(ctx)).Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns newest first with lines and product details loaded.
func (r *GormRepo) ListOrders(ctx context.Context, f Filter) ([]models.Order, error) {
	q := withLines(r.DB.WithContext(ctx)).Model(&models.Order{})
	if f.UserID != uuid.Nil {
		q = q.Where("user_id = ?", f.UserID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To.UTC())
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus changes only the status column under a row lock.
func (r *GormRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			Where("id = ?", id).
			First(&o).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
	})
}

// ExistingProducts returns the subset of ids present in the catalog.
func (r *GormRepo) ExistingProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ProductRef, error) {
	var found []models.ProductRef
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.ProductRef, len(found))
	for _, p := range found {
		out[p.ID] = p
	}
	return out, nil
}
