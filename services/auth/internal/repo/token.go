package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/auth/internal/models"
)

var ErrTokenRevoked = errors.New("token expired or revoked")

func (r *GormRepo) SaveRefresh(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func usable(tx *gorm.DB, jti, raw string, now time.Time) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("jti = ? AND token_hash = ?", jti, tokens.Sha256Hex(raw)).
		First(&rt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if rt.Revoked || rt.ExpiresAt.Before(now) {
		return nil, ErrTokenRevoked
	}
	return &rt, nil
}

// RotateRefresh revokes the presented token and stores its replacement in a
// single transaction, so a refresh token can be used at most once.
func (r *GormRepo) RotateRefresh(ctx context.Context, oldJTI, oldRaw string, next *models.RefreshToken, now time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := usable(tx, oldJTI, oldRaw, now)
		if err != nil {
			return err
		}
		if err := tx.Model(old).Update("revoked", true).Error; err != nil {
			return err
		}
		return tx.Create(next).Error
	})
}

func (r *GormRepo) RevokeRefresh(ctx context.Context, raw string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokens.Sha256Hex(raw)).
		Update("revoked", true).Error
}
