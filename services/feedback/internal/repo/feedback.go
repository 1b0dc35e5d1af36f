package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/services/feedback/internal/models"
)

var ErrNotFound = errors.New("not found")

type GormRepo struct {
	DB *gorm.DB
}

// VoteResult reports what a vote did to the record.
type VoteResult int

const (
	VoteAdded VoteResult = iota
	VoteUnchanged
	VoteChanged
)

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Votes", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC, id ASC") })
}

func (r *GormRepo) Get(ctx context.Context, productID uuid.UUID) (*models.ProductFeedback, error) {
	return get(withChildren(r.DB.WithContext(ctx)), productID)
}

func get(db *gorm.DB, productID uuid.UUID) (*models.ProductFeedback, error) {
	var fb models.ProductFeedback
	err := db.Where("product_id = ?", productID).First(&fb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

// lockFeedback creates the record if missing and locks it for the rest of tx.
func lockFeedback(tx *gorm.DB, productID uuid.UUID) (*models.ProductFeedback, error) {
	err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "product_id"}}, DoNothing: true}).
		Create(&models.ProductFeedback{ProductID: productID}).Error
	if err != nil {
		return nil, err
	}
	return get(tx.Clauses(clause.Locking{Strength: "UPDATE"}), productID)
}

func counterColumn(vote string) string {
	if vote == models.VoteDislike {
		return "dislikes"
	}
	return "likes"
}

// Vote records userID's vote on productID. A repeated vote is a no-op and a
// different vote replaces the previous one; counters move with the votes.
func (r *GormRepo) Vote(ctx context.Context, productID uuid.UUID, userID, vote string) (*models.ProductFeedback, VoteResult, error) {
	result := VoteAdded
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fb, err := lockFeedback(tx, productID)
		if err != nil {
			return err
		}

		var existing models.FeedbackVote
		err = tx.Where("feedback_id = ? AND user_id = ?", fb.ID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.FeedbackVote{FeedbackID: fb.ID, UserID: userID, Vote: vote}).Error; err != nil {
				return err
			}
			col := counterColumn(vote)
			return tx.Model(fb).UpdateColumn(col, gorm.Expr(col+" + 1")).Error
		case err != nil:
			return err
		case existing.Vote == vote:
			result = VoteUnchanged
			return nil
		}

		result = VoteChanged
		inc, dec := counterColumn(vote), counterColumn(existing.Vote)
		if err := tx.Model(&models.FeedbackVote{}).Where("id = ?", existing.ID).Update("vote", vote).Error; err != nil {
			return err
		}
		return tx.Model(fb).UpdateColumns(map[string]any{
			inc: gorm.Expr(inc + " + 1"),
			dec: gorm.Expr(dec + " - 1"),
		}).Error
	})
	if err != nil {
		return nil, 0, err
	}
	fb, err := r.Get(ctx, productID)
	return fb, result, err
}

func (r *GormRepo) AddComment(ctx context.Context, productID uuid.UUID, c *models.FeedbackComment) (*models.ProductFeedback, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fb, err := lockFeedback(tx, productID)
		if err != nil {
			return err
		}
		c.FeedbackID = fb.ID
		return tx.Create(c).Error
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, productID)
}
