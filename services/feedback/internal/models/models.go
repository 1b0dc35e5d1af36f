package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	VoteLike    = "like"
	VoteDislike = "dislike"
)

// ProductFeedback is created on the first vote or comment for a product.
// Likes and Dislikes always equal the number of Votes with that value.
type ProductFeedback struct {
	ID        uint              `gorm:"primaryKey"`
	ProductID uuid.UUID         `gorm:"type:uuid;uniqueIndex;not null"`
	Likes     int               `gorm:"not null;default:0;check:likes >= 0"`
	Dislikes  int               `gorm:"not null;default:0;check:dislikes >= 0"`
	Votes     []FeedbackVote    `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE"`
	Comments  []FeedbackComment `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProductFeedback) TableName() string { return "product_feedback" }

type FeedbackVote struct {
	ID         uint   `gorm:"primaryKey"`
	FeedbackID uint   `gorm:"not null;uniqueIndex:idx_feedback_vote_user"`
	UserID     string `gorm:"not null;size:64;uniqueIndex:idx_feedback_vote_user"`
	Vote       string `gorm:"not null;size:16"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type FeedbackComment struct {
	ID         uint   `gorm:"primaryKey"`
	FeedbackID uint   `gorm:"not null;index"`
	UserID     string `gorm:"not null;size:64"`
	Name       string
	Image      *string
	Text       string `gorm:"not null"`
	CreatedAt  time.Time
}
