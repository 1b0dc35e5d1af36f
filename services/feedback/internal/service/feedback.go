package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/identity"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/services/feedback/internal/models"
	"github.com/Skotchmaster/storefront/services/feedback/internal/repo"
)

var (
	ErrValidation   = errors.New("validation")   // 400
	ErrUnauthorized = errors.New("unauthorized") // 401
)

type FeedbackService struct {
	Repo      *repo.GormRepo
	Publisher events.Publisher
	Metrics   *metrics.ShopMetrics
	Now       func() time.Time
}

func (s *FeedbackService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func parseProductID(v string) (uuid.UUID, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return uuid.Nil, fmt.Errorf("%w: Missing productId", ErrValidation)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: Invalid productId", ErrValidation)
	}
	return id, nil
}

// Get returns the stored feedback or an empty record. It never writes.
func (s *FeedbackService) Get(ctx context.Context, productID string) (*models.ProductFeedback, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return nil, err
	}
	fb, err := s.Repo.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return &models.ProductFeedback{ProductID: id}, nil
	}
	return fb, err
}

func (s *FeedbackService) Vote(ctx context.Context, caller identity.Identity, productID string, vote contracts.VoteValue) (*models.ProductFeedback, error) {
	l := logging.FromContext(ctx).With("svc", "feedback.vote")

	if caller.UserID == "" {
		return nil, ErrUnauthorized
	}
	id, err := parseProductID(productID)
	if err != nil {
		return nil, err
	}
	if !vote.Valid() {
		return nil, fmt.Errorf("%w: Invalid vote", ErrValidation)
	}

	fb, result, err := s.Repo.Vote(ctx, id, caller.UserID, string(vote))
	if err != nil {
		l.Error("vote_error", "product_id", id, "user_id", caller.UserID, "error", err)
		return nil, err
	}
	if result == repo.VoteUnchanged {
		return fb, nil
	}

	s.Metrics.FeedbackWritten(contracts.FeedbackTypeVote)
	l.Info("feedback_voted", "product_id", id, "user_id", caller.UserID, "vote", vote, "changed", result == repo.VoteChanged)
	events.Emit(ctx, s.Publisher, contracts.TopicFeedback, id.String(),
		contracts.NewEvent(contracts.EventFeedbackVoted, map[string]any{
			"product_id": id.String(),
			"user_id":    caller.UserID,
			"vote":       string(vote),
			"likes":      fb.Likes,
			"dislikes":   fb.Dislikes,
		}))
	return fb, nil
}

func (s *FeedbackService) Comment(ctx context.Context, caller identity.Identity, productID, text string) (*models.ProductFeedback, error) {
	l := logging.FromContext(ctx).With("svc", "feedback.comment")

	if caller.UserID == "" {
		return nil, ErrUnauthorized
	}
	id, err := parseProductID(productID)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: Comment text required", ErrValidation)
	}

	name := caller.Name
	if name == "" {
		name = caller.Email
	}
	c := &models.FeedbackComment{
		UserID:    caller.UserID,
		Name:      name,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	fb, err := s.Repo.AddComment(ctx, id, c)
	if err != nil {
		l.Error("comment_error", "product_id", id, "user_id", caller.UserID, "error", err)
		return nil, err
	}

	s.Metrics.FeedbackWritten(contracts.FeedbackTypeComment)
	l.Info("feedback_commented", "product_id", id, "user_id", caller.UserID, "comment_id", c.ID)
	events.Emit(ctx, s.Publisher, contracts.TopicFeedback, id.String(),
		contracts.NewEvent(contracts.EventFeedbackCommented, map[string]any{
			"product_id": id.String(),
			"user_id":    caller.UserID,
			"comment_id": c.ID,
		}))
	return fb, nil
}
