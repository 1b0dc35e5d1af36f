package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/identity"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/feedback/internal/models"
	"github.com/Skotchmaster/storefront/services/feedback/internal/service"
)

type FeedbackHTTP struct {
	Svc *service.FeedbackService
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in.")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func toFeedback(fb *models.ProductFeedback) contracts.Feedback {
	out := contracts.Feedback{
		ProductID: fb.ProductID.String(),
		Likes:     fb.Likes,
		Dislikes:  fb.Dislikes,
		Votes:     make([]contracts.Vote, len(fb.Votes)),
		Comments:  make([]contracts.Comment, len(fb.Comments)),
	}
	for i, v := range fb.Votes {
		out.Votes[i] = contracts.Vote{User: v.UserID, Vote: contracts.VoteValue(v.Vote)}
	}
	for i, c := range fb.Comments {
		out.Comments[i] = contracts.Comment{
			User:  c.UserID,
			Name:  c.Name,
			Image: c.Image,
			Text:  c.Text,
			Date:  c.CreatedAt,
		}
	}
	return out
}

func (h *FeedbackHTTP) GetFeedback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback.get")

	fb, err := h.Svc.Get(ctx, c.Param("productId"))
	if err != nil {
		l.Warn("get_feedback_error", "product_id", c.Param("productId"), "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toFeedback(fb))
}

// PostFeedback records a vote or a comment depending on the body's type.
func (h *FeedbackHTTP) PostFeedback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback.post")
	productID := c.Param("productId")

	who, ok := identity.From(c)
	if !ok {
		l.Warn("post_feedback_error", "status", 401, "reason", "anonymous", "product_id", productID)
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in.")
	}

	var req contracts.FeedbackRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("post_feedback_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	var (
		fb  *models.ProductFeedback
		err error
	)
	switch req.Type {
	case contracts.FeedbackTypeVote:
		fb, err = h.Svc.Vote(ctx, who, productID, req.Vote)
	case contracts.FeedbackTypeComment:
		fb, err = h.Svc.Comment(ctx, who, productID, req.Text)
	default:
		l.Warn("post_feedback_error", "status", 400, "reason", "unknown type", "type", req.Type)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if err != nil {
		l.Warn("post_feedback_error", "product_id", productID, "type", req.Type, "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toFeedback(fb))
}
