package contracts

import "time"

const (
	TopicOrders   = "order_events"
	TopicFeedback = "feedback_events"
	TopicProducts = "product_events"
)

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventSalesDigest        = "sales_digest"
	EventFeedbackVoted      = "feedback_voted"
	EventFeedbackCommented  = "feedback_commented"
	EventProductCreated     = "product_created"
	EventProductUpdated     = "product_updated"
	EventProductDeleted     = "product_deleted"
)

type Event struct {
	Type      string         `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload"`
}

func NewEvent(typ string, payload map[string]any) Event {
	return Event{Type: typ, CreatedAt: time.Now().UTC(), Payload: payload}
}
