package contracts

import "time"

type VoteValue string

const (
	VoteLike    VoteValue = "like"
	VoteDislike VoteValue = "dislike"
)

func (v VoteValue) Valid() bool {
	return v == VoteLike || v == VoteDislike
}

const (
	FeedbackTypeVote    = "vote"
	FeedbackTypeComment = "comment"
)

// FeedbackRequest is the tagged body of POST /feedback/:productId.
// Type selects which of Vote or Text is meaningful.
type FeedbackRequest struct {
	Type string    `json:"type"`
	Vote VoteValue `json:"vote,omitempty"`
	Text string    `json:"text,omitempty"`
}

type Vote struct {
	User string    `json:"user"`
	Vote VoteValue `json:"vote"`
}

type Comment struct {
	User  string    `json:"user"`
	Name  string    `json:"name"`
	Image *string   `json:"image"`
	Text  string    `json:"text"`
	Date  time.Time `json:"date"`
}

type Feedback struct {
	ProductID string    `json:"productId"`
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
	Votes     []Vote    `json:"votes"`
	Comments  []Comment `json:"comments"`
}
