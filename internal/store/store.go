package store

import (
	"context"
	"errors"

	"github.com/loopmobile/loop-og/internal/models"
)

// ErrNotFound is returned when no question exists for the requested id.
// Callers map it to a 404; every other error is a backend failure.
var ErrNotFound = errors.New("question not found")

// QuestionCard bundles the rows and counts the preview pipeline needs
// for one question. Author is nil when the creator row is missing or
// the lookup was skipped for an anonymous question; Answer and Mentor
// are nil when absent.
type QuestionCard struct {
	Question     models.Question
	Author       *models.User
	UpvoteCount  int64
	CommentCount int64
	Answer       *models.Answer
	Mentor       *models.User
}

// Store is the read/write surface of the data backend. Both the GORM
// query-builder store and the Supabase REST store implement it.
type Store interface {
	// QuestionCard fetches the question and its display associations.
	// Returns ErrNotFound when the question does not exist.
	QuestionCard(ctx context.Context, questionID string) (*QuestionCard, error)

	// SetPreviewURL records the published preview URL on the question
	// row. It touches no other column.
	SetPreviewURL(ctx context.Context, questionID, url string) error
}
