package preview

import "github.com/loopmobile/loop-og/internal/store"

// Identity is the displayed name/avatar pair for an author or mentor.
type Identity struct {
	Name            string
	ProfilePhotoURL *string
}

// AnswerView is the optional answer section of the card. Mentor is nil
// when the answer's mentor could not be resolved; the answer text still
// renders on its own.
type AnswerView struct {
	RawText string
	Mentor  *Identity
}

// ViewModel is the flattened, renderer-ready aggregate for one
// question. It is built once per request and never mutated afterwards.
type ViewModel struct {
	ID           string
	Text         string
	UpvoteCount  int
	CommentCount int
	Author       Identity
	Answer       *AnswerView
}

// anonymousIdentity replaces the creator on anonymous questions. The
// substitution is unconditional: it applies even when the creator row
// resolved fine.
var anonymousIdentity = Identity{Name: "Anonymous"}

// BuildViewModel flattens a fetched question card into the ViewModel
// the renderer consumes.
func BuildViewModel(card *store.QuestionCard) ViewModel {
	vm := ViewModel{
		ID:           card.Question.ID,
		Text:         card.Question.Text,
		UpvoteCount:  int(card.UpvoteCount),
		CommentCount: int(card.CommentCount),
		Author:       anonymousIdentity,
	}

	if !card.Question.IsAnonymous && card.Author != nil {
		vm.Author = Identity{Name: card.Author.Name, ProfilePhotoURL: card.Author.ProfilePhotoURL}
	} else if !card.Question.IsAnonymous {
		// Creator row is gone; keep an empty identity so the renderer
		// falls back to its fixed initial badge.
		vm.Author = Identity{}
	}

	if card.Answer != nil {
		av := &AnswerView{RawText: card.Answer.RawText}
		if card.Mentor != nil {
			av.Mentor = &Identity{Name: card.Mentor.Name, ProfilePhotoURL: card.Mentor.ProfilePhotoURL}
		}
		vm.Answer = av
	}

	return vm
}
