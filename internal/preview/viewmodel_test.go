package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loopmobile/loop-og/internal/models"
	"github.com/loopmobile/loop-og/internal/store"
)

func strPtr(s string) *string { return &s }

func TestBuildViewModel_Basic(t *testing.T) {
	card := &store.QuestionCard{
		Question:     models.Question{ID: "q1", Text: "How do I negotiate a raise?", CreatorID: "u1"},
		Author:       &models.User{ID: "u1", Name: "Amy"},
		UpvoteCount:  3,
		CommentCount: 0,
	}

	vm := BuildViewModel(card)

	assert.Equal(t, "q1", vm.ID)
	assert.Equal(t, "How do I negotiate a raise?", vm.Text)
	assert.Equal(t, 3, vm.UpvoteCount)
	assert.Equal(t, 0, vm.CommentCount)
	assert.Equal(t, "Amy", vm.Author.Name)
	assert.Nil(t, vm.Author.ProfilePhotoURL)
	assert.Nil(t, vm.Answer)
}

func TestBuildViewModel_AnonymousOverridesAuthor(t *testing.T) {
	// The creator row resolved fine, but anonymity wins unconditionally.
	card := &store.QuestionCard{
		Question: models.Question{ID: "q2", Text: "Is my salary low?", IsAnonymous: true, CreatorID: "u1"},
		Author:   &models.User{ID: "u1", Name: "Amy", ProfilePhotoURL: strPtr("https://cdn.example.com/amy.png")},
	}

	vm := BuildViewModel(card)

	assert.Equal(t, "Anonymous", vm.Author.Name)
	assert.Nil(t, vm.Author.ProfilePhotoURL)
}

func TestBuildViewModel_DeletedCreator(t *testing.T) {
	card := &store.QuestionCard{
		Question: models.Question{ID: "q3", Text: "Which team should I join?", CreatorID: "gone"},
		Author:   nil,
	}

	vm := BuildViewModel(card)

	assert.Equal(t, "", vm.Author.Name)
	assert.Nil(t, vm.Answer)
}

func TestBuildViewModel_AnswerWithMentor(t *testing.T) {
	card := &store.QuestionCard{
		Question: models.Question{ID: "q4", Text: "How to prep for interviews?", CreatorID: "u1"},
		Author:   &models.User{ID: "u1", Name: "Amy"},
		Answer:   &models.Answer{QuestionID: "q4", RawText: "Practice out loud."},
		Mentor:   &models.User{ID: "m1", Name: "Maya", ProfilePhotoURL: strPtr("https://cdn.example.com/maya.png")},
	}

	vm := BuildViewModel(card)

	if assert.NotNil(t, vm.Answer) {
		assert.Equal(t, "Practice out loud.", vm.Answer.RawText)
		if assert.NotNil(t, vm.Answer.Mentor) {
			assert.Equal(t, "Maya", vm.Answer.Mentor.Name)
		}
	}
}

func TestBuildViewModel_AnswerWithoutMentorStillPresent(t *testing.T) {
	// An answer whose mentor account is gone keeps its text.
	card := &store.QuestionCard{
		Question: models.Question{ID: "q5", Text: "Remote or office?", CreatorID: "u1"},
		Answer:   &models.Answer{QuestionID: "q5", RawText: "Depends on the team."},
	}

	vm := BuildViewModel(card)

	if assert.NotNil(t, vm.Answer) {
		assert.Equal(t, "Depends on the team.", vm.Answer.RawText)
		assert.Nil(t, vm.Answer.Mentor)
	}
}
