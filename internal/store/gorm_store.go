package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/loopmobile/loop-og/internal/models"
)

// GormStore is the query-builder flavor of the data backend, used when
// the service talks to Postgres (or SQLite in development) directly.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// QuestionCard looks up the question and then fans out the four
// independent lookups (author, vote count, comment count, answer with
// mentor). The lookups are read-only and mutually independent, so they
// run concurrently; if any one fails the whole fetch fails.
//
// The count queries are plain COUNT(*) scans over the association
// tables with no upper bound.
func (s *GormStore) QuestionCard(ctx context.Context, questionID string) (*QuestionCard, error) {
	var question models.Question
	err := s.db.WithContext(ctx).First(&question, "id = ?", questionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch question: %w", err)
	}

	card := &QuestionCard{Question: question}

	g, gctx := errgroup.WithContext(ctx)

	// Anonymous questions never show their creator, so the lookup is
	// skipped entirely (the override is unconditional, not a fallback).
	if !question.IsAnonymous {
		g.Go(func() error {
			var author models.User
			err := s.db.WithContext(gctx).First(&author, "id = ?", question.CreatorID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // deleted creator, render falls back to initials
			}
			if err != nil {
				return fmt.Errorf("fetch author: %w", err)
			}
			card.Author = &author
			return nil
		})
	}

	g.Go(func() error {
		err := s.db.WithContext(gctx).Model(&models.Vote{}).
			Where("question_id = ?", questionID).Count(&card.UpvoteCount).Error
		if err != nil {
			return fmt.Errorf("count votes: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.db.WithContext(gctx).Model(&models.Comment{}).
			Where("question_id = ?", questionID).Count(&card.CommentCount).Error
		if err != nil {
			return fmt.Errorf("count comments: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		answer, mentor, err := s.firstAnswer(gctx, questionID)
		if err != nil {
			return err
		}
		card.Answer = answer
		card.Mentor = mentor
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return card, nil
}

// firstAnswer picks the earliest answer, ordered by created_at with id
// as the deterministic tie-break, and resolves its mentor. A missing mentor
// row is not an error: the answer still renders without identity.
func (s *GormStore) firstAnswer(ctx context.Context, questionID string) (*models.Answer, *models.User, error) {
	var answer models.Answer
	err := s.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at asc, id asc").
		First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("fetch answer: %w", err)
	}

	if answer.MentorID == nil {
		return &answer, nil, nil
	}

	var mentor models.User
	err = s.db.WithContext(ctx).First(&mentor, "id = ?", *answer.MentorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &answer, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("fetch mentor: %w", err)
	}
	return &answer, &mentor, nil
}

// SetPreviewURL patches only the preview_image_url column.
func (s *GormStore) SetPreviewURL(ctx context.Context, questionID, url string) error {
	res := s.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", questionID).
		Update("preview_image_url", url)
	if res.Error != nil {
		return fmt.Errorf("update preview url: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
