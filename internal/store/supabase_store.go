package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loopmobile/loop-og/internal/models"
)

// SupabaseStore is the REST flavor of the data backend. It talks to a
// Supabase project's PostgREST endpoint with the service-role key, so
// it sees all rows regardless of row-level security.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewSupabaseStore(baseURL, serviceKey string) *SupabaseStore {
	return &SupabaseStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

type restQuestion struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	IsAnonymous     bool    `json:"is_anonymous"`
	CreatorID       string  `json:"creator_id"`
	PreviewImageURL *string `json:"preview_image_url"`
}

type restUser struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ProfilePhotoURL *string `json:"profile_photo_url"`
}

type restAnswer struct {
	ID         uint    `json:"id"`
	QuestionID string  `json:"question_id"`
	MentorID   *string `json:"mentor_id"`
	RawText    string  `json:"raw_text"`
}

// QuestionCard mirrors GormStore.QuestionCard over PostgREST: one point
// lookup for the question, then the four association lookups fanned out
// concurrently with all-or-none error propagation.
func (s *SupabaseStore) QuestionCard(ctx context.Context, questionID string) (*QuestionCard, error) {
	var questions []restQuestion
	err := s.getJSON(ctx, "questions", url.Values{
		"id":     {"eq." + questionID},
		"select": {"id,text,is_anonymous,creator_id,preview_image_url"},
	}, &questions)
	if err != nil {
		return nil, fmt.Errorf("fetch question: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNotFound
	}
	q := questions[0]

	card := &QuestionCard{Question: models.Question{
		ID:              q.ID,
		Text:            q.Text,
		IsAnonymous:     q.IsAnonymous,
		CreatorID:       q.CreatorID,
		PreviewImageURL: q.PreviewImageURL,
	}}

	g, gctx := errgroup.WithContext(ctx)

	if !q.IsAnonymous {
		g.Go(func() error {
			author, err := s.fetchUser(gctx, q.CreatorID)
			if err != nil {
				return fmt.Errorf("fetch author: %w", err)
			}
			card.Author = author
			return nil
		})
	}

	g.Go(func() error {
		n, err := s.count(gctx, "votes", questionID)
		if err != nil {
			return fmt.Errorf("count votes: %w", err)
		}
		card.UpvoteCount = n
		return nil
	})

	g.Go(func() error {
		n, err := s.count(gctx, "comments", questionID)
		if err != nil {
			return fmt.Errorf("count comments: %w", err)
		}
		card.CommentCount = n
		return nil
	})

	g.Go(func() error {
		var answers []restAnswer
		err := s.getJSON(gctx, "answers", url.Values{
			"question_id": {"eq." + questionID},
			"select":      {"id,question_id,mentor_id,raw_text"},
			// Same tie-break as the query-builder store.
			"order": {"created_at.asc,id.asc"},
			"limit": {"1"},
		}, &answers)
		if err != nil {
			return fmt.Errorf("fetch answer: %w", err)
		}
		if len(answers) == 0 {
			return nil
		}
		a := answers[0]
		card.Answer = &models.Answer{
			ID:         a.ID,
			QuestionID: a.QuestionID,
			MentorID:   a.MentorID,
			RawText:    a.RawText,
		}
		if a.MentorID != nil {
			mentor, err := s.fetchUser(gctx, *a.MentorID)
			if err != nil {
				return fmt.Errorf("fetch mentor: %w", err)
			}
			card.Mentor = mentor
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return card, nil
}

// SetPreviewURL patches the single preview_image_url column on the
// question row.
func (s *SupabaseStore) SetPreviewURL(ctx context.Context, questionID, publicURL string) error {
	body, err := json.Marshal(map[string]string{"preview_image_url": publicURL})
	if err != nil {
		return err
	}

	endpoint := s.baseURL + "/rest/v1/questions?id=eq." + url.QueryEscape(questionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("update preview url: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("update preview url: status %d", resp.StatusCode)
	}
	return nil
}

// fetchUser returns nil (no error) when the user row is gone; the
// renderer degrades to an initial badge in that case.
func (s *SupabaseStore) fetchUser(ctx context.Context, userID string) (*models.User, error) {
	var users []restUser
	err := s.getJSON(ctx, "users", url.Values{
		"id":     {"eq." + userID},
		"select": {"id,name,profile_photo_url"},
	}, &users)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	u := users[0]
	return &models.User{ID: u.ID, Name: u.Name, ProfilePhotoURL: u.ProfilePhotoURL}, nil
}

// count asks PostgREST for an exact count without pulling rows back:
// Range 0-0 plus Prefer count=exact yields the total in Content-Range
// ("0-0/42"). This is still an unbounded scan on the backend.
func (s *SupabaseStore) count(ctx context.Context, table, questionID string) (int64, error) {
	endpoint := s.baseURL + "/rest/v1/" + table + "?" + url.Values{
		"question_id": {"eq." + questionID},
		"select":      {"id"},
	}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	s.authorize(req)
	req.Header.Set("Prefer", "count=exact")
	req.Header.Set("Range", "0-0")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusRequestedRangeNotSatisfiable {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	contentRange := resp.Header.Get("Content-Range")
	idx := strings.LastIndex(contentRange, "/")
	if idx < 0 {
		return 0, fmt.Errorf("missing Content-Range header")
	}
	total := contentRange[idx+1:]
	if total == "*" {
		return 0, fmt.Errorf("backend did not return an exact count")
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad Content-Range %q: %w", contentRange, err)
	}
	return n, nil
}

func (s *SupabaseStore) getJSON(ctx context.Context, table string, params url.Values, out interface{}) error {
	endpoint := s.baseURL + "/rest/v1/" + table + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *SupabaseStore) authorize(req *http.Request) {
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
}
