package preview

import (
	"context"
	"errors"
	"fmt"

	"github.com/loopmobile/loop-og/internal/logger"
	"github.com/loopmobile/loop-og/internal/metrics"
	"github.com/loopmobile/loop-og/internal/storage"
	"github.com/loopmobile/loop-og/internal/store"
)

// ErrUpload marks a failed artifact upload. Unlike a failed record
// write-back it fails the whole request, because the URL the response
// advertises would not resolve.
var ErrUpload = errors.New("preview upload failed")

// Result is the outcome of one preview generation: the PNG bytes that
// go on the wire and the public URL the artifact lives at.
type Result struct {
	Image     []byte
	PublicURL string
}

// Service runs the aggregate → render → publish pipeline for one
// question id. It holds no per-request state; every invocation is
// independent.
type Service struct {
	store    store.Store
	objects  storage.ObjectStore
	renderer *Renderer
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(st store.Store, objects storage.ObjectStore, renderer *Renderer, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{store: st, objects: objects, renderer: renderer, log: log, metrics: m}
}

// ArtifactPath returns the storage key for a question's preview. The
// same id always maps to the same slot; uploads overwrite in place.
func ArtifactPath(questionID string) string {
	return "previews/" + questionID + ".png"
}

// GeneratePreview fetches the question's display data, renders the
// card, uploads it, and records the public URL on the question row.
//
// Error mapping for callers: store.ErrNotFound means the question does
// not exist; ErrUpload means the artifact could not be stored; any
// other error is a backend failure during aggregation. A failed URL
// write-back is deliberately not an error: the artifact is already
// uploaded and servable, so the inconsistency is logged and counted
// instead.
func (s *Service) GeneratePreview(ctx context.Context, questionID string) (*Result, error) {
	card, err := s.store.QuestionCard(ctx, questionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("aggregate question %s: %w", questionID, err)
	}

	vm := BuildViewModel(card)

	img, err := s.renderer.Render(ctx, vm)
	if err != nil {
		return nil, fmt.Errorf("render question %s: %w", questionID, err)
	}
	s.metrics.PreviewsRendered.Inc()

	path := ArtifactPath(questionID)
	if err := s.objects.Upload(ctx, path, img, "image/png", true); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	s.metrics.PreviewsPublished.Inc()

	publicURL := s.objects.PublicURL(path)

	if err := s.store.SetPreviewURL(ctx, questionID, publicURL); err != nil {
		// Storage and database now disagree; the next successful
		// publish for this id heals it.
		s.metrics.RecordUpdateFailure.Inc()
		s.log.WithQuestionID(questionID).WithError(err).
			Warn("preview uploaded but preview_image_url write-back failed")
	}

	return &Result{Image: img, PublicURL: publicURL}, nil
}
