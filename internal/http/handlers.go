package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/loopmobile/loop-og/internal/logger"
	"github.com/loopmobile/loop-og/internal/preview"
	"github.com/loopmobile/loop-og/internal/store"
)

// PreviewGenerator is the slice of the preview service the handlers
// need; the concrete type is injected in routes.go.
type PreviewGenerator interface {
	GeneratePreview(ctx context.Context, questionID string) (*preview.Result, error)
}

// Env carries the handlers' collaborators.
type Env struct {
	Previews PreviewGenerator
	Log      *logger.Logger
}

// GetQuestionPreview serves GET /api/questions/preview?id=...
//
// Responses: 400 when id is missing, 404 when the question does not
// exist, 502 when aggregation or upload fails, otherwise 200 with the
// PNG bytes, an immutable cache-control header, and the published
// public URL in X-OG-Image-URL for callers that only want the link.
func (e *Env) GetQuestionPreview(c *gin.Context) {
	questionID := strings.TrimSpace(c.Query("id"))
	if questionID == "" {
		c.String(http.StatusBadRequest, "Missing id")
		return
	}

	res, err := e.Previews.GeneratePreview(c.Request.Context(), questionID)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		c.String(http.StatusNotFound, "Not found")
		return
	case errors.Is(err, preview.ErrUpload):
		e.requestLog(c).WithError(err).Error("preview upload failed")
		c.String(http.StatusBadGateway, "Failed to store preview")
		return
	default:
		e.requestLog(c).WithError(err).Error("preview generation failed")
		c.String(http.StatusBadGateway, "Failed to generate preview")
		return
	}

	// The slot for an id never moves, so clients may cache hard even
	// though a re-publish can overwrite the content behind it.
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("X-OG-Image-URL", res.PublicURL)
	c.Data(http.StatusOK, "image/png", res.Image)
}

// Healthz is a plain liveness probe.
func (e *Env) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (e *Env) requestLog(c *gin.Context) *logrus.Entry {
	return e.Log.WithRequestID(c.GetString(requestIDKey))
}
