package preview

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"
)

// AvatarFetcher resolves a profile photo URL to a decoded image. The
// renderer treats any error as "no avatar" and draws an initial badge
// instead, so implementations never fail a render.
type AvatarFetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// HTTPAvatarFetcher fetches avatars over HTTP with a short timeout.
type HTTPAvatarFetcher struct {
	client *http.Client
}

func NewHTTPAvatarFetcher() *HTTPAvatarFetcher {
	return &HTTPAvatarFetcher{client: &http.Client{Timeout: 5 * time.Second}}
}

const maxAvatarBytes = 5 << 20

func (f *HTTPAvatarFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("avatar fetch: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		return nil, fmt.Errorf("avatar decode: %w", err)
	}
	return img, nil
}
