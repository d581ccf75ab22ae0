package storage

import "context"

// ObjectStore is the upload surface the publish step writes artifacts
// through. Uploads are keyed by path; with upsert an existing object at
// the same path is overwritten in place (idempotent, not versioned).
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error

	// PublicURL returns the publicly resolvable URL for an object path.
	// It is a pure computation; it does not check that the object exists.
	PublicURL(path string) string
}
