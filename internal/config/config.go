package config

import (
	"fmt"
	"os"
)

// Backend selectors for the data and storage layers.
const (
	DataBackendPostgres = "postgres"
	DataBackendSupabase = "supabase"

	StorageBackendSupabase = "supabase"
	StorageBackendDisk     = "disk"
)

// Config holds everything the service reads from the environment.
// It is loaded once in main and passed down as a plain parameter,
// never through package-level globals.
type Config struct {
	Port string

	// Data backend. DataBackend picks between the GORM store
	// (DatabaseURL) and the Supabase PostgREST store (SupabaseURL +
	// SupabaseServiceKey).
	DataBackend string
	DatabaseURL string

	// Supabase project settings, shared by the REST store and the
	// storage client.
	SupabaseURL        string
	SupabaseServiceKey string
	StorageBucket      string

	// Storage backend. "disk" keeps artifacts on the local filesystem
	// and is meant for development.
	StorageBackend string
	DiskRoot       string
	PublicBaseURL  string

	CORSOrigin string
}

// Load reads the configuration from the environment and validates the
// combinations that must be present for the selected backends.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getenv("PORT", "8080"),
		DataBackend:        getenv("DATA_BACKEND", DataBackendPostgres),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		StorageBucket:      getenv("SUPABASE_STORAGE_BUCKET", "og-previews"),
		StorageBackend:     getenv("STORAGE_BACKEND", StorageBackendSupabase),
		DiskRoot:           getenv("DISK_STORAGE_ROOT", "./storage"),
		PublicBaseURL:      os.Getenv("PUBLIC_BASE_URL"),
		CORSOrigin:         getenv("CORS_ORIGIN", "*"),
	}

	switch cfg.DataBackend {
	case DataBackendPostgres:
		// DatabaseURL may stay empty; the db package falls back to a
		// local sqlite file for development.
	case DataBackendSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("DATA_BACKEND=supabase requires SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
		}
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q", cfg.DataBackend)
	}

	switch cfg.StorageBackend {
	case StorageBackendSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("STORAGE_BACKEND=supabase requires SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
		}
	case StorageBackendDisk:
		if cfg.PublicBaseURL == "" {
			return nil, fmt.Errorf("STORAGE_BACKEND=disk requires PUBLIC_BASE_URL")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
