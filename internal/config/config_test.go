package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected default HTTP_ADDR=:8080, got %s", cfg.HTTPAddr)
	}
	if cfg.WorkerConcurrency != 4 {
		t.Errorf("expected default WORKER_CONCURRENCY=4, got %d", cfg.WorkerConcurrency)
	}
	if cfg.QueueKey != "shortforge:tasks" {
		t.Errorf("expected default queue key, got %s", cfg.QueueKey)
	}
	if cfg.ProgressTTL != time.Hour {
		t.Errorf("expected default PROGRESS_TTL=1h, got %s", cfg.ProgressTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("PROGRESS_TTL", "30m")
	t.Setenv("PUBLIC_BASE_URL", "https://media.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.WorkerConcurrency != 8 {
		t.Errorf("expected WORKER_CONCURRENCY=8, got %d", cfg.WorkerConcurrency)
	}
	if cfg.ProgressTTL != 30*time.Minute {
		t.Errorf("expected PROGRESS_TTL=30m, got %s", cfg.ProgressTTL)
	}
	// Trailing slash is stripped so URL joins stay clean.
	if cfg.PublicBaseURL != "https://media.example.com" {
		t.Errorf("expected trimmed base URL, got %s", cfg.PublicBaseURL)
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "unset uses dev default",
			raw:  "",
			want: []string{"http://localhost:5173"},
		},
		{
			name: "single origin",
			raw:  "https://app.example.com",
			want: []string{"https://app.example.com"},
		},
		{
			name: "csv with whitespace and empty entries",
			raw:  " https://app.example.com, ,https://admin.example.com ",
			want: []string{"https://app.example.com", "https://admin.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CORS_ALLOWED_ORIGINS", tt.raw)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(cfg.CORSAllowedOrigins, tt.want) {
				t.Errorf("got %v, want %v", cfg.CORSAllowedOrigins, tt.want)
			}
		})
	}
}

func TestLoadRejectsZeroConcurrency(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for WORKER_CONCURRENCY=0")
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("expected fallback REDIS_DB=0, got %d", cfg.RedisDB)
	}
}
