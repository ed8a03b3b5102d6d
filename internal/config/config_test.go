package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "BQ_PROJECT_ID", "BQ_DATASET", "GEMINI_MODEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DataBackend != BackendSQLite {
		t.Errorf("DataBackend = %q, want sqlite", cfg.DataBackend)
	}
	if cfg.SQLiteDBPath == "" {
		t.Error("expected a default sqlite path")
	}
	if cfg.BQDataset != "finance" {
		t.Errorf("BQDataset = %q, want finance", cfg.BQDataset)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", BackendBigQuery)
	t.Setenv("BQ_PROJECT_ID", "my-project")
	t.Setenv("BQ_DATASET", "ledger")

	cfg := Load()
	if cfg.Port != "9090" || cfg.DataBackend != BackendBigQuery {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "memory backend needs nothing",
			cfg:  Config{Port: "8080", DataBackend: BackendMemory},
		},
		{
			name:    "bad port",
			cfg:     Config{Port: "http", DataBackend: BackendMemory},
			wantErr: "invalid port",
		},
		{
			name:    "port out of range",
			cfg:     Config{Port: "70000", DataBackend: BackendMemory},
			wantErr: "between 1 and 65535",
		},
		{
			name:    "unknown backend",
			cfg:     Config{Port: "8080", DataBackend: "redis"},
			wantErr: "invalid data backend",
		},
		{
			name:    "sqlite needs a path",
			cfg:     Config{Port: "8080", DataBackend: BackendSQLite},
			wantErr: "SQLITE_DB_PATH",
		},
		{
			name:    "bigquery needs a project",
			cfg:     Config{Port: "8080", DataBackend: BackendBigQuery, BQDataset: "finance"},
			wantErr: "BQ_PROJECT_ID",
		},
		{
			name:    "multiple problems reported together",
			cfg:     Config{Port: "oops", DataBackend: BackendBigQuery},
			wantErr: "BQ_DATASET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Config{Port: "oops", DataBackend: BackendBigQuery}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected a validation error")
	}
	for _, want := range []string{"invalid port", "BQ_PROJECT_ID", "BQ_DATASET"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
