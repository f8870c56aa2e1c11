package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Errorf("default base url = %q, want %q", cfg.API.BaseURL, "http://localhost:8080")
	}
	if cfg.API.Version != "v1" {
		t.Errorf("default version = %q, want %q", cfg.API.Version, "v1")
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want %v", cfg.API.Timeout, 30*time.Second)
	}
	if cfg.Auth.TokenKey != "authToken" {
		t.Errorf("default token key = %q, want %q", cfg.Auth.TokenKey, "authToken")
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("default cache ttl = %v, want %v", cfg.Cache.TTL, 30*time.Second)
	}
	if cfg.UI.ToastDuration != 4*time.Second {
		t.Errorf("default toast duration = %v, want %v", cfg.UI.ToastDuration, 4*time.Second)
	}
	if cfg.UI.DebounceDelay != 300*time.Millisecond {
		t.Errorf("default debounce = %v, want %v", cfg.UI.DebounceDelay, 300*time.Millisecond)
	}
	if cfg.Upload.MaxSize != 10*1024*1024 {
		t.Errorf("default max upload = %d, want %d", cfg.Upload.MaxSize, 10*1024*1024)
	}
	if len(cfg.Upload.AllowedTypes) != 4 {
		t.Errorf("default allowed types = %v, want 4 entries", cfg.Upload.AllowedTypes)
	}
	if cfg.Limits.MaxColors != 10 {
		t.Errorf("default max colors = %d, want 10", cfg.Limits.MaxColors)
	}
	if cfg.Limits.SubcategoryNameMax != 100 {
		t.Errorf("default subcategory name max = %d, want 100", cfg.Limits.SubcategoryNameMax)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "storefront.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
api:
  base_url: https://api.example.com
  timeout: 10s
upload:
  allowed_types: [image/png]
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("base url = %q, want %q", cfg.API.BaseURL, "https://api.example.com")
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want %v", cfg.API.Timeout, 10*time.Second)
	}
	if !reflect.DeepEqual(cfg.Upload.AllowedTypes, []string{"image/png"}) {
		t.Errorf("allowed types = %v, want [image/png]", cfg.Upload.AllowedTypes)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/storefront.yaml")
	if err != nil {
		t.Fatalf("Load() should return defaults for missing file, got error: %v", err)
	}
	want := DefaultConfig()
	if !reflect.DeepEqual(*cfg, want) {
		t.Errorf("Load(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "storefront.yaml")
	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("Load(invalid YAML) should return error")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "storefront.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
api:
  base_ulr: http://x
`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("Load() should return error for unknown field 'base_ulr'")
	}
}

func TestLoad_LayeredPriority(t *testing.T) {
	// Given: user config sets base url and timeout, project config overrides timeout
	userDir := t.TempDir()
	projectDir := t.TempDir()

	userCfg := filepath.Join(userDir, "config.yaml")
	if err := os.WriteFile(userCfg, []byte(`
api:
  base_url: https://user.example.com
  timeout: 5s
`), 0o644); err != nil {
		t.Fatal(err)
	}

	projectCfg := filepath.Join(projectDir, "config.yaml")
	if err := os.WriteFile(projectCfg, []byte(`
api:
  timeout: 8s
ui:
  toast_duration: 0s
observability:
  global: true
`), 0o644); err != nil {
		t.Fatal(err)
	}

	// When: both layers are loaded
	cfg, err := LoadLayered(userCfg, projectCfg)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}

	// Then: each field comes from the highest layer that sets it
	if cfg.API.BaseURL != "https://user.example.com" {
		t.Errorf("base url = %q, want %q", cfg.API.BaseURL, "https://user.example.com")
	}
	if cfg.API.Timeout != 8*time.Second {
		t.Errorf("timeout = %v, want %v", cfg.API.Timeout, 8*time.Second)
	}
	// An explicit zero still overrides the default.
	if cfg.UI.ToastDuration != 0 {
		t.Errorf("toast duration = %v, want 0", cfg.UI.ToastDuration)
	}
	if cfg.API.Version != "v1" {
		t.Errorf("version = %q, want default %q", cfg.API.Version, "v1")
	}
	if !cfg.Observability.Global {
		t.Error("observability.global = false, want true")
	}
}

func TestLoadLayered_AllMissing(t *testing.T) {
	cfg, err := LoadLayered("/no/user.yaml", "/no/project.yaml")
	if err != nil {
		t.Fatalf("LoadLayered(all missing) error = %v", err)
	}
	want := DefaultConfig()
	if !reflect.DeepEqual(*cfg, want) {
		t.Errorf("got %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_CommentOnlyFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "storefront.yaml")
	if err := os.WriteFile(cfgPath, []byte("# just a comment\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load(comment-only) error = %v", err)
	}
	if !reflect.DeepEqual(*cfg, DefaultConfig()) {
		t.Errorf("Load(comment-only) = %+v, want defaults", *cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr bool
		check   func(*testing.T, Config)
	}{
		{
			name: "STOREFRONT_API_BASE_URL overrides base url",
			envs: map[string]string{"STOREFRONT_API_BASE_URL": "https://prod.example.com"},
			check: func(t *testing.T, c Config) {
				if c.API.BaseURL != "https://prod.example.com" {
					t.Errorf("base url = %q, want %q", c.API.BaseURL, "https://prod.example.com")
				}
			},
		},
		{
			name: "STOREFRONT_API_TIMEOUT overrides timeout",
			envs: map[string]string{"STOREFRONT_API_TIMEOUT": "45s"},
			check: func(t *testing.T, c Config) {
				if c.API.Timeout != 45*time.Second {
					t.Errorf("timeout = %v, want %v", c.API.Timeout, 45*time.Second)
				}
			},
		},
		{
			name: "STOREFRONT_TOKEN_BACKEND overrides backend",
			envs: map[string]string{"STOREFRONT_TOKEN_BACKEND": "sqlite"},
			check: func(t *testing.T, c Config) {
				if c.Auth.TokenBackend != "sqlite" {
					t.Errorf("token backend = %q, want %q", c.Auth.TokenBackend, "sqlite")
				}
			},
		},
		{
			name: "unset variables keep layered values",
			envs: map[string]string{},
			check: func(t *testing.T, c Config) {
				if !reflect.DeepEqual(c, DefaultConfig()) {
					t.Errorf("config changed without env overrides: %+v", c)
				}
			},
		},
		{
			name:    "invalid STOREFRONT_CACHE_TTL returns error",
			envs:    map[string]string{"STOREFRONT_CACHE_TTL": "notaduration"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := cfg.ApplyEnv()

			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyEnv() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Fatalf("LoadDotEnv(missing) error = %v", err)
		}
	})

	t.Run("values feed ApplyEnv", func(t *testing.T) {
		// Given: a .env file setting the API version
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("STOREFRONT_API_VERSION=v2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("STOREFRONT_API_VERSION", "")
		if err := os.Unsetenv("STOREFRONT_API_VERSION"); err != nil {
			t.Fatal(err)
		}

		// When: the .env file is loaded and env overrides applied
		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv() error = %v", err)
		}
		cfg := DefaultConfig()
		if err := cfg.ApplyEnv(); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}

		// Then: the .env value wins over the default
		if cfg.API.Version != "v2" {
			t.Errorf("version = %q, want %q", cfg.API.Version, "v2")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:    "empty base url",
			modify:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "relative base url",
			modify:  func(c *Config) { c.API.BaseURL = "/api" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.API.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "unknown token backend",
			modify:  func(c *Config) { c.Auth.TokenBackend = "redis" },
			wantErr: true,
		},
		{
			name:   "zero toast duration is allowed",
			modify: func(c *Config) { c.UI.ToastDuration = 0 },
		},
		{
			name:    "negative cache ttl",
			modify:  func(c *Config) { c.Cache.TTL = -time.Second },
			wantErr: true,
		},
		{
			name:    "zero max colors",
			modify:  func(c *Config) { c.Limits.MaxColors = 0 },
			wantErr: true,
		},
		{
			name:    "unknown log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
