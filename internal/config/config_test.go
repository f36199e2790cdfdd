package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "GENERATOR_PROVIDER", "API_KEY", "GEMINI_MODEL", "GEMINI_TEMPERATURE",
		"GEMINI_TOP_P", "GEMINI_CONCURRENT_REQUESTS", "OPENAI_API_KEY", "OPENAI_MODEL",
		"REDIS_URL", "FRONTEND_URL", "LOG_LEVEL", "LOG_NO_COLOR", "RELAY_URL",
	} {
		// Setenv registers the restore; the variable itself must be absent.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Expected default port 3000, got %q", cfg.Port)
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("Expected addr :3000, got %q", cfg.Addr())
	}
	if cfg.Provider != ProviderGemini {
		t.Errorf("Expected gemini provider, got %q", cfg.Provider)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("Expected default model, got %q", cfg.GeminiModel)
	}
	if cfg.GeminiConcurrentReqs != 5 {
		t.Errorf("Expected 5 concurrent requests, got %d", cfg.GeminiConcurrentReqs)
	}
	if cfg.GeminiTemperature != nil || cfg.GeminiTopP != nil {
		t.Errorf("Expected unset sampling parameters to stay nil")
	}
	if cfg.FrontendURL != "*" {
		t.Errorf("Expected permissive CORS origin, got %q", cfg.FrontendURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "test-key")
	t.Setenv("PORT", "8081")
	t.Setenv("GEMINI_TEMPERATURE", "0.3")
	t.Setenv("GEMINI_CONCURRENT_REQUESTS", "0")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr() != ":8081" {
		t.Errorf("Expected addr :8081, got %q", cfg.Addr())
	}
	if cfg.GeminiTemperature == nil || *cfg.GeminiTemperature != 0.3 {
		t.Errorf("Expected temperature 0.3, got %v", cfg.GeminiTemperature)
	}
	if cfg.GeminiConcurrentReqs != 1 {
		t.Errorf("Expected concurrency clamped to 1, got %d", cfg.GeminiConcurrentReqs)
	}
	if cfg.RedisURL == "" {
		t.Errorf("Expected redis url to be read")
	}
}

func TestLoad_ProviderValidation(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantErr  bool
		provider string
	}{
		{"gemini without key", map[string]string{}, true, ""},
		{"gemini with key", map[string]string{"API_KEY": "k"}, false, ProviderGemini},
		{"openai without key", map[string]string{"GENERATOR_PROVIDER": "openai", "API_KEY": "k"}, true, ""},
		{"openai with key", map[string]string{"GENERATOR_PROVIDER": " OpenAI ", "OPENAI_API_KEY": "k"}, false, ProviderOpenAI},
		{"unknown provider", map[string]string{"GENERATOR_PROVIDER": "llama", "API_KEY": "k"}, true, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got config %+v", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Provider != tc.provider {
				t.Errorf("Expected provider %q, got %q", tc.provider, cfg.Provider)
			}
		})
	}
}

func TestLoad_InvalidNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "k")
	t.Setenv("GEMINI_CONCURRENT_REQUESTS", "abc")

	if _, err := Load(); err == nil {
		t.Error("Expected parse error for non-numeric concurrency")
	}
}

func TestLoadClient_TrimsTrailingSlash(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELAY_URL", "http://relay.local:3000/")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RelayURL != "http://relay.local:3000" {
		t.Errorf("Expected trimmed relay url, got %q", cfg.RelayURL)
	}
}
