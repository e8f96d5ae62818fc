package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GODOTPCKTOOL_PATH", "")
	t.Setenv("DEFAULT_LOCALE", "")
	t.Setenv("WORKER_COUNT", "")

	cfg := Load()
	if cfg.PckToolPath != "" {
		t.Errorf("PckToolPath = %q, want empty", cfg.PckToolPath)
	}
	if cfg.DefaultLocale != "en" {
		t.Errorf("DefaultLocale = %q, want %q", cfg.DefaultLocale, "en")
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d, want 4", cfg.WorkerCount)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DEFAULT_LOCALE", "vi")
	t.Setenv("WORKER_COUNT", "12")

	cfg := Load()
	if cfg.DefaultLocale != "vi" {
		t.Errorf("DefaultLocale = %q, want %q", cfg.DefaultLocale, "vi")
	}
	if cfg.WorkerCount != 12 {
		t.Errorf("WorkerCount = %d, want 12", cfg.WorkerCount)
	}
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")

	if cfg := Load(); cfg.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d, want fallback 4", cfg.WorkerCount)
	}
}
