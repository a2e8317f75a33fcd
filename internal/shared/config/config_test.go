package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("ENV", "")
	t.Setenv("RANKING_TIMEOUT", "")
	t.Setenv("RANKING_URL", "http://ranker.local/")

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.RankingTimeout != 5*time.Second {
		t.Fatalf("expected default ranking timeout, got %s", cfg.RankingTimeout)
	}
	if cfg.RankingURL != "http://ranker.local" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.RankingURL)
	}
	if !cfg.IsDevLike() {
		t.Fatalf("expected dev-like config")
	}
}

func TestGetDurationAcceptsSeconds(t *testing.T) {
	t.Setenv("NOTIFY_TIMEOUT", "7")
	if got := getDuration("NOTIFY_TIMEOUT", time.Second); got != 7*time.Second {
		t.Fatalf("expected 7s, got %s", got)
	}
	t.Setenv("NOTIFY_TIMEOUT", "nonsense")
	if got := getDuration("NOTIFY_TIMEOUT", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestLoadEnvFilesDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("JB_TEST_KEY=from-file\nJB_TEST_OTHER=\"quoted\"\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("JB_TEST_KEY", "from-env")
	t.Setenv("JB_TEST_OTHER", "")
	os.Unsetenv("JB_TEST_OTHER")

	loadEnvFiles(path, filepath.Join(dir, "missing.env"))

	if got := os.Getenv("JB_TEST_KEY"); got != "from-env" {
		t.Fatalf("expected env to win, got %q", got)
	}
	if got := os.Getenv("JB_TEST_OTHER"); got != "quoted" {
		t.Fatalf("expected value from file, got %q", got)
	}
}
