package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// Load reads the process environment and the working directory, so these
// tests do not run in parallel.

func writeYAML(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sparkify.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Metrics.Tags) != 0 {
		t.Fatalf("metrics.tags = %v, want none", cfg.Metrics.Tags)
	}
	cfg.Metrics.Tags = nil
	if want := Default(); !reflect.DeepEqual(*cfg, want) {
		t.Fatalf("Load(\"\") = %+v\nwant %+v", *cfg, want)
	}
	if cfg.Storage.DSN != "host=127.0.0.1 dbname=sparkifydb user=student password=student" {
		t.Fatalf("default DSN = %q", cfg.Storage.DSN)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeYAML(t, `
songs:
  root: /srv/songs
storage:
  kind: sqlite
  dsn: file:warehouse.db
  auto_create_tables: false
metrics:
  backend: pushgateway
  pushgateway_url: http://pg:9091
  tags: [env:test, team:data]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Songs.Root != "/srv/songs" || cfg.Songs.Ext != ".json" {
		t.Fatalf("songs = %+v", cfg.Songs)
	}
	if cfg.Logs.Root != "data/log_data" {
		t.Fatalf("logs.root default lost: %+v", cfg.Logs)
	}
	if cfg.Storage != (Storage{Kind: "sqlite", DSN: "file:warehouse.db"}) {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if !reflect.DeepEqual(cfg.Metrics.Tags, []string{"env:test", "team:data"}) {
		t.Fatalf("metrics.tags = %v", cfg.Metrics.Tags)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeYAML(t, "storage:\n  kind: sqlite\n  dsn: file:a.db\n")
	t.Setenv("SPARKIFY_STORAGE__DSN", "file:b.db")
	t.Setenv("SPARKIFY_STORAGE__AUTO_CREATE_TABLES", "false")
	t.Setenv("SPARKIFY_LOGGING__LEVEL", "debug")
	t.Setenv("SPARKIFY_METRICS__TAGS", "env:ci, shard:1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Storage.Kind != "sqlite" || cfg.Storage.DSN != "file:b.db" || cfg.Storage.AutoCreateTables {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging.level = %q", cfg.Logging.Level)
	}
	if !reflect.DeepEqual(cfg.Metrics.Tags, []string{"env:ci", "shard:1"}) {
		t.Fatalf("metrics.tags = %v", cfg.Metrics.Tags)
	}
}

func TestLoad_PathFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeYAML(t, "job: nightly\n")
	t.Setenv(PathEnvVar, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Job != "nightly" {
		t.Fatalf("job = %q, want nightly", cfg.Job)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SPARKIFY_JOB=from-dotenv\nSPARKIFY_LOGS__ROOT=/from/dotenv\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// A variable already in the environment beats the .env file.
	t.Setenv("SPARKIFY_JOB", "from-env")
	// godotenv sets variables with os.Setenv; register cleanup for them.
	t.Setenv("SPARKIFY_LOGS__ROOT", "")
	os.Unsetenv("SPARKIFY_LOGS__ROOT")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Job != "from-env" {
		t.Fatalf("job = %q, want from-env", cfg.Job)
	}
	if cfg.Logs.Root != "/from/dotenv" {
		t.Fatalf("logs.root = %q, want /from/dotenv", cfg.Logs.Root)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "absent.yaml") {
		t.Fatalf("Load error = %v, want one naming the file", err)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"SPARKIFY_STORAGE__DSN":                "storage.dsn",
		"SPARKIFY_STORAGE__AUTO_CREATE_TABLES": "storage.auto_create_tables",
		"SPARKIFY_JOB":                         "job",
		"SPARKIFY_CONFIG":                      "",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
