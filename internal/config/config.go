// Package config loads the settings of an ETL run.
//
// Values are layered, each layer overriding the previous one:
//
//  1. built-in defaults (see Default)
//  2. an optional YAML file, named by the -config flag or SPARKIFY_CONFIG
//  3. environment variables prefixed SPARKIFY_, with "__" separating
//     nested keys: SPARKIFY_STORAGE__DSN sets storage.dsn
//
// A .env file in the working directory, if present, is read into the
// environment before the last layer is applied. Variables already set in the
// environment win over the .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "SPARKIFY_"
	// PathEnvVar names the YAML file when no path is passed to Load.
	PathEnvVar = EnvPrefix + "CONFIG"
	// DotEnvFile is read into the environment by Load when it exists.
	DotEnvFile = ".env"
)

// Config is the complete configuration of a run.
type Config struct {
	// Job labels metrics and log lines.
	Job     string  `koanf:"job"`
	Songs   Dataset `koanf:"songs"`
	Logs    Dataset `koanf:"logs"`
	Storage Storage `koanf:"storage"`
	Logging Logging `koanf:"logging"`
	Metrics Metrics `koanf:"metrics"`
}

// Dataset locates one input tree.
type Dataset struct {
	Root string `koanf:"root"`
	// Ext is the file-name suffix of input files.
	Ext string `koanf:"ext"`
}

// Storage selects and configures the warehouse backend.
type Storage struct {
	// Kind is one of postgres, sqlite, mssql, mysql, duckdb.
	Kind string `koanf:"kind"`
	DSN  string `koanf:"dsn"`
	// AutoCreateTables runs the backend's CREATE TABLE IF NOT EXISTS
	// statements before loading.
	AutoCreateTables bool `koanf:"auto_create_tables"`
}

type Logging struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Metrics selects the metrics backend. Backend "none" (or empty) disables
// metrics.
type Metrics struct {
	Backend        string   `koanf:"backend"`
	PushgatewayURL string   `koanf:"pushgateway_url"`
	DatadogAddr    string   `koanf:"datadog_addr"`
	Namespace      string   `koanf:"namespace"`
	Tags           []string `koanf:"tags"`
}

// Default returns the built-in configuration: the song and log trees under
// ./data loaded into a local Postgres sparkifydb.
func Default() Config {
	return Config{
		Job:   "sparkify",
		Songs: Dataset{Root: "data/song_data", Ext: ".json"},
		Logs:  Dataset{Root: "data/log_data", Ext: ".json"},
		Storage: Storage{
			Kind:             "postgres",
			DSN:              "host=127.0.0.1 dbname=sparkifydb user=student password=student",
			AutoCreateTables: true,
		},
		Logging: Logging{Level: "info", Format: "json"},
		Metrics: Metrics{Backend: "none"},
	}
}

// sliceKeys hold lists that may arrive from the environment as a single
// comma-separated string.
var sliceKeys = []string{"metrics.tags"}

// Load builds a Config from defaults, the YAML file at path and the
// environment. An empty path falls back to $SPARKIFY_CONFIG; if that is empty
// too, no file is read. Load does not validate; see Validate.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}
	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(name string) error {
	err := godotenv.Load(name)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: load %s: %w", name, err)
}

// envKey maps SPARKIFY_STORAGE__AUTO_CREATE_TABLES to
// storage.auto_create_tables. The file selector itself is not a config key.
func envKey(s string) string {
	if s == PathEnvVar {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("config: set %s: %w", key, err)
		}
	}
	return nil
}
