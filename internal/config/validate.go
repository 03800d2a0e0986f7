package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is the dotted config
// key, e.g. "storage.dsn".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// StorageKinds lists the storage.kind values cmd/etl can open.
var StorageKinds = []string{"postgres", "sqlite", "mssql", "mysql", "duckdb"}

// Validate lints c and returns every issue found. It does not mutate c.
func Validate(c Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.Job) == "" {
		add(SeverityWarning, "job", "job is empty; metrics will be unlabeled")
	}

	for _, ds := range []struct {
		path string
		d    Dataset
	}{{"songs", c.Songs}, {"logs", c.Logs}} {
		if strings.TrimSpace(ds.d.Root) == "" {
			add(SeverityError, ds.path+".root", "root directory must not be empty")
		}
		if ds.d.Ext != "" && !strings.HasPrefix(ds.d.Ext, ".") {
			add(SeverityWarning, ds.path+".ext", "extension %q does not start with '.'; it will match any name ending in it", ds.d.Ext)
		}
	}
	if c.Songs.Root != "" && c.Songs.Root == c.Logs.Root {
		add(SeverityWarning, "logs.root", "songs and logs share root %q; every file will be read by both transformers", c.Logs.Root)
	}

	if !contains(StorageKinds, c.Storage.Kind) {
		add(SeverityError, "storage.kind", "unsupported kind %q (supported: %s)", c.Storage.Kind, strings.Join(StorageKinds, ", "))
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		add(SeverityError, "storage.dsn", "dsn must not be empty")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		add(SeverityWarning, "logging.level", "unknown level %q; info will be used", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		add(SeverityWarning, "logging.format", "unknown format %q; json will be used", c.Logging.Format)
	}

	switch c.Metrics.Backend {
	case "", "none":
	case "pushgateway":
		if c.Metrics.PushgatewayURL == "" {
			add(SeverityError, "metrics.pushgateway_url", "required when metrics.backend is pushgateway")
		}
	case "datadog":
		if c.Metrics.DatadogAddr == "" {
			add(SeverityError, "metrics.datadog_addr", "required when metrics.backend is datadog")
		}
	default:
		add(SeverityError, "metrics.backend", "unknown backend %q (supported: none, pushgateway, datadog)", c.Metrics.Backend)
	}

	return issues
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
