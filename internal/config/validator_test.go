package config

import (
	"math"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:      "negative interval",
			modify:    func(c *Config) { c.Watch.Interval = -0.5 },
			wantField: "watch.interval",
		},
		{
			name:      "NaN interval",
			modify:    func(c *Config) { c.Watch.Interval = math.NaN() },
			wantField: "watch.interval",
		},
		{
			name:      "infinite interval",
			modify:    func(c *Config) { c.Watch.Interval = math.Inf(1) },
			wantField: "watch.interval",
		},
		{
			name:      "blank shell",
			modify:    func(c *Config) { c.Watch.Shell = "  " },
			wantField: "watch.shell",
		},
		{
			name:      "unknown utf-8 mode",
			modify:    func(c *Config) { c.Display.InvalidUTF8 = "escape" },
			wantField: "display.invalid_utf8",
		},
		{
			name:      "unknown log level",
			modify:    func(c *Config) { c.Logging.Level = "verbose" },
			wantField: "logging.level",
		},
		{
			name:      "negative max size",
			modify:    func(c *Config) { c.Logging.MaxSizeMB = -1 },
			wantField: "logging.max_size_mb",
		},
		{
			name:      "negative max backups",
			modify:    func(c *Config) { c.Logging.MaxBackups = -1 },
			wantField: "logging.max_backups",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("expected 1 validation error, got %d: %v", len(errs), errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}
}

func TestValidate_AcceptsEdgeValues(t *testing.T) {
	cfg := Default()
	cfg.Watch.Interval = 0
	cfg.Logging.Level = "ERROR"
	cfg.Logging.MaxSizeMB = 0
	cfg.Logging.MaxBackups = 0

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("expected no validation errors, got %v", errs)
	}

	// Intervals past what a time.Duration holds are valid; the sleep saturates.
	for _, interval := range []float64{1e10, 1e300} {
		cfg.Watch.Interval = interval
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("interval %g: expected no validation errors, got %v", interval, errs)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	if got := (ValidationErrors{}).Error(); got != "" {
		t.Errorf("empty ValidationErrors.Error() = %q, want empty", got)
	}

	single := ValidationErrors{{Field: "watch.shell", Value: "", Message: "must not be empty"}}
	if got := single.Error(); got != "watch.shell: must not be empty (got: )" {
		t.Errorf("single Error() = %q", got)
	}

	multi := ValidationErrors{
		{Field: "watch.interval", Value: -1, Message: "must be non-negative"},
		{Field: "watch.shell", Value: "", Message: "must not be empty"},
	}
	got := multi.Error()
	if !strings.HasPrefix(got, "2 validation errors:\n") {
		t.Errorf("multi Error() = %q", got)
	}
	if !strings.Contains(got, "  1. watch.interval: must be non-negative (got: -1)\n") {
		t.Errorf("multi Error() missing first entry: %q", got)
	}
}
