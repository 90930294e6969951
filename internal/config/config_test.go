package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/taskcollab.db")
	if cfg.Database.Path != "/tmp/taskcollab.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Mail.Mode != MailModeDisabled {
		t.Fatalf("unexpected mail mode %q", cfg.Mail.Mode)
	}
	if cfg.Server.APIEndpoint != "/api" || cfg.Server.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected endpoints %#v", cfg.Server)
	}
	wantColumns := []ColumnConfig{{Title: "To Do"}, {Title: "In Progress"}, {Title: "Done"}}
	if diff := cmp.Diff(wantColumns, cfg.Board.DefaultColumns); diff != "" {
		t.Fatalf("default columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"planned", "active", "completed", "on hold"}, cfg.Board.SprintStatuses); diff != "" {
		t.Fatalf("sprint statuses mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/taskcollab.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(defaults, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/taskcollab.db")
	cfg, err := Load(writeConfig(t, ""), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
path = "/custom/taskcollab.db"

[logging]
level = "debug"

[server]
http_bind = "0.0.0.0:9000"
allowed_origins = ["https://app.example.com"]
require_auth = true

[auth]
token_secret = "s3cret"
token_ttl = "2h"

[mail]
mode = "relay"
relay_url = "https://mail.example.com"
task_link_base = "https://app.example.com"

[storage.s3]
bucket = "boards"
endpoint = "http://localhost:9000"
use_path_style = true

[[board.default_columns]]
title = "Backlog"
description = "Ideas"

[[board.default_columns]]
title = "Shipped"

[assistant]
provider = "gemini"
api_key = "key"
`)

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/taskcollab.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Mail.Mode != MailModeRelay || cfg.Mail.RelayURL != "https://mail.example.com" {
		t.Fatalf("unexpected mail config %#v", cfg.Mail)
	}
	if cfg.Mail.From == "" {
		t.Fatal("expected untouched defaults to survive the override")
	}
	if !cfg.Storage.S3.BackupsEnabled() || !cfg.Storage.S3.UsePathStyle || cfg.Storage.S3.Region != "us-east-1" {
		t.Fatalf("unexpected s3 config %#v", cfg.Storage.S3)
	}
	want := []ColumnConfig{{Title: "Backlog", Description: "Ideas"}, {Title: "Shipped"}}
	if diff := cmp.Diff(want, cfg.Board.DefaultColumns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	ttl, err := cfg.Auth.TTL()
	if err != nil || ttl != 2*time.Hour {
		t.Fatalf("TTL() = %v, %v", ttl, err)
	}
	if cfg.Assistant.Provider != AssistantGemini {
		t.Fatalf("unexpected assistant provider %q", cfg.Assistant.Provider)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "empty db path", mutate: func(c *Config) { c.Database.Path = " " }, want: "database path"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, want: "logging.level"},
		{name: "endpoint collision", mutate: func(c *Config) { c.Server.MCPEndpoint = "/api/" }, want: "must differ"},
		{name: "auth without secret", mutate: func(c *Config) { c.Server.RequireAuth = true }, want: "token_secret"},
		{name: "bad ttl", mutate: func(c *Config) { c.Auth.TokenTTL = "soon" }, want: "token_ttl"},
		{name: "bad mail mode", mutate: func(c *Config) { c.Mail.Mode = "pigeon" }, want: "mail.mode"},
		{name: "smtp without host", mutate: func(c *Config) { c.Mail.Mode = MailModeSMTP }, want: "smtp_host"},
		{name: "relay without url", mutate: func(c *Config) { c.Mail.Mode = MailModeRelay }, want: "relay_url"},
		{name: "negative attachments", mutate: func(c *Config) { c.Attachments.MaxBytes = -1 }, want: "max_bytes"},
		{name: "blank column", mutate: func(c *Config) { c.Board.DefaultColumns = []ColumnConfig{{Title: " "}} }, want: "default_columns[0]"},
		{name: "unknown sprint status", mutate: func(c *Config) { c.Board.SprintStatuses = []string{"archived"} }, want: "sprint_statuses[0]"},
		{name: "unknown assistant", mutate: func(c *Config) { c.Assistant.Provider = "oracle" }, want: "assistant.provider"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default("/tmp/taskcollab.db")
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	if _, err := Load(writeConfig(t, "[database\npath = 1"), Default("/tmp/default.db")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
