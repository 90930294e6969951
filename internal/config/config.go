package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hylla/taskcollab/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

type MailMode string

const (
	MailModeSMTP     MailMode = "smtp"
	MailModeRelay    MailMode = "relay"
	MailModeDisabled MailMode = "disabled"
)

type AssistantProvider string

const (
	AssistantPlaceholder AssistantProvider = "placeholder"
	AssistantGemini      AssistantProvider = "gemini"
)

type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Logging     LoggingConfig     `toml:"logging"`
	Server      ServerConfig      `toml:"server"`
	Auth        AuthConfig        `toml:"auth"`
	Mail        MailConfig        `toml:"mail"`
	Attachments AttachmentsConfig `toml:"attachments"`
	Storage     StorageConfig     `toml:"storage"`
	Board       BoardConfig       `toml:"board"`
	Assistant   AssistantConfig   `toml:"assistant"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the logfmt file sink used in dev mode.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ServerConfig struct {
	HTTPBind       string   `toml:"http_bind"`
	APIEndpoint    string   `toml:"api_endpoint"`
	MCPEndpoint    string   `toml:"mcp_endpoint"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RequireAuth    bool     `toml:"require_auth"`
}

type AuthConfig struct {
	TokenSecret string `toml:"token_secret"`
	// TokenTTL is a Go duration string; "0" or empty issues tokens without expiry.
	TokenTTL string `toml:"token_ttl"`
}

type MailConfig struct {
	Mode         MailMode `toml:"mode"`
	From         string   `toml:"from"`
	SMTPHost     string   `toml:"smtp_host"`
	SMTPPort     int      `toml:"smtp_port"`
	SMTPUsername string   `toml:"smtp_username"`
	SMTPPassword string   `toml:"smtp_password"`
	RelayURL     string   `toml:"relay_url"`
	TaskLinkBase string   `toml:"task_link_base"`
}

type AttachmentsConfig struct {
	MaxBytes    int64 `toml:"max_bytes"`
	Concurrency int   `toml:"concurrency"`
}

type StorageConfig struct {
	S3 S3Config `toml:"s3"`
}

// S3Config points backups at an S3 or MinIO bucket. An empty bucket disables backups.
type S3Config struct {
	Endpoint     string `toml:"endpoint"`
	Region       string `toml:"region"`
	Bucket       string `toml:"bucket"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	UsePathStyle bool   `toml:"use_path_style"`
	Prefix       string `toml:"prefix"`
}

type BoardConfig struct {
	DefaultColumns []ColumnConfig `toml:"default_columns"`
	SprintStatuses []string       `toml:"sprint_statuses"`
}

type ColumnConfig struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

type AssistantConfig struct {
	Provider AssistantProvider `toml:"provider"`
	Model    string            `toml:"model"`
	APIKey   string            `toml:"api_key"`
}

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{Title: "To Do"},
		{Title: "In Progress"},
		{Title: "Done"},
	}
}

func defaultSprintStatuses() []string {
	statuses := domain.SprintStatuses()
	out := make([]string, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, string(status))
	}
	return out
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".taskcollab/log",
			},
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api",
			MCPEndpoint: "/mcp",
		},
		Auth: AuthConfig{
			TokenTTL: "24h",
		},
		Mail: MailConfig{
			Mode:     MailModeDisabled,
			From:     "Task Collab <no-reply@taskcollab.local>",
			SMTPPort: 587,
		},
		Attachments: AttachmentsConfig{
			MaxBytes:    5 << 20,
			Concurrency: 4,
		},
		Storage: StorageConfig{
			S3: S3Config{
				Region: "us-east-1",
				Prefix: "taskcollab/",
			},
		},
		Board: BoardConfig{
			DefaultColumns: defaultColumns(),
			SprintStatuses: defaultSprintStatuses(),
		},
		Assistant: AssistantConfig{
			Provider: AssistantPlaceholder,
			Model:    "gemini-2.5-flash",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if strings.TrimSpace(c.Logging.Level) != "" {
		if _, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(c.Logging.Level))); err != nil {
			return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
		}
	}

	if strings.TrimSpace(c.Server.HTTPBind) == "" {
		return errors.New("server.http_bind is required")
	}
	api := strings.Trim(strings.TrimSpace(c.Server.APIEndpoint), "/")
	mcp := strings.Trim(strings.TrimSpace(c.Server.MCPEndpoint), "/")
	if api != "" && api == mcp {
		return errors.New("server.api_endpoint and server.mcp_endpoint must differ")
	}
	if c.Server.RequireAuth && strings.TrimSpace(c.Auth.TokenSecret) == "" {
		return errors.New("server.require_auth needs auth.token_secret")
	}

	if _, err := c.Auth.TTL(); err != nil {
		return err
	}

	switch c.Mail.Mode {
	case MailModeDisabled, "":
	case MailModeSMTP:
		if strings.TrimSpace(c.Mail.SMTPHost) == "" {
			return errors.New("mail.smtp_host is required in smtp mode")
		}
		if strings.TrimSpace(c.Mail.From) == "" {
			return errors.New("mail.from is required in smtp mode")
		}
		if c.Mail.SMTPPort < 0 || c.Mail.SMTPPort > 65535 {
			return fmt.Errorf("invalid mail.smtp_port: %d", c.Mail.SMTPPort)
		}
	case MailModeRelay:
		u, err := url.Parse(strings.TrimSpace(c.Mail.RelayURL))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid mail.relay_url: %q", c.Mail.RelayURL)
		}
	default:
		return fmt.Errorf("invalid mail.mode: %q", c.Mail.Mode)
	}

	if c.Attachments.MaxBytes < 0 {
		return errors.New("attachments.max_bytes must be >= 0")
	}
	if c.Attachments.Concurrency < 0 {
		return errors.New("attachments.concurrency must be >= 0")
	}

	for idx, col := range c.Board.DefaultColumns {
		if strings.TrimSpace(col.Title) == "" {
			return fmt.Errorf("board.default_columns[%d].title is required", idx)
		}
	}
	for idx, status := range c.Board.SprintStatuses {
		if strings.TrimSpace(status) == "" {
			return fmt.Errorf("board.sprint_statuses[%d] is empty", idx)
		}
		if _, err := domain.ParseSprintStatus(status); err != nil {
			return fmt.Errorf("board.sprint_statuses[%d] references unknown status %q", idx, status)
		}
	}

	switch c.Assistant.Provider {
	case AssistantPlaceholder, "":
	case AssistantGemini:
		if strings.TrimSpace(c.Assistant.APIKey) == "" && strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) == "" {
			return errors.New("assistant.api_key (or GEMINI_API_KEY) is required for the gemini provider")
		}
	default:
		return fmt.Errorf("invalid assistant.provider: %q", c.Assistant.Provider)
	}

	return nil
}

// TTL parses the configured token lifetime.
func (a AuthConfig) TTL() (time.Duration, error) {
	raw := strings.TrimSpace(a.TokenTTL)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl < 0 {
		return 0, fmt.Errorf("invalid auth.token_ttl: %q", a.TokenTTL)
	}
	return ttl, nil
}

// BackupsEnabled reports whether an S3 bucket is configured.
func (s S3Config) BackupsEnabled() bool {
	return strings.TrimSpace(s.Bucket) != ""
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
