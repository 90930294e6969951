package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/taskcollab/internal/adapters/assistant"
	"github.com/hylla/taskcollab/internal/adapters/mail"
	"github.com/hylla/taskcollab/internal/adapters/storage/s3blob"
	"github.com/hylla/taskcollab/internal/adapters/storage/sqlite"
	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/config"
	"github.com/hylla/taskcollab/internal/domain"
	"github.com/hylla/taskcollab/internal/platform"
)

// runtimeEnv is everything a command needs once config is resolved.
type runtimeEnv struct {
	appName    string
	devMode    bool
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	repo       *sqlite.Repository
	svc        *app.Service
	// mailer is set only in smtp mode; the mail endpoint needs a local deliverer.
	mailer *mail.Mailer
}

// resolvePaths applies flag and environment overrides to the platform paths.
func resolvePaths(opts *rootOptions) (platform.Paths, string, string, bool, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return platform.Paths{}, "", "", false, err
	}
	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TASKCOLLAB_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("TASKCOLLAB_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}
	return paths, configPath, dbPath, dbOverridden, nil
}

// openRuntime loads config, configures logging, opens sqlite and wires the
// service with its optional collaborators.
func openRuntime(ctx context.Context, opts *rootOptions, command string, stderr io.Writer) (*runtimeEnv, error) {
	paths, configPath, dbPath, dbOverridden, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Debug("dev file logging enabled", "path", devPath)
	}

	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	env := &runtimeEnv{
		appName:    opts.appName,
		devMode:    opts.devMode,
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
		repo:       repo,
	}
	if err := env.wireService(ctx); err != nil {
		_ = env.Close()
		return nil, err
	}
	return env, nil
}

// wireService builds app.Service from config.
func (r *runtimeEnv) wireService(ctx context.Context) error {
	cfg := r.cfg
	var opts []app.ServiceOption

	switch cfg.Mail.Mode {
	case config.MailModeSMTP:
		r.mailer = mail.NewMailer(mail.SMTPSender{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			Timeout:  15 * time.Second,
		}, cfg.Mail.From)
		opts = append(opts, app.WithNotifier(r.mailer))
	case config.MailModeRelay:
		opts = append(opts, app.WithNotifier(mail.NewRelayClient(cfg.Mail.RelayURL, nil)))
	}
	r.logger.Debug("mail configured", "mode", cfg.Mail.Mode)

	if cfg.Storage.S3.BackupsEnabled() {
		s3cfg := cfg.Storage.S3
		blobs, err := s3blob.New(ctx, s3blob.Config{
			Endpoint:     s3cfg.Endpoint,
			Region:       s3cfg.Region,
			Bucket:       s3cfg.Bucket,
			AccessKey:    s3cfg.AccessKey,
			SecretKey:    s3cfg.SecretKey,
			UsePathStyle: s3cfg.UsePathStyle,
		})
		if err != nil {
			return fmt.Errorf("configure s3 backups: %w", err)
		}
		opts = append(opts, app.WithBlobStore(blobs))
		r.logger.Debug("s3 backups configured", "bucket", s3cfg.Bucket, "endpoint", s3cfg.Endpoint)
	}

	switch cfg.Assistant.Provider {
	case config.AssistantGemini:
		apiKey := strings.TrimSpace(cfg.Assistant.APIKey)
		if apiKey == "" {
			apiKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		}
		responder, err := assistant.NewGemini(ctx, apiKey, cfg.Assistant.Model)
		if err != nil {
			return fmt.Errorf("configure gemini assistant: %w", err)
		}
		opts = append(opts, app.WithResponder(responder))
	default:
		opts = append(opts, app.WithResponder(assistant.Placeholder{}))
	}

	r.svc = app.NewService(r.repo, uuid.NewString, nil, serviceConfig(cfg), opts...)
	r.logger.Debug("application service initialized", "default_columns", len(cfg.Board.DefaultColumns))
	return nil
}

// serviceConfig maps persisted config onto app.ServiceConfig.
func serviceConfig(cfg config.Config) app.ServiceConfig {
	columns := make([]app.ColumnTemplate, 0, len(cfg.Board.DefaultColumns))
	for _, col := range cfg.Board.DefaultColumns {
		columns = append(columns, app.ColumnTemplate{Title: col.Title, Description: col.Description})
	}
	statuses := make([]domain.SprintStatus, 0, len(cfg.Board.SprintStatuses))
	for _, raw := range cfg.Board.SprintStatuses {
		// Validate already rejected unknown statuses.
		if status, err := domain.ParseSprintStatus(raw); err == nil {
			statuses = append(statuses, status)
		}
	}
	return app.ServiceConfig{
		DefaultColumns: columns,
		SprintStatuses: statuses,
		TaskLinkBase:   cfg.Mail.TaskLinkBase,
		BackupPrefix:   cfg.Storage.S3.Prefix,
	}
}

// Close releases sqlite and the log file.
func (r *runtimeEnv) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.repo != nil {
		if err := r.repo.Close(); err != nil {
			r.logger.Warn("sqlite close failed", "db_path", r.cfg.Database.Path, "err", err)
			errs = append(errs, err)
		}
	}
	if err := r.logger.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// tokenSecret returns the configured signing secret or an error naming the setting.
func (r *runtimeEnv) tokenSecret() ([]byte, error) {
	secret := strings.TrimSpace(r.cfg.Auth.TokenSecret)
	if secret == "" {
		return nil, errors.New("auth.token_secret is not configured")
	}
	return []byte(secret), nil
}
