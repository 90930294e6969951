package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/taskcollab/internal/config"
)

const defaultDevLogDir = ".taskcollab/log"

// runtimeLogger writes styled text to stderr and, in dev mode, logfmt lines to
// a per-day file. The TUI mutes the console half while it owns the terminal.
type runtimeLogger struct {
	console *charmLog.Logger
	file    *charmLog.Logger
	muted   atomic.Bool

	logFile *os.File
	devLog  string
}

func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}
	sink := func(w io.Writer, f charmLog.Formatter) *charmLog.Logger {
		return charmLog.NewWithOptions(w, charmLog.Options{
			Level:           level,
			Prefix:          appName,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Formatter:       f,
		})
	}

	l := &runtimeLogger{console: sink(stderr, charmLog.TextFormatter)}
	if !devMode || !cfg.DevFile.Enabled {
		return l, nil
	}
	if now == nil {
		now = time.Now
	}
	path, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, err
	}
	f, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	l.file = sink(f, charmLog.LogfmtFormatter)
	l.logFile = f
	l.devLog = path
	return l, nil
}

// DevLogPath is empty unless the dev file sink is active.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

func (l *runtimeLogger) Close() error {
	if l == nil || l.logFile == nil {
		return nil
	}
	f := l.logFile
	l.logFile, l.file = nil, nil
	return f.Close()
}

func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l != nil {
		l.muted.Store(!enabled)
	}
}

func (l *runtimeLogger) log(level charmLog.Level, msg any, keyvals []any) {
	if l == nil {
		return
	}
	if !l.muted.Load() {
		l.console.Log(level, msg, keyvals...)
	}
	if l.file != nil {
		l.file.Log(level, msg, keyvals...)
	}
}

func (l *runtimeLogger) Debug(msg any, keyvals ...any) { l.log(charmLog.DebugLevel, msg, keyvals) }
func (l *runtimeLogger) Info(msg any, keyvals ...any)  { l.log(charmLog.InfoLevel, msg, keyvals) }
func (l *runtimeLogger) Warn(msg any, keyvals ...any)  { l.log(charmLog.WarnLevel, msg, keyvals) }
func (l *runtimeLogger) Error(msg any, keyvals ...any) { l.log(charmLog.ErrorLevel, msg, keyvals) }

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}
	return f, nil
}

// devLogFilePath names "<app>-YYYYMMDD.log" under dir. A relative dir hangs
// off the enclosing checkout.
func devLogFilePath(dir, appName string, day time.Time) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultDevLogDir
	}
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		dir = filepath.Join(checkoutRoot(cwd), dir)
	}
	name := logFileStem(appName) + "-" + day.Format("20060102") + ".log"
	return filepath.Join(filepath.Clean(dir), name), nil
}

// checkoutRoot returns the closest ancestor holding go.mod or .git, or start.
func checkoutRoot(start string) string {
	for dir := filepath.Clean(start); ; dir = filepath.Dir(dir) {
		for _, marker := range []string{"go.mod", ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		if filepath.Dir(dir) == dir {
			return start
		}
	}
}

func logFileStem(appName string) string {
	stem := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, strings.TrimSpace(appName))
	if stem = strings.Trim(stem, "-"); stem == "" {
		return "taskcollab"
	}
	return stem
}
