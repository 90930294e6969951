// Package platform resolves where taskcollab keeps its files for the current user.
package platform

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const defaultAppName = "taskcollab"

// Paths locates the config file, the data directory with its sqlite database,
// and the session credential file.
type Paths struct {
	ConfigPath     string
	DataDir        string
	DBPath         string
	CredentialPath string
}

// Options selects the app directory name.
type Options struct {
	AppName string
	// DevMode appends "-dev" so development runs never touch real data.
	DevMode bool
}

// rootOverrides names the environment variables that relocate the config and
// data roots on each GOOS.
var rootOverrides = map[string][2]string{
	"linux":   {"XDG_CONFIG_HOME", "XDG_DATA_HOME"},
	"freebsd": {"XDG_CONFIG_HOME", "XDG_DATA_HOME"},
	"openbsd": {"XDG_CONFIG_HOME", "XDG_DATA_HOME"},
	"windows": {"APPDATA", "LOCALAPPDATA"},
}

// DefaultPaths resolves paths for the production app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{})
}

// DefaultPathsWithOptions resolves paths for the running OS and user.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	configRoot, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, err
	}
	dataRoot, err := userDataRoot(runtime.GOOS, configRoot)
	if err != nil {
		return Paths{}, err
	}
	return PathsFor(runtime.GOOS, os.Getenv, configRoot, dataRoot, appDirName(opts))
}

// PathsFor lays out the app files under the given roots, honoring the root
// overrides for goos found through getenv.
func PathsFor(goos string, getenv func(string) string, configRoot, dataRoot, appName string) (Paths, error) {
	if configRoot == "" || dataRoot == "" {
		return Paths{}, errors.New("config and data roots are required")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("app name is required")
	}
	if vars, ok := rootOverrides[goos]; ok && getenv != nil {
		if v := strings.TrimSpace(getenv(vars[0])); v != "" {
			configRoot = v
		}
		if v := strings.TrimSpace(getenv(vars[1])); v != "" {
			dataRoot = v
		}
	}

	configDir := filepath.Join(configRoot, appName)
	dataDir := filepath.Join(dataRoot, appName)
	return Paths{
		ConfigPath:     filepath.Join(configDir, "config.toml"),
		DataDir:        dataDir,
		DBPath:         filepath.Join(dataDir, appName+".db"),
		CredentialPath: filepath.Join(configDir, "credentials"),
	}, nil
}

func appDirName(opts Options) string {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = defaultAppName
	}
	if opts.DevMode {
		name += "-dev"
	}
	return name
}

// userDataRoot is ~/.local/share on unix-likes and the config root elsewhere.
func userDataRoot(goos, configRoot string) (string, error) {
	switch goos {
	case "windows", "darwin":
		return configRoot, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}
