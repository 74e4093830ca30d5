package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// AppName names the config directory.
const AppName = "exdict"

// ConfigLocator finds a writable home for config.toml. The platform config
// dir comes first, then ~/.exdict, the temp dir and the binary's own dir.
type ConfigLocator struct {
	exe     string
	home    string
	primary string
}

// NewConfigLocator inspects the running binary and the user's environment.
// It fails only when the executable path cannot be determined.
func NewConfigLocator() (*ConfigLocator, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	if exe, err = filepath.EvalSymlinks(exe); err != nil {
		return nil, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("No home directory, config falls back to %s: %v", os.TempDir(), err)
		home = os.TempDir()
	}

	l := &ConfigLocator{exe: exe, home: home, primary: platformConfigDir(home)}
	log.Debugf("Config locator: exe=%s primary=%s", exe, l.primary)
	return l, nil
}

// platformConfigDir is $XDG_CONFIG_HOME/exdict on Linux, %APPDATA%\exdict on
// Windows and ~/.config/exdict on macOS.
func platformConfigDir(home string) string {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName)
		}
		return filepath.Join(home, ".config", AppName)
	case "darwin":
		return filepath.Join(home, ".config", AppName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(home, "AppData", "Roaming", AppName)
	default:
		return filepath.Join(home, "."+AppName)
	}
}

// candidates lists config directories in the order they are tried.
func (l *ConfigLocator) candidates() []string {
	return []string{
		l.primary,
		filepath.Join(l.home, "."+AppName),
		filepath.Join(os.TempDir(), AppName),
		filepath.Dir(l.exe),
	}
}

// Path returns where filename should live: inside the first candidate
// directory that exists or can be created and is writable. When none is, the
// file goes straight into the temp dir.
func (l *ConfigLocator) Path(filename string) string {
	for i, dir := range l.candidates() {
		if !StatDir(dir).Writable {
			continue
		}
		path := filepath.Join(dir, filename)
		if i > 0 {
			log.Warnf("Using fallback config location: %s", path)
		}
		return path
	}
	path := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", path)
	return path
}

// ResolveAgainst resolves p relative to base. Absolute paths and a leading
// "~/" are honored; an empty base means the current working directory.
func ResolveAgainst(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if base == "" {
		if cwd, err := os.Getwd(); err == nil {
			base = cwd
		}
	}
	return filepath.Join(base, p)
}

// RuntimeInfo is logged in debug mode to explain which config and sources
// were picked up.
func (l *ConfigLocator) RuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()
	info := map[string]string{
		"exe":        l.exe,
		"cwd":        cwd,
		"home":       l.home,
		"config_dir": l.primary,
		"os":         runtime.GOOS + "/" + runtime.GOARCH,
	}
	for _, name := range []string{"XDG_CONFIG_HOME", "APPDATA"} {
		if v := os.Getenv(name); v != "" {
			info["env_"+strings.ToLower(name)] = v
		}
	}
	return info
}
