package utils

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DirStatus tells whether a candidate config directory can hold exdict's files.
type DirStatus struct {
	Exists   bool
	Writable bool
	Err      error // set when the directory could not be created
}

// FileExists reports whether anything exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsReadableFile reports whether path is a regular file that can be opened.
func IsReadableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// EnsureDir creates directory if it doesn't exist
func EnsureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0755)
}

// SaveTOMLFile writes data as TOML next to filePath and renames it into place,
// so a watcher never observes a half-written config.
func SaveTOMLFile(data any, filePath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*")
	if err != nil {
		log.Errorf("Failed to create file: %v", err)
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filePath)
}

// GetAbsolutePath makes a config or source path absolute for display.
// An empty path shows as "unknown".
func GetAbsolutePath(path string) string {
	if path == "" {
		return "unknown"
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// canWrite creates and removes a scratch file in dir.
func canWrite(dir string) bool {
	f, err := os.CreateTemp(dir, "."+AppName+"-write-*")
	if err != nil {
		log.Debugf("Directory %s is not writable: %v", dir, err)
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// ExecutableDir is the directory holding the running exdict binary, with
// symlinks resolved. It is the last place config lookup falls back to.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// StatDir creates dir when missing and checks that exdict can write into it.
func StatDir(dir string) DirStatus {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Debugf("Cannot create directory %s: %v", dir, err)
		return DirStatus{Err: err}
	}
	return DirStatus{Exists: true, Writable: canWrite(dir)}
}
