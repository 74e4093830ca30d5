/*
Package config manages TOML config for exdict.

The file holds server and CLI options plus an ordered list of [[sources]],
each describing one CSV/TSV file that feeds the dictionary:

	[[sources]]
	path = "dict/orders.tsv"
	id_column = 0
	value_column = 1
	description_columns = [2, 3]
	encoding = "shift_jis"
	has_header = true

Relative paths are resolved against the directory holding the config file.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/exdict/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Server  ServerConfig   `toml:"server"`
	CLI     CliConfig      `toml:"cli"`
	Log     LogConfig      `toml:"log"`
	Sources []SourceConfig `toml:"sources,omitempty"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxTokenLength int  `toml:"max_token_length"`
	CompleteLimit  int  `toml:"complete_limit"`
	Watch          bool `toml:"watch"`
	DebounceMs     int  `toml:"debounce_ms"`
	DiagnosticKeep int  `toml:"diagnostic_keep"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	ShowTiming    bool `toml:"show_timing"`
	CompleteLimit int  `toml:"complete_limit"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `toml:"level"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/exdict
// 2. ~/Library/Application Support/exdict (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.ExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", utils.AppName)
	if utils.StatDir(primaryPath).Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", utils.AppName)
	if utils.StatDir(macOSPath).Writable {
		return macOSPath, nil
	}
	execDir, err := utils.ExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml.
// The platform config dir ($XDG_CONFIG_HOME, %APPDATA%) wins when writable.
func GetDefaultConfigPath() (string, error) {
	locator, err := utils.NewConfigLocator()
	if err == nil {
		return locator.Path("config.toml"), nil
	}
	log.Debugf("Config locator unavailable: %v", err)

	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/exdict/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxTokenLength: 128,
			CompleteLimit:  20,
			Watch:          false,
			DebounceMs:     250,
			DiagnosticKeep: 200,
		},
		CLI: CliConfig{
			ShowTiming:    false,
			CompleteLimit: 10,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.normalize()
	return config, nil
}

// tryPartialParse salvages what it can section by section.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	if logSection, ok := utils.ExtractSection(tempConfig, "log"); ok {
		if val, ok := utils.ExtractString(logSection, "level"); ok {
			config.Log.Level = val
		}
	}
	if tables, ok := utils.ExtractTables(tempConfig, "sources"); ok {
		for i, table := range tables {
			src, ok := extractSourceConfig(table)
			if !ok {
				log.Warnf("Ignoring sources entry %d in %s: missing path", i, configPath)
				continue
			}
			config.Sources = append(config.Sources, src)
		}
	}
	config.normalize()
	return config, nil
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_token_length"); ok {
		server.MaxTokenLength = val
	}
	if val, ok := utils.ExtractInt64(data, "complete_limit"); ok {
		server.CompleteLimit = val
	}
	if val, ok := utils.ExtractBool(data, "watch"); ok {
		server.Watch = val
	}
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		server.DebounceMs = val
	}
	if val, ok := utils.ExtractInt64(data, "diagnostic_keep"); ok {
		server.DiagnosticKeep = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "show_timing"); ok {
		cli.ShowTiming = val
	}
	if val, ok := utils.ExtractInt64(data, "complete_limit"); ok {
		cli.CompleteLimit = val
	}
}

// extractSourceConfig extracts one [[sources]] entry, field by field.
func extractSourceConfig(data map[string]any) (SourceConfig, bool) {
	var src SourceConfig
	path, ok := utils.ExtractString(data, "path")
	if !ok || path == "" {
		return src, false
	}
	src.Path = path
	src.IDColumn, _ = utils.ExtractInt64(data, "id_column")
	src.ValueColumn, _ = utils.ExtractInt64(data, "value_column")
	src.Encoding, _ = utils.ExtractString(data, "encoding")
	if val, ok := utils.ExtractBool(data, "has_header"); ok {
		src.HasHeader = &val
	}
	if val, ok := utils.ExtractInt64(data, "description_columns"); ok {
		src.DescriptionColumns = SingleColumnSpec(val)
	} else if list, ok := utils.ExtractIntList(data, "description_columns"); ok {
		src.DescriptionColumns = ListColumnSpec(list...)
	}
	return src, true
}

// normalize replaces nonsensical values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Server.MaxTokenLength <= 0 {
		c.Server.MaxTokenLength = def.Server.MaxTokenLength
	}
	if c.Server.CompleteLimit <= 0 {
		c.Server.CompleteLimit = def.Server.CompleteLimit
	}
	if c.Server.DebounceMs < 0 {
		c.Server.DebounceMs = def.Server.DebounceMs
	}
	if c.Server.DiagnosticKeep <= 0 {
		c.Server.DiagnosticKeep = def.Server.DiagnosticKeep
	}
	if c.CLI.CompleteLimit <= 0 {
		c.CLI.CompleteLimit = def.CLI.CompleteLimit
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// BaseDir is the directory relative source paths are resolved against.
func BaseDir(configPath string) string {
	if configPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			return cwd
		}
		return "."
	}
	return filepath.Dir(utils.GetAbsolutePath(configPath))
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server values and saves to file
func (c *Config) Update(configPath string, maxTokenLength, completeLimit *int, watch *bool) error {
	server := &c.Server
	if maxTokenLength != nil {
		server.MaxTokenLength = *maxTokenLength
	}
	if completeLimit != nil {
		server.CompleteLimit = *completeLimit
	}
	if watch != nil {
		server.Watch = *watch
	}
	return SaveConfig(c, configPath)
}
