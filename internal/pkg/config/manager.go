package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
)

const (
	// DefaultConfigDir is the directory under the home directory holding the config file.
	DefaultConfigDir = ".config/conv_commit_ai"
	// DefaultConfigFileName is the dotenv file name.
	DefaultConfigFileName = ".env.commits"
	// ConfigFileType is the viper codec used for the config file.
	ConfigFileType = "env"
)

// ViperManager implements the Manager interface using Viper.
type ViperManager struct {
	v          *viper.Viper
	configPath string
}

// DefaultConfigPath returns ~/.config/conv_commit_ai/.env.commits.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to get home directory")
	}
	return filepath.Join(homeDir, filepath.FromSlash(DefaultConfigDir), DefaultConfigFileName), nil
}

// NewManager creates a new configuration manager.
// If configPath is empty, it uses DefaultConfigPath.
func NewManager(configPath string) (*ViperManager, error) {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	v := newFileViper(configPath)

	// Environment variables win over the file.
	for _, key := range Keys {
		_ = v.BindEnv(strings.ToLower(key), key)
	}

	return &ViperManager{
		v:          v,
		configPath: configPath,
	}, nil
}

// newFileViper returns a viper instance that only knows about the file.
func newFileViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigType(ConfigFileType)
	v.SetConfigFile(path)
	return v
}

// readFile loads the config file into v. A missing file is not an error.
func readFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to read config file").
			WithContext("path", v.ConfigFileUsed())
	}
	return nil
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// Load loads the configuration from the environment and the file.
// Priority: env > file
func (m *ViperManager) Load() (*Config, error) {
	if err := readFile(m.v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to unmarshal config")
	}

	cfg.GroqAPIKey = strings.TrimSpace(cfg.GroqAPIKey)
	cfg.AnthropicAPIKey = strings.TrimSpace(cfg.AnthropicAPIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.GroqEndpoint = strings.TrimSpace(cfg.GroqEndpoint)
	cfg.AnthropicEndpoint = strings.TrimSpace(cfg.AnthropicEndpoint)

	apperrors.Debug("Loaded config from %s (file present: %t)", m.configPath, m.ConfigExists())
	return &cfg, nil
}

// Init creates the configuration file with every supported key.
// Values not given are written empty. Sets file permissions to 0600.
func (m *ViperManager) Init(initial map[string]string) error {
	if m.ConfigExists() {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("config file already exists at %s", m.configPath)).
			WithSuggestion("Use 'convcom config set' to change individual keys")
	}

	values := make(map[string]string, len(Keys))
	for _, key := range Keys {
		values[key] = ""
	}
	for key, value := range initial {
		canonical, err := validateEntry(key, value)
		if err != nil {
			return err
		}
		values[canonical] = value
	}

	return m.write(values)
}

// Set writes a single key to the config file, creating the file if needed.
// Only file values are persisted; environment values are never copied into the file.
func (m *ViperManager) Set(key string, value string) error {
	canonical, err := validateEntry(key, value)
	if err != nil {
		return err
	}

	values, err := m.fileValues()
	if err != nil {
		return err
	}
	values[canonical] = value

	return m.write(values)
}

// Get retrieves the effective value of a key.
func (m *ViperManager) Get(key string) (string, error) {
	canonical := NormalizeKey(key)
	if canonical == "" {
		return "", unknownKeyError(key)
	}
	if err := readFile(m.v); err != nil {
		return "", err
	}
	return m.v.GetString(strings.ToLower(canonical)), nil
}

// List returns every supported key with its effective value and source.
func (m *ViperManager) List() ([]Entry, error) {
	file, err := m.fileValues()
	if err != nil {
		return nil, err
	}
	if err := readFile(m.v); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(Keys))
	for _, key := range Keys {
		lower := strings.ToLower(key)
		entry := Entry{Key: key, Value: m.v.GetString(lower)}
		switch {
		case os.Getenv(key) != "":
			entry.Source = SourceEnv
		case file[key] != "":
			entry.Source = SourceFile
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// fileValues returns the keys currently stored in the file, ignoring the environment.
// Keys convcom does not know are kept so they survive a rewrite.
func (m *ViperManager) fileValues() (map[string]string, error) {
	fv := newFileViper(m.configPath)
	if err := readFile(fv); err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for _, key := range fv.AllKeys() {
		values[strings.ToUpper(key)] = fv.GetString(key)
	}
	return values, nil
}

// write persists values as a dotenv file with 0600 permissions.
func (m *ViperManager) write(values map[string]string) error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to create config directory")
	}

	content, err := gotenv.Marshal(gotenv.Env(values))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to encode config file")
	}

	if err := os.WriteFile(m.configPath, []byte(content+"\n"), 0600); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to write config file")
	}

	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(m.configPath, 0600); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to set config file permissions")
	}

	return nil
}

func validateEntry(key, value string) (string, error) {
	canonical := NormalizeKey(key)
	if canonical == "" {
		return "", unknownKeyError(key)
	}
	if strings.ContainsAny(value, "\r\n") {
		return "", apperrors.NewInvalidConfigError(fmt.Sprintf("value for %s must be a single line", canonical))
	}
	return canonical, nil
}

func unknownKeyError(key string) *apperrors.AppError {
	return apperrors.NewInvalidConfigError(fmt.Sprintf("unknown config key: %s", key)).
		WithSuggestion("Supported keys: " + strings.Join(Keys, ", "))
}
