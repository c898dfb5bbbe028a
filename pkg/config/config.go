// Package config loads the service configuration from a TOML file and
// resolves the default XDG locations for the configuration and the dataset
// files. All paths are carried in an explicitly constructed Config value;
// nothing reads module-level globals at query time.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// Defaults applied when the configuration file is absent or partial.
const (
	DefaultListenAddr        = ":8080"
	DefaultMaxResultsPerPage = 50
	DefaultQueryTimeout      = 5 * time.Second
	DefaultFoodDBName        = "food_nutrition_s3.db"
	DefaultRecipeDBName      = "recipes_s3.db"
)

type Config struct {
	// DataDir holds the dataset files. Defaults to the XDG data directory.
	DataDir string `toml:"data_dir"`

	// FoodDB and RecipeDB override the dataset file locations. When empty
	// they resolve inside DataDir under their conventional names.
	FoodDB   string `toml:"food_db,omitempty"`
	RecipeDB string `toml:"recipe_db,omitempty"`

	// CountryCodes points at a JSON object mapping country names to ISO
	// codes, used by the filter inventory. Optional.
	CountryCodes string `toml:"country_codes,omitempty"`

	ListenAddr        string   `toml:"listen_addr"`
	ImageURL          string   `toml:"image_url,omitempty"`
	MaxResultsPerPage int      `toml:"max_results_per_page"`
	QueryTimeout      Duration `toml:"query_timeout"`

	S3 *S3Config `toml:"s3,omitempty"`
}

// S3Config describes where the pre-built dataset files are published.
// Credentials and region fall back to the standard AWS environment.
type S3Config struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region,omitempty"`
	FoodKey   string `toml:"food_key"`
	RecipeKey string `toml:"recipe_key"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// FoodDBPath returns the configured or conventional food dataset location.
func (c *Config) FoodDBPath() string {
	if c.FoodDB != "" {
		return c.FoodDB
	}
	return filepath.Join(c.DataDir, DefaultFoodDBName)
}

// RecipeDBPath returns the configured or conventional recipe dataset location.
func (c *Config) RecipeDBPath() string {
	if c.RecipeDB != "" {
		return c.RecipeDB
	}
	return filepath.Join(c.DataDir, DefaultRecipeDBName)
}

func GetDefaultConfig() (*Config, error) {
	dataDir, err := GetDefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("getting default data directory: %w", err)
	}
	return &Config{
		DataDir:           dataDir,
		ListenAddr:        DefaultListenAddr,
		MaxResultsPerPage: DefaultMaxResultsPerPage,
		QueryTimeout:      Duration{DefaultQueryTimeout},
	}, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.DataDir == "" {
		dataDir, err := GetDefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("getting default data directory: %w", err)
		}
		config.DataDir = dataDir
	}
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}
	if config.MaxResultsPerPage <= 0 {
		config.MaxResultsPerPage = DefaultMaxResultsPerPage
	}
	if config.QueryTimeout.Duration <= 0 {
		config.QueryTimeout = Duration{DefaultQueryTimeout}
	}

	return &config, nil
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the commented sample configuration with the
// data directory placeholder replaced by the resolved default.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	dataDir := c.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = GetDefaultDataDir()
		if err != nil {
			return fmt.Errorf("getting default data directory: %w", err)
		}
	}

	template := strings.Replace(configTemplate, "/home/user/.local/share/calosync", dataDir, 1)
	return os.WriteFile(configPath, []byte(template), 0644)
}

// LoadCountryCodes reads the country name to ISO code map. A missing or
// unconfigured file yields an empty map rather than an error; the filter
// inventory then reports null codes.
func (c *Config) LoadCountryCodes() (map[string]string, error) {
	if c.CountryCodes == "" {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(c.CountryCodes)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading country codes: %w", err)
	}

	codes := make(map[string]string)
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("unmarshaling country codes: %w", err)
	}
	return codes, nil
}

// GetDefaultDataDir returns the default directory for the dataset files.
func GetDefaultDataDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	serviceDir := filepath.Join(dataDir, "calosync")

	if err := os.MkdirAll(serviceDir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory %s: %w", serviceDir, err)
	}

	return serviceDir, nil
}

// GetConfigDir returns the configuration directory for calosync.
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	serviceConfigDir := filepath.Join(configDir, "calosync")

	if err := os.MkdirAll(serviceConfigDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", serviceConfigDir, err)
	}

	return serviceConfigDir, nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
