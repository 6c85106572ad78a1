// Package config loads the application configuration: a YAML file when
// present, overlaid with environment variables. The GitHub token is only
// ever read from the environment so it never lands in a config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GitHub identifies the repository the push command commits to.
type GitHub struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
}

// Config holds everything the commands need beyond their own flags.
type Config struct {
	Listen    string `yaml:"listen"`
	DBPath    string `yaml:"db_path"`
	PublicDir string `yaml:"public_dir"`
	GitHub    GitHub `yaml:"github"`

	// Token is read from GITHUB_TOKEN and deliberately has no yaml tag
	// counterpart; it is held in memory for the session only.
	Token string `yaml:"-"`
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cardfolio.yaml"
	}
	return filepath.Join(home, ".config", "cardfolio", "config.yaml")
}

func defaults() Config {
	dataDir := "."
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "cardfolio")
	}
	return Config{
		Listen:    ":8877",
		DBPath:    filepath.Join(dataDir, "cardfolio.db"),
		PublicDir: "public",
		GitHub: GitHub{
			Branch: "main",
		},
	}
}

// Load reads the config file at path (missing file is fine, defaults apply)
// and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CARDFOLIO_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("CARDFOLIO_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CARDFOLIO_PUBLIC_DIR"); v != "" {
		cfg.PublicDir = v
	}
	if v := os.Getenv("GITHUB_OWNER"); v != "" {
		cfg.GitHub.Owner = v
	}
	if v := os.Getenv("GITHUB_REPO"); v != "" {
		cfg.GitHub.Repo = v
	}
	if v := os.Getenv("GITHUB_BRANCH"); v != "" {
		cfg.GitHub.Branch = v
	}
	cfg.Token = os.Getenv("GITHUB_TOKEN")
}
