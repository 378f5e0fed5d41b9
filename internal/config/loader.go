package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/agentrun/agentrun/internal/fileutil"
	"github.com/agentrun/agentrun/internal/logger"
)

// Errors raised while loading a run configuration.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrTasksNotList   = errors.New("the 'tasks' field must be a list")
)

// requiredKeys are the top-level keys every run configuration must have.
var requiredKeys = []string{"tasks", "template_dir", "output_dir"}

// MissingKeysError reports every required top-level key absent from a
// configuration document.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("config is missing required keys: %v", e.Keys)
}

// Load reads a run configuration from the given YAML file. It fails if
// the file does not exist, does not parse, or is missing any required
// top-level key. The parsed document is returned without defaulting or
// coercion of the required keys; the optional defaults section is
// merged into each task's metadata.
func Load(ctx context.Context, path string) (*Config, error) {
	lg := logger.FromContext(ctx)

	if !fileutil.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingKeysError{Keys: missing}
	}

	if _, ok := raw["tasks"].([]any); !ok {
		return nil, ErrTasksNotList
	}

	loadDotenv(lg, path)

	cfg, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := mergeDefaults(cfg); err != nil {
		return nil, fmt.Errorf("failed to merge defaults: %w", err)
	}

	lg.Info("Config loaded", "path", path, "tasks", len(cfg.Tasks))
	return cfg, nil
}

// decode maps the raw document onto the typed Config.
func decode(raw map[string]any) (*Config, error) {
	var cfg Config
	md, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := md.Decode(raw); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeDefaults merges the defaults section into each task's metadata.
// Values already present in a task's metadata are kept.
func mergeDefaults(cfg *Config) error {
	if len(cfg.Defaults) == 0 {
		return nil
	}
	for i := range cfg.Tasks {
		if cfg.Tasks[i].Metadata == nil {
			cfg.Tasks[i].Metadata = map[string]any{}
		}
		if err := mergo.Merge(&cfg.Tasks[i].Metadata, cfg.Defaults); err != nil {
			return err
		}
	}
	return nil
}

// loadDotenv loads a .env file next to the config file, if present.
// Variables already set in the environment are kept.
func loadDotenv(lg logger.Logger, configPath string) {
	envFile := filepath.Join(filepath.Dir(configPath), ".env")
	if !fileutil.FileExists(envFile) {
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		lg.Warn("Failed to load .env file", "path", envFile, "err", err)
		return
	}
	lg.Debug("Loaded .env file", "path", envFile)
}
