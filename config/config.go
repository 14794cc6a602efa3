package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variables that override the configuration
// file, e.g. DOCGEN_RATE_LIMIT overrides 'rate-limit'.
const EnvPrefix = "DOCGEN_"

type Config struct {
	Workdir         string  `yaml:"workdir"`
	Credentials     string  `yaml:"credentials"`
	Sheet           string  `yaml:"sheet"`
	Workers         int     `yaml:"workers"`
	RateLimit       float64 `yaml:"rate-limit"`
	ContinueOnError bool    `yaml:"continue-on-error"`
	Archive         string  `yaml:"archive"`
	LogRange        string  `yaml:"log-range"`
	Bind            string  `yaml:"bind"`
	MaxConnections  int     `yaml:"max-connections"`
	MaxUpload       int64   `yaml:"max-upload"`
	Metrics         bool    `yaml:"metrics"`
}

func NewConfig() *Config {
	return &Config{
		Workers:        1,
		RateLimit:      0,
		Bind:           "0.0.0.0:8080",
		MaxConnections: 32,
		MaxUpload:      1 << 20,
		Metrics:        true,
	}
}

// Load initialises the configuration from the defaults, then the .env files alongside
// the configuration file and in the current directory, then the YAML configuration file
// and finally the DOCGEN_ environment variables. Missing files are not an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	envfiles := []string{".env"}
	if path != "" {
		envfiles = append([]string{filepath.Join(filepath.Dir(path), ".env")}, envfiles...)
	}

	for _, f := range envfiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading %v (%w)", f, err)
		}
	}

	if path != "" {
		if bytes, err := os.ReadFile(path); err != nil && !os.IsNotExist(err) {
			return nil, err
		} else if err == nil {
			if err := yaml.Unmarshal(bytes, cfg); err != nil {
				return nil, fmt.Errorf("invalid configuration file %v (%w)", path, err)
			}
		}
	}

	if err := Bind(env(os.Environ()), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Bind decodes a map of properties into the target struct using the 'yaml' tags,
// converting string values to the field types where necessary.
func Bind(properties map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})

	if err != nil {
		return fmt.Errorf("failed to create decoder (%w)", err)
	}

	if err := decoder.Decode(properties); err != nil {
		return fmt.Errorf("failed to decode properties (%w)", err)
	}

	return nil
}

func env(environ []string) map[string]any {
	properties := map[string]any{}

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, EnvPrefix) {
			continue
		}

		key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
		key = strings.ReplaceAll(key, "_", "-")

		properties[key] = v
	}

	return properties
}
