package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load resolves configuration in priority order: defaults -> yaml file -> .env -> environment.
// A missing file or .env is not an error.
func Load(path string) (Config, error) {
	v := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := env.Parse(&v); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := v.validate(); err != nil {
		return nil, err
	}
	return mainConfig{values: v}, nil
}

func (v values) validate() error {
	if v.Backend.DefaultOrigin == "" {
		return errors.New("missing BACKEND_ORIGIN")
	}
	switch v.Storage.Backend {
	case PrefsBackendFile, PrefsBackendMemory:
	case PrefsBackendRedis:
		if v.Storage.RedisURL == "" {
			return errors.New("missing REDIS_URL for redis preference backend")
		}
	default:
		return fmt.Errorf("unknown preference backend %q", v.Storage.Backend)
	}
	if v.Backend.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", v.Backend.RequestTimeout)
	}
	return nil
}
