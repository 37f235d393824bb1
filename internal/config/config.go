package config

import "time"

type Config interface {
	EnvConfig
	BackendConfig
	StorageConfig
	StubConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
}

// BackendConfig describes how the console reaches the REST backend.
type BackendConfig interface {
	GetDefaultOrigin() string
	GetAPIPrefix() string
	GetRequestTimeout() time.Duration
}

// StorageConfig selects the durable client-local preference store.
type StorageConfig interface {
	GetPrefsBackend() string
	GetPrefsFile() string
	GetRedisURL() string
	GetRedisKeyPrefix() string
}

// StubConfig is only read by the development stub backend.
type StubConfig interface {
	GetStubAddr() string
	GetSigningSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type mainConfig struct {
	values
}

var _ Config = mainConfig{}

// New returns the built-in defaults without reading files or the environment.
func New() Config {
	return mainConfig{values: defaults()}
}
