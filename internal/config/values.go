package config

import (
	"path/filepath"
	"time"
)

const (
	PrefsBackendFile   = "file"
	PrefsBackendRedis  = "redis"
	PrefsBackendMemory = "memory"
)

// values carries both yaml and env tags so a single struct is filled by the
// file layer and then overridden by the environment layer.
type values struct {
	AppName    string `yaml:"app_name" env:"APP_NAME"`
	Env        string `yaml:"env" env:"ENV"`
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL"`
	DataFolder string `yaml:"data_folder" env:"FOLDER"`

	Backend struct {
		DefaultOrigin  string        `yaml:"default_origin" env:"BACKEND_ORIGIN"`
		APIPrefix      string        `yaml:"api_prefix" env:"BACKEND_API_PREFIX"`
		RequestTimeout time.Duration `yaml:"request_timeout" env:"BACKEND_REQUEST_TIMEOUT"`
	} `yaml:"backend"`

	Storage struct {
		Backend        string `yaml:"backend" env:"PREFS_BACKEND"`
		File           string `yaml:"file" env:"PREFS_FILE"`
		RedisURL       string `yaml:"redis_url" env:"REDIS_URL"`
		RedisKeyPrefix string `yaml:"redis_key_prefix" env:"REDIS_KEY_PREFIX"`
	} `yaml:"storage"`

	Stub struct {
		Addr               string        `yaml:"addr" env:"STUB_ADDR"`
		SigningSecret      string        `yaml:"signing_secret" env:"STUB_SIGNING_SECRET"`
		AccessTokenExpiry  time.Duration `yaml:"access_token_expiry" env:"STUB_ACCESS_TOKEN_EXPIRY"`
		RefreshTokenExpiry time.Duration `yaml:"refresh_token_expiry" env:"STUB_REFRESH_TOKEN_EXPIRY"`
	} `yaml:"stub"`
}

func defaults() values {
	var v values
	v.AppName = "POS Console"
	v.Env = "DEV"
	v.LogLevel = "info"
	v.DataFolder = "./data"
	v.Backend.DefaultOrigin = "http://localhost:8080"
	v.Backend.APIPrefix = "/api/v1"
	v.Backend.RequestTimeout = 15 * time.Second
	v.Storage.Backend = PrefsBackendFile
	v.Storage.RedisKeyPrefix = "pos-console:"
	v.Stub.Addr = ":8080"
	v.Stub.SigningSecret = "dev-signing-secret"
	v.Stub.AccessTokenExpiry = 15 * time.Minute
	v.Stub.RefreshTokenExpiry = 7 * 24 * time.Hour // 7 days
	return v
}

func (v values) GetAppName() string    { return v.AppName }
func (v values) GetLogLevel() string   { return v.LogLevel }
func (v values) GetDataFolder() string { return v.DataFolder }

func (v values) GetEnv() string {
	if v.Env == "" {
		return "DEV"
	}
	return v.Env
}

func (v values) GetDefaultOrigin() string             { return v.Backend.DefaultOrigin }
func (v values) GetAPIPrefix() string                 { return v.Backend.APIPrefix }
func (v values) GetRequestTimeout() time.Duration     { return v.Backend.RequestTimeout }
func (v values) GetPrefsBackend() string              { return v.Storage.Backend }
func (v values) GetRedisURL() string                  { return v.Storage.RedisURL }
func (v values) GetRedisKeyPrefix() string            { return v.Storage.RedisKeyPrefix }
func (v values) GetStubAddr() string                  { return v.Stub.Addr }
func (v values) GetSigningSecret() string             { return v.Stub.SigningSecret }
func (v values) GetAccessTokenExpiry() time.Duration  { return v.Stub.AccessTokenExpiry }
func (v values) GetRefreshTokenExpiry() time.Duration { return v.Stub.RefreshTokenExpiry }

// GetPrefsFile defaults to prefs.json inside the data folder.
func (v values) GetPrefsFile() string {
	if v.Storage.File != "" {
		return v.Storage.File
	}
	return filepath.Join(v.DataFolder, "prefs.json")
}
