package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Model  ModelConfig
	Web    WebConfig
	Logger LoggerConfig
}

// ServerConfig is the prediction API listener.
type ServerConfig struct {
	Host string
	Port int
}

// ModelConfig locates the model bundle and the artifact cache.
type ModelConfig struct {
	ManifestURI   string
	CacheDir      string
	FetchTimeout  time.Duration
	FetchRetries  int
	RetryInterval time.Duration
}

// WebConfig is the frontend listener plus its view of the API.
type WebConfig struct {
	Host          string
	Port          int
	APIBaseURL    string
	Timeout       time.Duration
	RetryAttempts int
	RetryInterval time.Duration
	ScratchDir    string
	ScratchMaxAge time.Duration
	TourDataURL   string
	GenreMapPath  string
	TourCacheTTL  time.Duration
}

type LoggerConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8085)
	v.SetDefault("MODEL_MANIFEST_URI", "models/manifest.json")
	v.SetDefault("MODEL_CACHE_DIR", "persisted_models")
	v.SetDefault("MODEL_FETCH_TIMEOUT", "60s")
	v.SetDefault("MODEL_FETCH_RETRIES", 3)
	v.SetDefault("MODEL_RETRY_INTERVAL", "500ms")
	v.SetDefault("WEB_HOST", "0.0.0.0")
	v.SetDefault("WEB_PORT", 8080)
	v.SetDefault("WEB_API_URL", "http://localhost:8085")
	v.SetDefault("WEB_TIMEOUT", "30s")
	v.SetDefault("WEB_RETRY_ATTEMPTS", 3)
	v.SetDefault("WEB_RETRY_INTERVAL", "250ms")
	v.SetDefault("WEB_SCRATCH_DIR", "downloads")
	v.SetDefault("WEB_SCRATCH_MAX_AGE", "168h")
	v.SetDefault("WEB_TOUR_DATA_URL", "")
	v.SetDefault("WEB_GENRE_MAP", "")
	v.SetDefault("WEB_TOUR_CACHE_TTL", "10m")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("LOGGER_FILE", "")
	v.SetDefault("LOGGER_MAX_SIZE_MB", 50)
	v.SetDefault("LOGGER_MAX_BACKUPS", 3)

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Model: ModelConfig{
			ManifestURI:   v.GetString("MODEL_MANIFEST_URI"),
			CacheDir:      v.GetString("MODEL_CACHE_DIR"),
			FetchTimeout:  duration(v, "MODEL_FETCH_TIMEOUT", 60*time.Second),
			FetchRetries:  v.GetInt("MODEL_FETCH_RETRIES"),
			RetryInterval: duration(v, "MODEL_RETRY_INTERVAL", 500*time.Millisecond),
		},
		Web: WebConfig{
			Host:          v.GetString("WEB_HOST"),
			Port:          v.GetInt("WEB_PORT"),
			APIBaseURL:    v.GetString("WEB_API_URL"),
			Timeout:       duration(v, "WEB_TIMEOUT", 30*time.Second),
			RetryAttempts: v.GetInt("WEB_RETRY_ATTEMPTS"),
			RetryInterval: duration(v, "WEB_RETRY_INTERVAL", 250*time.Millisecond),
			ScratchDir:    v.GetString("WEB_SCRATCH_DIR"),
			ScratchMaxAge: duration(v, "WEB_SCRATCH_MAX_AGE", 7*24*time.Hour),
			TourDataURL:   v.GetString("WEB_TOUR_DATA_URL"),
			GenreMapPath:  v.GetString("WEB_GENRE_MAP"),
			TourCacheTTL:  duration(v, "WEB_TOUR_CACHE_TTL", 10*time.Minute),
		},
		Logger: LoggerConfig{
			Level:      v.GetString("LOGGER_LEVEL"),
			Format:     v.GetString("LOGGER_FORMAT"),
			File:       v.GetString("LOGGER_FILE"),
			MaxSizeMB:  v.GetInt("LOGGER_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOGGER_MAX_BACKUPS"),
		},
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
