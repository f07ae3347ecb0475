package config

import (
	"os"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Firebase   FirebaseConfig
	Log        LogConfig
	ChronoWave ChronoWaveConfig
	Wave       WaveConfig
	Reveal     RevealConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type LogConfig struct {
	Level  string
	Format string
}

// ChronoWaveConfig controls the batch matcher.
type ChronoWaveConfig struct {
	Interval        time.Duration
	FreshnessWindow time.Duration
	BucketCapacity  int
}

// WaveConfig controls real-time mutual discovery.
type WaveConfig struct {
	CorrelationWindow       time.Duration
	MaxReportDistanceMeters float64
}

// RevealConfig controls the card reveal-phase engine.
type RevealConfig struct {
	Interval           time.Duration
	ChunkSize          int
	LeaseTTL           time.Duration
	MovementMeters     float64
	HardDistanceMeters float64
	HardTime           time.Duration
	SoftDistanceMeters float64
	SoftTime           time.Duration

	// ForceSoftPass makes the soft condition always pass. Dev/test only.
	ForceSoftPass bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envDefault("PORT", "8080"),
			Env:          envDefault("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envDefault("MYSQL_DSN", "flitz:flitz@tcp(localhost:3306)/flitz?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Addr:     envDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		JWT: JWTConfig{
			AccessSecret: envDefault("JWT_SECRET", "change-me-in-production"),
			AccessExpiry: 24 * time.Hour,
			Issuer:       "flitz",
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
		},
		Log: LogConfig{
			Level:  envDefault("LOG_LEVEL", "info"),
			Format: envDefault("LOG_FORMAT", "text"),
		},
		ChronoWave: ChronoWaveConfig{
			Interval:        15 * time.Minute,
			FreshnessWindow: 6 * time.Hour,
			BucketCapacity:  500,
		},
		Wave: WaveConfig{
			CorrelationWindow:       30 * time.Minute,
			MaxReportDistanceMeters: 250,
		},
		Reveal: RevealConfig{
			Interval:           5 * time.Minute,
			ChunkSize:          300,
			LeaseTTL:           15 * time.Minute,
			MovementMeters:     500,
			HardDistanceMeters: 3000,
			HardTime:           3 * time.Hour,
			SoftDistanceMeters: 300,
			SoftTime:           30 * time.Minute,
			ForceSoftPass:      false,
		},
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
