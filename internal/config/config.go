package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is everything the storefront reads at startup. It is passed into
// constructors; nothing reads viper after Load returns.
type Config struct {
	HTTP    HTTP
	Auth    Auth
	Store   Store
	Log     Log
	Kafka   Kafka
	Tracing Tracing
	GinMode string
}

type HTTP struct {
	Port            string
	ShutdownTimeout time.Duration
	CORS            CORS
}

type CORS struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Store struct {
	Path string
}

type Log struct {
	Level slog.Level
}

type Kafka struct {
	Brokers []string
}

type Tracing struct {
	JaegerEndpoint string
}

var envBindings = map[string]string{
	"server.http.port":        "PORT",
	"auth.jwt_secret":         "JWT_SECRET",
	"store.path":              "STORE_PATH",
	"log.level":               "LOG_LEVEL",
	"gin.mode":                "GIN_MODE",
	"kafka.brokers":           "KAFKA_BROKERS",
	"tracing.jaeger_endpoint": "JAEGER_ENDPOINT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http.port", "3000")
	v.SetDefault("server.http.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.http.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.http.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE"})
	v.SetDefault("server.http.cors.allowed_headers", []string{"Content-Type", "Authorization"})
	v.SetDefault("server.http.cors.max_age", 300)
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("store.path", "database.json")
	v.SetDefault("log.level", "info")
	v.SetDefault("gin.mode", "release")
}

// Load reads an optional .env file, an optional config.yaml (working
// directory or /etc/storefront) and the environment, in increasing order of
// precedence. It fails when the token signing secret is not configured.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/storefront")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTP: HTTP{
			Port:            v.GetString("server.http.port"),
			ShutdownTimeout: v.GetDuration("server.http.shutdown_timeout"),
			CORS: CORS{
				AllowedOrigins: v.GetStringSlice("server.http.cors.allowed_origins"),
				AllowedMethods: v.GetStringSlice("server.http.cors.allowed_methods"),
				AllowedHeaders: v.GetStringSlice("server.http.cors.allowed_headers"),
				MaxAge:         v.GetInt("server.http.cors.max_age"),
			},
		},
		Auth: Auth{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Store:   Store{Path: v.GetString("store.path")},
		Kafka:   Kafka{Brokers: stringList(v, "kafka.brokers")},
		Tracing: Tracing{JaegerEndpoint: v.GetString("tracing.jaeger_endpoint")},
		GinMode: v.GetString("gin.mode"),
	}

	if err := cfg.Log.Level.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is not set: export JWT_SECRET")
	}
	if cfg.Store.Path == "" {
		return nil, errors.New("store.path is empty")
	}
	return cfg, nil
}

// stringList accepts both a yaml list and a comma separated env value.
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SetupLogger installs a JSON slog handler as the process default.
func SetupLogger(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
