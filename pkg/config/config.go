package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath    = "config.yaml"
	defaultPort          = "8080"
	defaultRedisAddr     = "127.0.0.1:6379"
	defaultGroqModel     = "llama-3.3-70b-versatile"
	defaultVoice         = "en-US-Neural2-D"
	defaultLanguage      = "en-US"
	defaultResolution    = "1080x604"
	defaultImageCount    = 5
	defaultReadyAttempts = 10
	defaultReadyDelay    = 1.0
	defaultFallbackAudio = 60.0
	defaultMinImageWidth = 800
	defaultMinImageHigh  = 600
	defaultMaxAspect     = 2.0
)

type Config struct {
	GroqAPIKey string
	SerpAPIKey string
	GCSBucket  string
	RedisAddr  string
	Project    string

	Server ServerConfig `yaml:"server"`
	Groq   GroqConfig   `yaml:"groq"`
	Speech SpeechConfig `yaml:"speech"`
	Video  VideoConfig  `yaml:"video"`
	Images ImagesConfig `yaml:"images"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type GroqConfig struct {
	Model string `yaml:"model"`
}

type SpeechConfig struct {
	Voice         string  `yaml:"voice"`
	Language      string  `yaml:"language"`
	ReadyAttempts int     `yaml:"ready_attempts"`
	ReadyDelay    float64 `yaml:"ready_delay"` // seconds between readiness probes
}

type VideoConfig struct {
	Resolution    string  `yaml:"resolution"`
	ImageCount    int     `yaml:"image_count"`
	FallbackAudio float64 `yaml:"fallback_audio"` // assumed audio seconds when ffprobe fails
}

type ImagesConfig struct {
	MinWidth  int     `yaml:"min_width"`
	MinHeight int     `yaml:"min_height"`
	MaxAspect float64 `yaml:"max_aspect"`
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GroqAPIKey: os.Getenv("GROQ_API_KEY"),
		SerpAPIKey: os.Getenv("SERP_API_KEY"),
		GCSBucket:  os.Getenv("GCS_BUCKET"),
		RedisAddr:  getEnvOrDefault("REDIS_ADDR", defaultRedisAddr),
		Project:    os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}

	loadYAMLConfig(cfg)

	if err := loadSecrets(ctx, cfg); err != nil {
		slog.Warn("Secret Manager lookup failed, using environment values only", "error", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

func loadYAMLConfig(cfg *Config) {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		slog.Debug("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

// loadSecrets fills API keys left empty by the environment from Google
// Secret Manager, when a project is configured.
func loadSecrets(ctx context.Context, cfg *Config) error {
	if cfg.Project == "" {
		return nil
	}
	if cfg.GroqAPIKey != "" && cfg.SerpAPIKey != "" {
		return nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	secrets := map[string]*string{
		"groq-api-key": &cfg.GroqAPIKey,
		"serp-api-key": &cfg.SerpAPIKey,
	}

	for name, target := range secrets {
		if *target != "" {
			continue
		}
		value, err := accessSecret(ctx, client, cfg.Project, name)
		if err != nil {
			slog.Debug("Secret not available", "secret", name, "error", err)
			continue
		}
		*target = value
	}

	return nil
}

func accessSecret(ctx context.Context, client *secretmanager.Client, project, name string) (string, error) {
	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name),
	})
	if err != nil {
		return "", err
	}
	return string(resp.GetPayload().GetData()), nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(cfg)
	applyGroqDefaults(cfg)
	applySpeechDefaults(cfg)
	applyVideoDefaults(cfg)
	applyImagesDefaults(cfg)
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = getEnvOrDefault("PORT", defaultPort)
	}
}

func applyGroqDefaults(cfg *Config) {
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
}

func applySpeechDefaults(cfg *Config) {
	if cfg.Speech.Voice == "" {
		cfg.Speech.Voice = defaultVoice
	}
	if cfg.Speech.Language == "" {
		cfg.Speech.Language = defaultLanguage
	}
	if cfg.Speech.ReadyAttempts == 0 {
		cfg.Speech.ReadyAttempts = defaultReadyAttempts
	}
	if cfg.Speech.ReadyDelay == 0 {
		cfg.Speech.ReadyDelay = defaultReadyDelay
	}
}

func applyVideoDefaults(cfg *Config) {
	if cfg.Video.Resolution == "" {
		cfg.Video.Resolution = defaultResolution
	}
	if cfg.Video.ImageCount == 0 {
		cfg.Video.ImageCount = defaultImageCount
	}
	if cfg.Video.FallbackAudio == 0 {
		cfg.Video.FallbackAudio = defaultFallbackAudio
	}
}

func applyImagesDefaults(cfg *Config) {
	if cfg.Images.MinWidth == 0 {
		cfg.Images.MinWidth = defaultMinImageWidth
	}
	if cfg.Images.MinHeight == 0 {
		cfg.Images.MinHeight = defaultMinImageHigh
	}
	if cfg.Images.MaxAspect == 0 {
		cfg.Images.MaxAspect = defaultMaxAspect
	}
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
