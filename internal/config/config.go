// Package config loads per-binary configuration from environment variables,
// with an optional .env file for local runs.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func loadDotenv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}
}

// TransformConfig configures the firehose-transform function. The mirror
// fields are optional; the mirror is enabled when LIVEFEED_URL is set.
type TransformConfig struct {
	LivefeedURL    string
	LivefeedToken  string
	LivefeedOrg    string
	LivefeedBucket string
}

// LoadTransformConfig loads the transform configuration.
func LoadTransformConfig() (TransformConfig, error) {
	loadDotenv()

	cfg := TransformConfig{
		LivefeedURL:    os.Getenv("LIVEFEED_URL"),
		LivefeedToken:  os.Getenv("LIVEFEED_TOKEN"),
		LivefeedOrg:    os.Getenv("LIVEFEED_ORG"),
		LivefeedBucket: os.Getenv("LIVEFEED_BUCKET"),
	}
	if cfg.LivefeedURL != "" && (cfg.LivefeedToken == "" || cfg.LivefeedOrg == "" || cfg.LivefeedBucket == "") {
		return TransformConfig{}, fmt.Errorf("livefeed configuration is incomplete. Please set LIVEFEED_TOKEN, LIVEFEED_ORG and LIVEFEED_BUCKET")
	}
	return cfg, nil
}

// MirrorEnabled reports whether the InfluxDB mirror is configured.
func (c TransformConfig) MirrorEnabled() bool {
	return c.LivefeedURL != ""
}

// AlarmConfig configures the alarm-processor function.
type AlarmConfig struct {
	S3Bucket         string
	S3Prefix         string
	SESFrom          string
	DefaultRecipient string
	WebhookURL       string
}

// LoadAlarmConfig loads the alarm configuration.
func LoadAlarmConfig() (AlarmConfig, error) {
	loadDotenv()

	cfg := AlarmConfig{
		S3Bucket:         getenvDefault("S3_BUCKET", "biorreator-data-tcc"),
		S3Prefix:         getenvDefault("S3_PREFIX", "alarms/"),
		SESFrom:          os.Getenv("SES_FROM"),
		DefaultRecipient: os.Getenv("DEFAULT_RECIPIENT"),
		WebhookURL:       os.Getenv("ALARM_WEBHOOK_URL"),
	}
	if cfg.SESFrom == "" {
		return AlarmConfig{}, fmt.Errorf("SES_FROM environment variable is not set")
	}
	if cfg.DefaultRecipient == "" {
		cfg.DefaultRecipient = cfg.SESFrom
	}
	return cfg, nil
}

// QueryAPIConfig configures the dashboard query API.
type QueryAPIConfig struct {
	Port           string
	TableLocation  string
	Workgroup      string
	OutputLocation string
	RedisAddr      string
	RedisPassword  string
	CacheTTL       time.Duration
	AuthIssuerURL  string
	AuthAudience   string
	AllowedOrigin  string
	RegisterTable  bool
}

// LoadQueryAPIConfig loads the query API configuration.
func LoadQueryAPIConfig() (QueryAPIConfig, error) {
	loadDotenv()

	cacheTTL := time.Minute
	if raw := os.Getenv("CACHE_TTL_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return QueryAPIConfig{}, fmt.Errorf("invalid CACHE_TTL_SECONDS %q", raw)
		}
		cacheTTL = time.Duration(seconds) * time.Second
	}

	cfg := QueryAPIConfig{
		Port:           getenvDefault("PORT", "8081"),
		TableLocation:  os.Getenv("TABLE_LOCATION"),
		Workgroup:      getenvDefault("ATHENA_WORKGROUP", "primary"),
		OutputLocation: os.Getenv("ATHENA_OUTPUT_LOCATION"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		CacheTTL:       cacheTTL,
		AuthIssuerURL:  os.Getenv("AUTH_ISSUER_URL"),
		AuthAudience:   os.Getenv("AUTH_AUDIENCE"),
		AllowedOrigin:  getenvDefault("ALLOWED_ORIGIN", "http://localhost:5173"),
		RegisterTable:  os.Getenv("REGISTER_TABLE") == "true",
	}
	if cfg.TableLocation == "" || cfg.OutputLocation == "" {
		return QueryAPIConfig{}, fmt.Errorf("query API configuration is incomplete. Please set TABLE_LOCATION and ATHENA_OUTPUT_LOCATION environment variables")
	}
	if cfg.AuthIssuerURL == "" || cfg.AuthAudience == "" {
		return QueryAPIConfig{}, fmt.Errorf("auth configuration is incomplete. Please set AUTH_ISSUER_URL and AUTH_AUDIENCE environment variables")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
