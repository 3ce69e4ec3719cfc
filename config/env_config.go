package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tnqbao/gau-photo-share/entity"
)

// StorageProfile is one object store account. Guests and registered callers
// are served from different profiles.
type StorageProfile struct {
	Name      string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	PublicURL string // base for direct URLs, defaults to the endpoint
}

type EnvConfig struct {
	Postgres struct {
		HOST     string
		Database string
		Username string
		Password string
		Port     string
	}
	JWT struct {
		SecretKey string
	}
	CORS struct {
		AllowDomains string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Storage struct {
		Guest         StorageProfile
		Registered    StorageProfile
		CapabilityTTL time.Duration
	}
	Readiness struct {
		Container string
	}
	Reaper struct {
		Interval   time.Duration
		StaleAfter time.Duration
	}
	Jobs struct {
		StatusTTL time.Duration
		Workers   int
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode string
	}
	DomainName string
	HTTPPort   string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.HOST = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = getEnv("PGPOOL_PORT", "5432")

	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")

	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = getEnv("REDIS_HOST", "localhost")
	config.Redis.RedisPort = getEnv("REDIS_PORT", "6379")

	// RabbitMQ
	config.RabbitMQ.Host = getEnv("RABBITMQ_HOST", "localhost")
	config.RabbitMQ.Port = getEnv("RABBITMQ_PORT", "5672")
	config.RabbitMQ.Username = getEnv("RABBITMQ_USER", "guest")
	config.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", "guest")

	// Object storage, one profile per caller class
	config.Storage.Guest = loadStorageProfile("GUEST", "guest")
	config.Storage.Registered = loadStorageProfile("REGISTERED", "registered")
	config.Storage.CapabilityTTL = time.Duration(getEnvInt("CAPABILITY_TTL_MINUTES", 60)) * time.Minute

	config.Readiness.Container = getEnv("READINESS_CONTAINER", "readiness-probe")

	config.Reaper.Interval = time.Duration(getEnvInt("REAPER_INTERVAL_SECONDS", 300)) * time.Second
	config.Reaper.StaleAfter = time.Duration(getEnvInt("REAPER_STALE_AFTER_MINUTES", 30)) * time.Minute

	config.Jobs.StatusTTL = time.Duration(getEnvInt("JOB_STATUS_TTL_HOURS", 24)) * time.Hour
	config.Jobs.Workers = getEnvInt("DERIVATION_WORKERS", 3)

	// Grafana/OpenTelemetry
	grafanaEndpoint := getEnv("GRAFANA_OTLP_ENDPOINT", "localhost:4318")
	// Remove protocol for OpenTelemetry client to avoid duplicate protocols
	grafanaEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	config.Grafana.ServiceName = getEnv("SERVICE_NAME", "gau-photo-share")

	config.Environment.Mode = getEnv("DEPLOY_ENV", "development")

	config.DomainName = getEnv("DOMAIN_NAME", "localhost:8080")
	config.HTTPPort = getEnv("HTTP_PORT", "8080")

	return &config
}

func loadStorageProfile(prefix, name string) StorageProfile {
	profile := StorageProfile{
		Name:      name,
		Endpoint:  os.Getenv(prefix + "_STORAGE_ENDPOINT"),
		AccessKey: os.Getenv(prefix + "_STORAGE_ACCESS_KEY"),
		SecretKey: os.Getenv(prefix + "_STORAGE_SECRET_KEY"),
		UseSSL:    os.Getenv(prefix+"_STORAGE_USE_SSL") == "true",
		Region:    getEnv(prefix+"_STORAGE_REGION", "us-east-1"),
		PublicURL: strings.TrimSuffix(os.Getenv(prefix+"_STORAGE_PUBLIC_URL"), "/"),
	}

	if profile.PublicURL == "" && profile.Endpoint != "" {
		scheme := "http://"
		if profile.UseSSL {
			scheme = "https://"
		}
		profile.PublicURL = scheme + profile.Endpoint
	}

	return profile
}

// StorageProfile resolves the account serving the given caller class.
func (c *EnvConfig) StorageProfile(class entity.CallerClass) StorageProfile {
	if class.IsGuest() {
		return c.Storage.Guest
	}
	return c.Storage.Registered
}

// HTTPProtocol mirrors how short URLs are rendered: plain http on localhost.
func (c *EnvConfig) HTTPProtocol() string {
	if strings.HasPrefix(c.DomainName, "localhost") || strings.HasPrefix(c.DomainName, "127.0.0.1") {
		return "http://"
	}
	return "https://"
}

func (c *EnvConfig) ShortURL(shortID string) string {
	return c.HTTPProtocol() + c.DomainName + "/s/" + shortID
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, err := strconv.Atoi(os.Getenv(key)); err == nil && val > 0 {
		return val
	}
	return fallback
}
