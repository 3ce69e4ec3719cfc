package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tnqbao/gau-photo-share/entity"
)

func TestStorageProfileSelectsByCallerClass(t *testing.T) {
	t.Setenv("GUEST_STORAGE_ENDPOINT", "guest-minio:9000")
	t.Setenv("REGISTERED_STORAGE_ENDPOINT", "registered-minio:9000")
	t.Setenv("REGISTERED_STORAGE_USE_SSL", "true")
	t.Setenv("REGISTERED_STORAGE_PUBLIC_URL", "https://cdn.example.com/")

	cfg := LoadEnvConfig()

	guest := cfg.StorageProfile(entity.CallerGuest)
	assert.Equal(t, "guest", guest.Name)
	assert.Equal(t, "guest-minio:9000", guest.Endpoint)
	assert.Equal(t, "http://guest-minio:9000", guest.PublicURL)

	registered := cfg.StorageProfile(entity.CallerRegistered)
	assert.Equal(t, "registered", registered.Name)
	assert.True(t, registered.UseSSL)
	assert.Equal(t, "https://cdn.example.com", registered.PublicURL)
}

func TestUnknownCallerClassFallsBackToGuest(t *testing.T) {
	t.Setenv("GUEST_STORAGE_ENDPOINT", "guest-minio:9000")
	cfg := LoadEnvConfig()

	assert.Equal(t, "guest", cfg.StorageProfile(entity.CallerClass("")).Name)
}

func TestDefaults(t *testing.T) {
	t.Setenv("CAPABILITY_TTL_MINUTES", "")
	t.Setenv("DOMAIN_NAME", "")
	cfg := LoadEnvConfig()

	assert.Equal(t, time.Hour, cfg.Storage.CapabilityTTL)
	assert.Equal(t, "readiness-probe", cfg.Readiness.Container)
	assert.Equal(t, "http://localhost:8080/s/ABCDEFGH", cfg.ShortURL("ABCDEFGH"))
}

func TestShortURLUsesHTTPSOutsideLocalhost(t *testing.T) {
	t.Setenv("DOMAIN_NAME", "img.example.com")
	cfg := LoadEnvConfig()

	assert.Equal(t, "https://img.example.com/s/ABC", cfg.ShortURL("ABC"))
}
