package infra

import (
	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/entity"
)

// StorageAccounts routes a caller class to the object store serving it.
type StorageAccounts struct {
	Guest      *MinioClient
	Registered *MinioClient
}

func InitStorageAccounts(cfg *config.EnvConfig, logger *LoggerClient) *StorageAccounts {
	return &StorageAccounts{
		Guest:      InitMinioClient(cfg.Storage.Guest, logger),
		Registered: InitMinioClient(cfg.Storage.Registered, logger),
	}
}

func (s *StorageAccounts) For(class entity.CallerClass) *MinioClient {
	if class.IsGuest() {
		return s.Guest
	}
	return s.Registered
}

func (s *StorageAccounts) All() []*MinioClient {
	return []*MinioClient{s.Guest, s.Registered}
}
