package repository

import (
	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/infra"
)

type Repository struct {
	ShortLinkRepo *ShortLinkRepository
	AssetRepo     *AssetRepository
	JobStatusRepo *JobStatusRepository
}

func InitRepository(infra *infra.Infra, cfg *config.Config) *Repository {
	return &Repository{
		ShortLinkRepo: NewShortLinkRepository(infra.Postgres.DB, infra.Redis, infra.Logger),
		AssetRepo:     NewAssetRepository(infra.Postgres.DB),
		JobStatusRepo: NewJobStatusRepository(infra.Redis, cfg.EnvConfig.Jobs.StatusTTL),
	}
}
