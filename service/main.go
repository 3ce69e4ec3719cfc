package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
	"github.com/tnqbao/gau-photo-share/repository"
)

// ShortLinkStore is the entity store as the services see it.
type ShortLinkStore interface {
	Insert(ctx context.Context, link *entity.ShortLink) error
	Query(ctx context.Context, filter repository.QueryFilter) (*entity.ShortLink, error)
	Delete(ctx context.Context, partitionKey, rowKey string) entity.Outcome
}

type AssetStore interface {
	Create(ctx context.Context, asset *entity.Asset) error
	UpdateShortIDs(ctx context.Context, id uuid.UUID, shortIDs []string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.AssetStatus) error
	FindReapable(ctx context.Context, staleBefore time.Time, limit int) ([]entity.Asset, error)
}

type JobStore interface {
	Save(ctx context.Context, state entity.JobState) error
	Get(ctx context.Context, jobID uuid.UUID) (*entity.JobState, error)
}

// DerivationDispatcher hands a job to the derivation workers without
// waiting for it to run.
type DerivationDispatcher interface {
	Dispatch(ctx context.Context, job entity.DerivationJob) error
}

type Service struct {
	Orchestrator *Orchestrator
	ShortLinks   *ShortLinkService
	Readiness    *ReadinessProber
}

func InitService(cfg *config.Config, infra *infra.Infra, repo *repository.Repository) *Service {
	shortIDs := NewShortIDGenerator(time.Now)

	targets := make([]ProbeTarget, 0, 2)
	for _, account := range infra.Storage.All() {
		targets = append(targets, account)
	}

	return &Service{
		Orchestrator: NewOrchestrator(
			cfg.EnvConfig,
			infra.Produce.DerivationService,
			repo.JobStatusRepo,
			repo.ShortLinkRepo,
			repo.AssetRepo,
			shortIDs,
			infra.Logger,
		),
		ShortLinks: NewShortLinkService(cfg.EnvConfig, repo.ShortLinkRepo, shortIDs, infra.Logger),
		Readiness:  NewReadinessProber(targets, repo.ShortLinkRepo, nil, cfg.EnvConfig.Readiness.Container, infra.Logger),
	}
}
