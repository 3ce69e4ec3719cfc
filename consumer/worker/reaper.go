package worker

import (
	"context"
	"time"

	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
	"github.com/tnqbao/gau-photo-share/repository"
	"github.com/tnqbao/gau-photo-share/service"
)

// ReaperWorker runs the saga reaper on a fixed interval.
type ReaperWorker struct {
	reaper   *service.Reaper
	interval time.Duration
	logger   *infra.LoggerClient
}

func NewReaperWorker(cfg *config.EnvConfig, infra *infra.Infra, repo *repository.Repository) *ReaperWorker {
	removers := map[entity.CallerClass]service.ObjectRemover{
		entity.CallerGuest:      infra.Storage.Guest,
		entity.CallerRegistered: infra.Storage.Registered,
	}

	return &ReaperWorker{
		reaper:   service.NewReaper(repo.AssetRepo, repo.ShortLinkRepo, repo.JobStatusRepo, removers, cfg.Reaper.StaleAfter, infra.Logger),
		interval: cfg.Reaper.Interval,
		logger:   infra.Logger,
	}
}

func (w *ReaperWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)

	w.logger.InfoWithContextf(ctx, "[Reaper] Started, running every %s", w.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.logger.InfoWithContextf(ctx, "[Reaper] Shutting down...")
				return
			case <-ticker.C:
				if _, err := w.reaper.Reap(ctx); err != nil {
					w.logger.ErrorWithContextf(ctx, err, "[Reaper] Pass failed")
				}
			}
		}
	}()
}
