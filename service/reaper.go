package service

import (
	"context"
	"path"
	"time"

	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
)

const reapBatchSize = 100

// ObjectRemover deletes objects from one storage account.
type ObjectRemover interface {
	DeleteObjects(ctx context.Context, container string, objectPaths ...string) entity.Outcome
}

// Reaper compensates orchestrations that never reached the linked state:
// it deletes their short links and derived variants, never the original.
// Assets with a derivation still pending or running are left for a later
// pass, since the worker would write the variant again after the delete.
type Reaper struct {
	assets     AssetStore
	links      ShortLinkStore
	jobs       JobStore
	removers   map[entity.CallerClass]ObjectRemover
	staleAfter time.Duration
	now        func() time.Time
	logger     *infra.LoggerClient
}

func NewReaper(assets AssetStore, links ShortLinkStore, jobs JobStore, removers map[entity.CallerClass]ObjectRemover, staleAfter time.Duration, logger *infra.LoggerClient) *Reaper {
	return &Reaper{
		assets:     assets,
		links:      links,
		jobs:       jobs,
		removers:   removers,
		staleAfter: staleAfter,
		now:        time.Now,
		logger:     logger,
	}
}

// Reap runs one pass and returns how many assets were fully compensated.
// An asset with any failed deletion stays as it is and is retried next pass.
func (r *Reaper) Reap(ctx context.Context) (int, error) {
	assets, err := r.assets.FindReapable(ctx, r.now().Add(-r.staleAfter), reapBatchSize)
	if err != nil {
		return 0, err
	}

	reaped := 0
	for i := range assets {
		asset := &assets[i]
		if r.derivationInFlight(ctx, asset) {
			continue
		}
		if !r.compensate(ctx, asset) {
			continue
		}

		if err := r.assets.UpdateStatus(ctx, asset.ID, entity.AssetStatusReaped); err != nil {
			r.logger.ErrorWithContextf(ctx, err, "[Reaper] Failed to mark asset %s reaped", asset.ID)
			continue
		}
		reaped++
	}

	if reaped > 0 {
		r.logger.InfoWithContextf(ctx, "[Reaper] Reaped %d of %d assets", reaped, len(assets))
	}
	return reaped, nil
}

// derivationInFlight treats an unreadable job status as in flight. A job whose
// status has expired counts as finished.
func (r *Reaper) derivationInFlight(ctx context.Context, asset *entity.Asset) bool {
	for _, resolution := range entity.Resolutions() {
		job := entity.NewDerivationJob(asset.Profile, asset.Container, asset.Folder, asset.ObjectName, resolution)

		state, err := r.jobs.Get(ctx, job.ID)
		if err != nil {
			r.logger.WarningWithContextf(ctx, "[Reaper] Failed to read job %s of asset %s: %v", job.ID, asset.ID, err)
			return true
		}
		if state != nil && (state.Status == entity.JobStatusPending || state.Status == entity.JobStatusRunning) {
			r.logger.InfoWithContextf(ctx, "[Reaper] Asset %s waits for job %s (%s)", asset.ID, job.ID, state.Status)
			return true
		}
	}
	return false
}

func (r *Reaper) compensate(ctx context.Context, asset *entity.Asset) bool {
	ok := true

	for _, shortID := range asset.ShortIDs {
		if outcome := r.links.Delete(ctx, shortID, shortID); !outcome.Succeeded() {
			ok = false
		}
	}

	remover, found := r.removers[asset.Profile]
	if !found {
		r.logger.WarningWithContextf(ctx, "[Reaper] No storage account for profile %s of asset %s", asset.Profile, asset.ID)
		return false
	}

	variants := make([]string, 0, len(entity.Resolutions()))
	for _, resolution := range entity.Resolutions() {
		variants = append(variants, path.Join(asset.Folder, entity.VariantObjectName(asset.ObjectName, resolution)))
	}
	if outcome := remover.DeleteObjects(ctx, asset.Container, variants...); !outcome.Succeeded() {
		ok = false
	}

	return ok
}
