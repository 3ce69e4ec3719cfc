package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
)

type ImageResponse struct {
	URL        string            `json:"url"`
	Resolution entity.Resolution `json:"resolution"`
}

type ShortURLResponse struct {
	ShortID        string `json:"short_id"`
	ShortURL       string `json:"short_url"`
	OriginalURL    string `json:"original_url"`
	ShouldRedirect bool   `json:"should_redirect"`
}

type JobHandle struct {
	JobID      uuid.UUID         `json:"job_id"`
	Resolution entity.Resolution `json:"resolution"`
	Status     entity.JobStatus  `json:"status"`
}

type AssetItem struct {
	Image     ImageResponse    `json:"image"`
	ShortLink ShortURLResponse `json:"short_link"`
	Job       JobHandle        `json:"job"`
}

type AssetResult struct {
	AssetID    uuid.UUID          `json:"asset_id"`
	Images     []ImageResponse    `json:"images"`
	ShortLinks []ShortURLResponse `json:"short_links"`
	Jobs       []JobHandle        `json:"jobs"`
	Items      []AssetItem        `json:"items"`
}

type ResizeRequest struct {
	Name       string
	Container  string
	Folder     string
	Resolution string
}

type ResizeResult struct {
	Image ImageResponse `json:"image"`
	Job   JobHandle     `json:"job"`
}

// Orchestrator turns an uploaded original into derivation jobs plus one
// short link per expected variant.
type Orchestrator struct {
	cfg        *config.EnvConfig
	dispatcher DerivationDispatcher
	jobs       JobStore
	links      ShortLinkStore
	assets     AssetStore
	shortIDs   *ShortIDGenerator
	logger     *infra.LoggerClient
}

func NewOrchestrator(
	cfg *config.EnvConfig,
	dispatcher DerivationDispatcher,
	jobs JobStore,
	links ShortLinkStore,
	assets AssetStore,
	shortIDs *ShortIDGenerator,
	logger *infra.LoggerClient,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		dispatcher: dispatcher,
		jobs:       jobs,
		links:      links,
		assets:     assets,
		shortIDs:   shortIDs,
		logger:     logger,
	}
}

// CreateAsset records the asset, dispatches one derivation per resolution
// and links every expected variant URL. It does not wait for derivation.
// On a failed link insert the asset is marked failed and whatever was
// already created is left for the reaper.
func (o *Orchestrator) CreateAsset(ctx context.Context, caller entity.Caller, originalURL string) (*AssetResult, error) {
	location, err := o.locate(caller, originalURL)
	if err != nil {
		return nil, err
	}

	asset := &entity.Asset{
		ID:         uuid.New(),
		Profile:    caller.Class,
		Container:  location.Container,
		Folder:     location.Folder,
		ObjectName: location.ObjectName,
		Status:     entity.AssetStatusPending,
	}
	if err := o.assets.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to record asset: %w", err)
	}

	result := &AssetResult{AssetID: asset.ID}
	for _, resolution := range entity.Resolutions() {
		job := entity.NewDerivationJob(caller.Class, location.Container, location.Folder, location.ObjectName, resolution)
		if err := o.dispatch(ctx, job); err != nil {
			o.markFailed(ctx, asset.ID)
			return nil, err
		}

		result.Images = append(result.Images, ImageResponse{URL: location.VariantURL(resolution), Resolution: resolution})
		result.Jobs = append(result.Jobs, JobHandle{JobID: job.ID, Resolution: resolution, Status: entity.JobStatusPending})
	}

	shortIDs := make([]string, 0, len(result.Images))
	for _, image := range result.Images {
		link, err := o.link(ctx, image.URL)
		if err != nil {
			o.markFailed(ctx, asset.ID)
			return nil, err
		}

		shortIDs = append(shortIDs, link.ShortID)
		if err := o.assets.UpdateShortIDs(ctx, asset.ID, shortIDs); err != nil {
			o.logger.ErrorWithContextf(ctx, err, "[Orchestrator] Failed to record short id %s on asset %s", link.ShortID, asset.ID)
		}
		result.ShortLinks = append(result.ShortLinks, *link)
	}

	if err := o.assets.UpdateStatus(ctx, asset.ID, entity.AssetStatusLinked); err != nil {
		o.logger.ErrorWithContextf(ctx, err, "[Orchestrator] Failed to mark asset %s linked", asset.ID)
	}

	for i := range result.Images {
		result.Items = append(result.Items, AssetItem{
			Image:     result.Images[i],
			ShortLink: result.ShortLinks[i],
			Job:       result.Jobs[i],
		})
	}

	o.logger.InfoWithContextf(ctx, "[Orchestrator] Asset %s linked with %d variants", asset.ID, len(result.Images))
	return result, nil
}

// ResizeOne dispatches a single derivation and returns where the variant
// will appear.
func (o *Orchestrator) ResizeOne(ctx context.Context, caller entity.Caller, req ResizeRequest) (*ResizeResult, error) {
	if err := entity.ValidateImageName(req.Name); err != nil {
		return nil, err
	}
	if req.Container == "" || req.Folder == "" {
		return nil, entity.NewValidationError("container_name", "container and folder are required")
	}

	resolution, err := entity.ParseResolution(req.Resolution)
	if err != nil {
		return nil, err
	}
	name := entity.NormalizeObjectName(req.Name)

	location := entity.ObjectLocation{
		BaseURL:    o.cfg.StorageProfile(caller.Class).PublicURL,
		Container:  req.Container,
		Folder:     req.Folder,
		ObjectName: name,
	}

	job := entity.NewDerivationJob(caller.Class, req.Container, req.Folder, name, resolution)
	if err := o.dispatch(ctx, job); err != nil {
		return nil, err
	}

	return &ResizeResult{
		Image: ImageResponse{URL: location.VariantURL(resolution), Resolution: resolution},
		Job:   JobHandle{JobID: job.ID, Resolution: resolution, Status: entity.JobStatusPending},
	}, nil
}

func (o *Orchestrator) JobStatus(ctx context.Context, jobID uuid.UUID) (*entity.JobState, error) {
	return o.jobs.Get(ctx, jobID)
}

// locate parses the uploaded URL and roots variant URLs at the caller's
// profile when it has a public base configured.
func (o *Orchestrator) locate(caller entity.Caller, originalURL string) (entity.ObjectLocation, error) {
	location, err := entity.ParseObjectLocation(originalURL)
	if err != nil {
		return location, err
	}
	if err := entity.ValidateImageName(location.ObjectName); err != nil {
		return location, err
	}

	if base := o.cfg.StorageProfile(caller.Class).PublicURL; base != "" {
		location.BaseURL = base
	}
	return location, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, job entity.DerivationJob) error {
	state := entity.JobState{
		JobID:      job.ID,
		Status:     entity.JobStatusPending,
		Resolution: job.Resolution,
		UpdatedAt:  time.Now().Unix(),
	}
	if err := o.jobs.Save(ctx, state); err != nil {
		o.logger.WarningWithContextf(ctx, "[Orchestrator] Failed to record job %s as pending: %v", job.ID, err)
	}

	if err := o.dispatcher.Dispatch(ctx, job); err != nil {
		o.logger.ErrorWithContextf(ctx, err, "[Orchestrator] Failed to dispatch job %s", job.ID)
		state.Status = entity.JobStatusFailed
		state.Error = err.Error()
		_ = o.jobs.Save(ctx, state)
		return fmt.Errorf("failed to dispatch %s derivation: %w", job.Resolution, err)
	}
	return nil
}

func (o *Orchestrator) link(ctx context.Context, url string) (*ShortURLResponse, error) {
	shortID := o.shortIDs.Generate(url)
	if err := o.links.Insert(ctx, entity.NewShortLink(shortID, url)); err != nil {
		o.logger.ErrorWithContextf(ctx, err, "[Orchestrator] Failed to insert short link %s", shortID)
		return nil, fmt.Errorf("failed to create short link: %w", err)
	}

	return &ShortURLResponse{
		ShortID:        shortID,
		ShortURL:       o.cfg.ShortURL(shortID),
		OriginalURL:    url,
		ShouldRedirect: false,
	}, nil
}

func (o *Orchestrator) markFailed(ctx context.Context, assetID uuid.UUID) {
	if err := o.assets.UpdateStatus(ctx, assetID, entity.AssetStatusFailed); err != nil {
		o.logger.ErrorWithContextf(ctx, err, "[Orchestrator] Failed to mark asset %s failed", assetID)
	}
}
