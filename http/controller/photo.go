package controller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/http/controller/dto"
	"github.com/tnqbao/gau-photo-share/service"
	"github.com/tnqbao/gau-photo-share/utils"
)

func (ctrl *Controller) GetSignedURL(c *gin.Context) {
	ctx := c.Request.Context()

	caller, err := utils.GetCallerFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: caller not found")
		return
	}

	var req dto.SignedURLRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	if err := entity.ValidateImageName(req.Name); err != nil {
		respondError(c, err, "")
		return
	}

	ctrl.Infra.Telemetry.Metrics.IncrementUploadRequest(ctx)
	ctrl.Infra.Telemetry.Metrics.IncrementImageType(ctx, entity.Extension(req.Name))

	storage := ctrl.Infra.Storage.For(caller.Class)
	capability, err := storage.IssueWriteCapability(ctx, caller.Container(), req.Name, ctrl.Config.EnvConfig.Storage.CapabilityTTL)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to issue write capability for %s", caller.Container())
		respondError(c, err, "Failed to issue upload URL")
		return
	}

	location, err := entity.ParseObjectLocation(capability.URL)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Photo] Issued capability has an unexpected shape")
		utils.JSON500(c, "Failed to issue upload URL")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Photo] Issued write capability %s/%s", location.Container, location.ObjectPath())

	utils.JSON200(c, dto.SignedURLResponseDTO{
		URL:           capability.URL,
		ExpiresAt:     capability.ExpiresAt.UTC().Format(time.RFC3339),
		ContainerName: location.Container,
		FolderName:    location.Folder,
		Name:          location.ObjectName,
	})
}

func (ctrl *Controller) ResizeImage(c *gin.Context) {
	ctx := c.Request.Context()

	caller, err := utils.GetCallerFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: caller not found")
		return
	}

	var req dto.ResizeRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	ctrl.Infra.Telemetry.Metrics.IncrementResolutionRequest(ctx, req.Resolution)

	result, err := ctrl.Service.Orchestrator.ResizeOne(ctx, caller, service.ResizeRequest{
		Name:       req.Name,
		Container:  req.ContainerName,
		Folder:     req.FolderName,
		Resolution: req.Resolution,
	})
	if err != nil {
		respondError(c, err, "Failed to schedule resize")
		return
	}

	utils.JSON202(c, result)
}

func (ctrl *Controller) GetJobStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		utils.JSON400(c, "Invalid job_id format")
		return
	}

	state, err := ctrl.Service.Orchestrator.JobStatus(c.Request.Context(), jobID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(c.Request.Context(), err, "[Photo] Failed to read job %s", jobID)
		utils.JSON500(c, "Failed to read job status")
		return
	}
	if state == nil {
		utils.JSON404(c, "Job not found")
		return
	}

	utils.JSON200(c, state)
}
