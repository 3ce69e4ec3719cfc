package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-photo-share/http/controller/dto"
	"github.com/tnqbao/gau-photo-share/utils"
)

func (ctrl *Controller) Orchestrate(c *gin.Context) {
	ctx := c.Request.Context()

	caller, err := utils.GetCallerFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: caller not found")
		return
	}

	var req dto.OrchestrateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := ctrl.Service.Orchestrator.CreateAsset(ctx, caller, req.URL)
	if err != nil {
		respondError(c, err, "Failed to create short links")
		return
	}

	for _, image := range result.Images {
		ctrl.Infra.Telemetry.Metrics.IncrementResolutionRequest(ctx, image.Resolution.String())
	}

	utils.JSON200(c, result)
}
