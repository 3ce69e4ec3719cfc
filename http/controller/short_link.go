package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-photo-share/http/controller/dto"
	"github.com/tnqbao/gau-photo-share/utils"
)

func (ctrl *Controller) CreateShortLink(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ShortURLRequestDTO
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSON400(c, "Invalid request body: "+err.Error())
			return
		}
	}
	if req.URL == "" {
		req.URL = c.Query("url")
	}
	if req.URL == "" {
		utils.JSON400(c, "url is required")
		return
	}

	ctrl.Infra.Telemetry.Metrics.IncrementURLShortenerRequest(ctx, "create")

	resp, err := ctrl.Service.ShortLinks.Shorten(ctx, req.URL)
	if err != nil {
		respondError(c, err, "Failed to create short link")
		return
	}

	utils.JSON200(c, resp)
}

func (ctrl *Controller) RedirectShortLink(c *gin.Context) {
	ctx := c.Request.Context()
	shortID := c.Param("short_id")

	ctrl.Infra.Telemetry.Metrics.IncrementURLShortenerRequest(ctx, "redirect")

	link, err := ctrl.Service.ShortLinks.Resolve(ctx, shortID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[ShortLink] Failed to resolve %s", shortID)
		respondError(c, err, "Failed to resolve short link")
		return
	}
	if link == nil {
		utils.JSON404(c, "Short URL not found")
		return
	}

	ctrl.Infra.Telemetry.Metrics.IncrementShortURLAccess(ctx, shortID, link.URL)
	c.Redirect(http.StatusFound, link.URL)
}
