package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-photo-share/utils"
)

func (ctrl *Controller) Liveness(c *gin.Context) {
	utils.JSON200(c, gin.H{"status": http.StatusOK})
}

func (ctrl *Controller) Readiness(c *gin.Context) {
	if !ctrl.Service.Readiness.Ready(c.Request.Context()) {
		utils.JSON503(c, gin.H{"status": http.StatusServiceUnavailable})
		return
	}
	utils.JSON200(c, gin.H{"status": http.StatusOK})
}
