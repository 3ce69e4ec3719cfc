package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
	"github.com/tnqbao/gau-photo-share/repository"
	"github.com/tnqbao/gau-photo-share/service"
	"github.com/tnqbao/gau-photo-share/utils"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Service    *service.Service
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository, svc *service.Service) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	if svc == nil {
		panic("Failed to initialize Service")
	}
	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Service:    svc,
	}
}

// respondError maps domain errors to status codes; anything unknown is a 500
// carrying fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var validationErr *entity.ValidationError
	switch {
	case errors.As(err, &validationErr):
		utils.JSON400(c, validationErr.Error())
	case errors.Is(err, entity.ErrContainerNotFound):
		utils.JSON404(c, err.Error())
	default:
		utils.JSON500(c, fallback)
	}
}
