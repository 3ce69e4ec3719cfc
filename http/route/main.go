package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-photo-share/http/controller"
	"github.com/tnqbao/gau-photo-share/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware, middles.TracingMiddleware)

	healthRoutes := r.Group("/health")
	{
		healthRoutes.GET("/liveness", ctrl.Liveness)
		healthRoutes.GET("/readiness", ctrl.Readiness)
	}

	shortLinkRoutes := r.Group("/s")
	{
		shortLinkRoutes.POST("", ctrl.CreateShortLink)
		shortLinkRoutes.GET("/:short_id", ctrl.RedirectShortLink)
	}

	r.POST("/orchestrate", middles.CallerMiddleware, ctrl.Orchestrate)

	photoRoutes := r.Group("/photos")
	{
		photoRoutes.Use(middles.CallerMiddleware, middles.RegisteredMiddleware)
		registerPhotoRoutes(photoRoutes, ctrl)
	}

	guestPhotoRoutes := r.Group("/guest/photos")
	{
		guestPhotoRoutes.Use(middles.GuestMiddleware)
		registerPhotoRoutes(guestPhotoRoutes, ctrl)
	}

	return r
}

func registerPhotoRoutes(group *gin.RouterGroup, ctrl *controller.Controller) {
	group.POST("/get-signed-url", ctrl.GetSignedURL)
	group.POST("/resize", ctrl.ResizeImage)
	group.GET("/jobs/:job_id", ctrl.GetJobStatus)
}
