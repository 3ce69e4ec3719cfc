package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-photo-share/http/controller"
)

type Middlewares struct {
	CORSMiddleware       gin.HandlerFunc
	TracingMiddleware    gin.HandlerFunc
	CallerMiddleware     gin.HandlerFunc
	GuestMiddleware      gin.HandlerFunc
	RegisteredMiddleware gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	cors := CORSMiddleware(ctrl.Config.EnvConfig)
	tracing := TracingMiddleware(ctrl.Config.EnvConfig.Grafana.ServiceName)
	caller := CallerMiddleware(ctrl.Config.EnvConfig, ctrl.Infra.Telemetry.Metrics)
	guest := GuestMiddleware(ctrl.Infra.Telemetry.Metrics)

	return &Middlewares{
		CORSMiddleware:       cors,
		TracingMiddleware:    tracing,
		CallerMiddleware:     caller,
		GuestMiddleware:      guest,
		RegisteredMiddleware: RegisteredMiddleware(),
	}, nil
}
