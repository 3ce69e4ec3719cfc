package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/http/controller"
	"github.com/tnqbao/gau-photo-share/http/route"
	infraPkg "github.com/tnqbao/gau-photo-share/infra"
	"github.com/tnqbao/gau-photo-share/repository"
	"github.com/tnqbao/gau-photo-share/service"
)

func main() {
	err := godotenv.Load("staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra, cfg)
	svc := service.InitService(cfg, infra, repo)

	ctrl := controller.NewController(cfg, infra, repo, svc)

	router := routes.SetupRouter(ctrl)

	server := &http.Server{
		Addr:    ":" + cfg.EnvConfig.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Println("HTTP Server started on :" + cfg.EnvConfig.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	infra.Close(ctx)

	log.Println("Server exited properly")
}
