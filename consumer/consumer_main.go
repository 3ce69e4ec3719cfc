package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/consumer/worker"
	infraPkg "github.com/tnqbao/gau-photo-share/infra"
	"github.com/tnqbao/gau-photo-share/repository"
)

func main() {
	err := godotenv.Load("../staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	derivationConsumer := worker.NewDerivationConsumer(infra.RabbitMQ.Channel, infra, repo, cfg.EnvConfig.Jobs.Workers)
	if err := derivationConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start Derivation consumer: %v", err)
		log.Fatalf("Failed to start Derivation consumer: %v", err)
	}

	worker.NewReaperWorker(cfg.EnvConfig, infra, repo).Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	infra.Close(shutdownCtx)

	log.Println("Consumer exited properly")
}
