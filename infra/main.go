package infra

import (
	"context"
	"log"

	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/infra/produce"
)

type Infra struct {
	Redis     *RedisClient
	Postgres  *PostgresClient
	Logger    *LoggerClient
	Telemetry *Telemetry
	RabbitMQ  *RabbitMQClient
	Produce   *produce.Produce
	Storage   *StorageAccounts
}

var infraInstance *Infra

func InitInfra(cfg *config.Config) *Infra {
	if infraInstance != nil {
		return infraInstance
	}

	redis := InitRedisClient(cfg.EnvConfig)
	if redis == nil {
		panic("Failed to initialize Redis service")
	}

	postgres := InitPostgresClient(cfg.EnvConfig)
	if postgres == nil {
		panic("Failed to initialize Postgres service")
	}

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	telemetry, err := InitTelemetry(cfg.EnvConfig)
	if err != nil {
		panic("Failed to initialize Telemetry service: " + err.Error())
	}

	rabbitMQ := InitRabbitMQClient(cfg.EnvConfig)
	if rabbitMQ == nil {
		panic("Failed to initialize RabbitMQ service")
	}

	produceService := produce.InitProduce(rabbitMQ.Channel)
	if produceService == nil {
		panic("Failed to initialize Produce service")
	}

	storage := InitStorageAccounts(cfg.EnvConfig, logger)
	if storage == nil {
		panic("Failed to initialize Storage accounts")
	}

	infraInstance = &Infra{
		Redis:     redis,
		Postgres:  postgres,
		Logger:    logger,
		Telemetry: telemetry,
		RabbitMQ:  rabbitMQ,
		Produce:   produceService,
		Storage:   storage,
	}

	return infraInstance
}

func (i *Infra) Close(ctx context.Context) {
	if err := i.Telemetry.Shutdown(ctx); err != nil {
		log.Printf("Telemetry shutdown: %v", err)
	}
	if err := i.Logger.Shutdown(ctx); err != nil {
		log.Printf("Logger shutdown: %v", err)
	}
	i.RabbitMQ.Close()
}
