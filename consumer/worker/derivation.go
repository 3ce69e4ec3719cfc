package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
	"github.com/tnqbao/gau-photo-share/infra/produce"
	"github.com/tnqbao/gau-photo-share/repository"
	"github.com/tnqbao/gau-photo-share/service"
)

const maxRetries = 3

type VariantDeriver interface {
	DeriveVariant(ctx context.Context, container, folder, objectName string, resolution entity.Resolution) error
}

type DerivationConsumer struct {
	channel    *amqp.Channel
	deriver    func(entity.CallerClass) VariantDeriver
	jobs       service.JobStore
	logger     *infra.LoggerClient
	workers    int
	retryDelay time.Duration
}

func NewDerivationConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository, workers int) *DerivationConsumer {
	return &DerivationConsumer{
		channel: channel,
		deriver: func(class entity.CallerClass) VariantDeriver {
			return infra.Storage.For(class)
		},
		jobs:       repo.JobStatusRepo,
		logger:     infra.Logger,
		workers:    workers,
		retryDelay: 2 * time.Second,
	}
}

func (c *DerivationConsumer) Start(ctx context.Context) error {
	if err := c.channel.Qos(c.workers, 0, false); err != nil {
		return fmt.Errorf("failed to set derivation prefetch: %w", err)
	}

	msgs, err := c.channel.Consume(
		produce.DeriveVariantQueue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register derivation consumer: %w", err)
	}

	c.logger.InfoWithContextf(ctx, "[Derivation Consumer] Started %d workers on queue: %s", c.workers, produce.DeriveVariantQueue)

	// Variants of one asset land on different workers and run concurrently.
	for i := 0; i < c.workers; i++ {
		go func(id int) {
			for {
				select {
				case <-ctx.Done():
					c.logger.InfoWithContextf(ctx, "[Derivation Consumer #%d] Shutting down...", id)
					return
				case msg, ok := <-msgs:
					if !ok {
						c.logger.WarningWithContextf(ctx, "[Derivation Consumer #%d] Channel closed", id)
						return
					}
					c.handleDerivation(ctx, msg)
				}
			}
		}(i)
	}

	return nil
}

func (c *DerivationConsumer) handleDerivation(ctx context.Context, msg amqp.Delivery) {
	var payload produce.DeriveVariantMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.logger.ErrorWithContextf(ctx, err, "[Derivation Consumer] Failed to unmarshal message")
		_ = msg.Nack(false, false)
		return
	}

	job := payload.Job
	if _, err := entity.ParseResolution(string(job.Resolution)); err != nil {
		c.logger.ErrorWithContextf(ctx, err, "[Derivation Consumer] Invalid job %s", job.ID)
		c.saveState(ctx, job, entity.JobStatusFailed, err)
		_ = msg.Nack(false, false)
		return
	}

	c.logger.InfoWithContextf(ctx, "[Derivation Consumer] Deriving %s of %s/%s/%s (job %s)",
		job.Resolution, job.Container, job.Folder, job.ObjectName, job.ID)
	c.saveState(ctx, job, entity.JobStatusRunning, nil)

	deriver := c.deriver(job.Profile)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = deriver.DeriveVariant(ctx, job.Container, job.Folder, job.ObjectName, job.Resolution)
		if lastErr == nil {
			c.saveState(ctx, job, entity.JobStatusCompleted, nil)
			_ = msg.Ack(false)
			return
		}

		c.logger.ErrorWithContextf(ctx, lastErr, "[Derivation Consumer] Attempt %d/%d failed for job %s", attempt, maxRetries, job.ID)

		if !retryable(lastErr) {
			break
		}
		if ctx.Err() != nil {
			// shutting down, let another consumer pick it up
			c.saveState(ctx, job, entity.JobStatusPending, nil)
			_ = msg.Nack(false, true)
			return
		}
		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * c.retryDelay)
		}
	}

	c.saveState(ctx, job, entity.JobStatusFailed, lastErr)
	_ = msg.Nack(false, false)
}

// retryable is false for inputs that will never decode or encode.
func retryable(err error) bool {
	var validationErr *entity.ValidationError
	return !errors.Is(err, infra.ErrUndecodableImage) && !errors.As(err, &validationErr)
}

func (c *DerivationConsumer) saveState(ctx context.Context, job entity.DerivationJob, status entity.JobStatus, cause error) {
	state := entity.JobState{
		JobID:      job.ID,
		Status:     status,
		Resolution: job.Resolution,
		UpdatedAt:  time.Now().Unix(),
	}
	if cause != nil {
		state.Error = cause.Error()
	}

	if err := c.jobs.Save(context.WithoutCancel(ctx), state); err != nil {
		c.logger.WarningWithContextf(ctx, "[Derivation Consumer] Failed to record job %s as %s: %v", job.ID, status, err)
	}
}
