package produce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-photo-share/entity"
)

const (
	PhotoExchange = "photo.exchange"

	// DeriveVariantQueue carries one message per (original, resolution) pair
	DeriveVariantQueue      = "photo.derive"
	DeriveVariantRoutingKey = "photo.derive"
)

// DeriveVariantMessage asks a worker to produce one resized variant.
type DeriveVariantMessage struct {
	Job       entity.DerivationJob `json:"job"`
	Timestamp int64                `json:"timestamp"`
}

type DerivationProduceService struct {
	channel *amqp.Channel
}

func InitDerivationProduceService(channel *amqp.Channel) *DerivationProduceService {
	err := channel.ExchangeDeclare(
		PhotoExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Photo exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		DeriveVariantQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare DeriveVariant queue: " + err.Error())
	}

	err = channel.QueueBind(
		DeriveVariantQueue,
		DeriveVariantRoutingKey,
		PhotoExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind DeriveVariant queue: " + err.Error())
	}

	return &DerivationProduceService{channel: channel}
}

// Dispatch publishes the job and returns as soon as the broker has it. The
// job id doubles as the message id so a redelivered job is recognisable.
func (s *DerivationProduceService) Dispatch(ctx context.Context, job entity.DerivationJob) error {
	body, err := json.Marshal(DeriveVariantMessage{
		Job:       job,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal derivation message: %w", err)
	}

	err = s.channel.PublishWithContext(
		ctx,
		PhotoExchange,
		DeriveVariantRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    job.ID.String(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish derivation message: %w", err)
	}

	return nil
}
