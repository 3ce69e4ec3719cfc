package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	DerivationService *DerivationProduceService
}

var produceInstance *Produce

func InitProduce(channel *amqp.Channel) *Produce {
	if produceInstance != nil {
		return produceInstance
	}

	derivationService := InitDerivationProduceService(channel)
	if derivationService == nil {
		panic("Failed to initialize Derivation produce service")
	}

	produceInstance = &Produce{
		DerivationService: derivationService,
	}

	return produceInstance
}
