package app

import (
	"OrderDesk/config"
	"OrderDesk/internal/controller/message"
	"OrderDesk/internal/domain/order"
	"OrderDesk/internal/external/kafka"
	"OrderDesk/internal/messaging"
)

// NewOrderRunner wires the orders topic consumer to the order service.
func NewOrderRunner(cfg config.Config, orderService *order.OrderService) *messaging.Runner {
	controller := message.NewOrderMessageController(orderService)
	handler := messaging.WithMetrics(
		cfg.KafkaOrdersTopic,
		cfg.KafkaOrdersConsumerGroup,
		controller.HandleMessage,
	)
	consumer := kafka.NewConsumer(
		cfg.KafkaBrokers,
		cfg.KafkaOrdersTopic,
		cfg.KafkaOrdersConsumerGroup,
	)
	return messaging.NewRunner([]messaging.Worker{consumer}, handler)
}
