package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaChecker is up as soon as one broker accepts a connection; when none
// does, the message lists why each one failed.
type KafkaChecker struct {
	brokers []string
	dial    func(ctx context.Context, network, address string) (*kafka.Conn, error)
}

func NewKafkaChecker(brokers []string) *KafkaChecker {
	return &KafkaChecker{brokers: brokers, dial: kafka.DialContext}
}

func (c *KafkaChecker) Name() string {
	return "kafka"
}

func (c *KafkaChecker) Check(ctx context.Context) Result {
	if len(c.brokers) == 0 {
		return Result{Status: StatusDown, Message: "no brokers configured"}
	}

	var errs []error
	for _, broker := range c.brokers {
		conn, err := c.dial(ctx, "tcp", broker)
		if err == nil {
			_ = conn.Close()
			return Result{Status: StatusUp}
		}
		errs = append(errs, fmt.Errorf("%s: %w", broker, err))
	}
	return Result{Status: StatusDown, Message: errors.Join(errs...).Error()}
}
