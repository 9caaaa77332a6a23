package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler processes one fetched message.
type Handler func(context.Context, kafka.Message) error

type Consumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume fetches messages and commits each one after the handler ran,
// whether or not it succeeded. A failed handler is logged and the offset
// advances anyway: redelivery loops are worse than a dropped update here,
// and the handlers are expected to swallow their own domain errors.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			c.logger.Error("message handler failed, acknowledging anyway",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// RunConsumer drives consume until the context ends, restarting after the
// delay when it fails. Consume returns on any fetch or commit error, so
// without the restart a transient broker failure would leave the process
// alive but no longer consuming.
func RunConsumer(ctx context.Context, logger *zap.Logger, name string, delay time.Duration, consume func(context.Context, Handler) error, handler Handler) {
	for {
		err := consume(ctx, handler)
		if ctx.Err() != nil {
			return
		}
		logger.Error("consumer stopped, restarting",
			zap.String("consumer", name),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}
