package broker

import (
	"context"
	"time"

	"service-delivery-go/internal/config"
	"service-delivery-go/internal/logx"
)

// HandleFunc processes a single delivery event from the topic exchange.
type HandleFunc func(ctx context.Context, routingKey string, body []byte) error

// Consumer binds a durable queue to the topic exchange and dispatches
// messages to a handler. Used by the notifier worker.
type Consumer struct {
	manager *Manager
	cfg     config.Broker
	pattern string
	handler HandleFunc
	logger  logx.Logger
}

// NewConsumer creates a consumer for every routing key matching pattern.
func NewConsumer(manager *Manager, cfg config.Broker, pattern string, h HandleFunc, logger logx.Logger) *Consumer {
	return &Consumer{
		manager: manager,
		cfg:     cfg,
		pattern: pattern,
		handler: h,
		logger:  logger,
	}
}

// Run consumes until ctx is canceled. A lost connection or channel is
// re-established through the manager with its usual dial backoff.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		deliveries, err := c.subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("subscribe failed, retrying", logx.Err(err))
			if !sleepWithContext(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}

		if err := c.consume(ctx, deliveries); err != nil {
			return err
		}
		// Delivery channel closed: the connection died. Loop and
		// resubscribe.
		c.logger.Warn("broker delivery stream closed, resubscribing")
	}
}

func (c *Consumer) subscribe(ctx context.Context) (<-chan delivery, error) {
	ch, err := c.manager.Channel(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		c.cfg.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return nil, err
	}

	if err := ch.QueueBind(c.cfg.Queue, c.pattern, c.cfg.Exchange, false, nil); err != nil {
		return nil, err
	}

	msgs, err := ch.Consume(
		c.cfg.Queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, err
	}

	out := make(chan delivery)
	go func() {
		defer close(out)
		for msg := range msgs {
			out <- delivery{routingKey: msg.RoutingKey, body: msg.Body, ack: msg.Ack, nack: msg.Nack}
		}
	}()
	return out, nil
}

// delivery decouples the handler loop from amqp091 types so it can be tested
// with plain channels.
type delivery struct {
	routingKey string
	body       []byte
	ack        func(multiple bool) error
	nack       func(multiple, requeue bool) error
}

func (c *Consumer) consume(ctx context.Context, deliveries <-chan delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return nil
			}
			if err := c.handler(ctx, msg.routingKey, msg.body); err != nil {
				c.logger.Error("handle message failed",
					logx.String("routing_key", msg.routingKey),
					logx.Err(err),
				)
				// Drop rather than requeue: a message the handler
				// rejects once will be rejected again.
				if msg.nack != nil {
					if nackErr := msg.nack(false, false); nackErr != nil {
						c.logger.Error("nack failed", logx.Err(nackErr))
					}
				}
				continue
			}
			if msg.ack != nil {
				if ackErr := msg.ack(false); ackErr != nil {
					c.logger.Error("ack failed", logx.Err(ackErr))
				}
			}
		}
	}
}
