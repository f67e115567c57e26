package notify

import (
	"context"

	"service-delivery-go/internal/domain"
	"service-delivery-go/internal/logx"
)

type eventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type counter interface {
	Inc()
}

// Publisher maps delivery-status transitions to notification events on the
// topic exchange. Each recognized transition publishes exactly one event;
// unrecognized statuses are skipped, not failed, and the skip is observable
// through the log and the skipped counter.
type Publisher struct {
	broker  eventPublisher
	logger  logx.Logger
	skipped counter
}

// NewPublisher creates a status transition publisher.
func NewPublisher(broker eventPublisher, logger logx.Logger, skipped counter) *Publisher {
	if broker == nil {
		return nil
	}
	return &Publisher{broker: broker, logger: logger, skipped: skipped}
}

// PublishAssigned publishes the delivery.assigned event for an order that
// reached AssignedToDriver. Publishing is guarded on the order's current
// status so an update that failed to land never produces an event.
func (p *Publisher) PublishAssigned(ctx context.Context, ord domain.Order, user domain.UserInfo, deliveryTime string) error {
	if ord.DeliveryStatus != domain.StatusAssigned {
		p.skip("assignment event skipped, order not in assigned state",
			logx.Int64("order_id", ord.OrderID),
			logx.String("status", string(ord.DeliveryStatus)),
		)
		return nil
	}

	ev := AssignedEvent{
		Status:       string(domain.StatusAssigned),
		Email:        user.Email,
		DeliveryTime: deliveryTime,
		OrderID:      ord.OrderID,
		Name:         user.Name,
	}
	if err := p.broker.Publish(ctx, domain.RoutingKeyAssigned, ev); err != nil {
		return err
	}

	p.logger.Info("assignment event published",
		logx.String("routing_key", domain.RoutingKeyAssigned),
		logx.Int64("order_id", ord.OrderID),
	)
	return nil
}

// PublishStatusChange publishes the event for a driver-reported status
// change. Statuses outside the pickup/delivered/received set publish nothing
// and return nil.
func (p *Publisher) PublishStatusChange(ctx context.Context, deliveryID int64, status domain.DeliveryStatus) error {
	key, ok := status.RoutingKey()
	if !ok {
		p.skip("status change skipped, no routing key for status",
			logx.Int64("delivery_id", deliveryID),
			logx.String("status", string(status)),
		)
		return nil
	}

	ev := StatusEvent{
		Status:     string(status),
		DeliveryID: deliveryID,
	}
	if err := p.broker.Publish(ctx, key, ev); err != nil {
		return err
	}

	p.logger.Info("status change event published",
		logx.String("routing_key", key),
		logx.Int64("delivery_id", deliveryID),
	)
	return nil
}

func (p *Publisher) skip(msg string, fields ...logx.Field) {
	if p.skipped != nil {
		p.skipped.Inc()
	}
	p.logger.Warn(msg, fields...)
}
