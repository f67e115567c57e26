package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"service-delivery-go/internal/broker"
	"service-delivery-go/internal/domain"
	"service-delivery-go/internal/logx"
)

// NewHandler returns the notifier worker's message handler. It decodes each
// delivery event and records the notification that would be sent to the
// customer.
func NewHandler(logger logx.Logger) broker.HandleFunc {
	return func(_ context.Context, routingKey string, body []byte) error {
		switch routingKey {
		case domain.RoutingKeyAssigned:
			var ev AssignedEvent
			if err := json.Unmarshal(body, &ev); err != nil {
				return fmt.Errorf("decode %s event: %w", routingKey, err)
			}
			logger.Info("notification sent",
				logx.String("routing_key", routingKey),
				logx.String("status", ev.Status),
				logx.Int64("order_id", ev.OrderID),
				logx.String("email", ev.Email),
				logx.String("name", ev.Name),
				logx.String("delivery_time", ev.DeliveryTime),
			)
		case domain.RoutingKeyPickedUp, domain.RoutingKeyDelivered, domain.RoutingKeyReceived:
			var ev StatusEvent
			if err := json.Unmarshal(body, &ev); err != nil {
				return fmt.Errorf("decode %s event: %w", routingKey, err)
			}
			logger.Info("notification sent",
				logx.String("routing_key", routingKey),
				logx.String("status", ev.Status),
				logx.Int64("delivery_id", ev.DeliveryID),
			)
		default:
			logger.Warn("unrecognized routing key, message dropped",
				logx.String("routing_key", routingKey),
			)
		}
		return nil
	}
}
