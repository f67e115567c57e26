package domain

// DeliveryStatus is the lifecycle stage of a delivery. The wire values are
// shared with the order service and the notification consumers, so they must
// not change.
type DeliveryStatus string

// Delivery lifecycle stages, in their logical order. The service does not
// enforce forward-only transitions; the order service owns the record and a
// stage may be re-reported.
const (
	StatusRequested DeliveryStatus = "Requested"
	StatusAssigned  DeliveryStatus = "AssignedToDriver"
	StatusPickedUp  DeliveryStatus = "Picked up by Driver"
	StatusDelivered DeliveryStatus = "Delivered by Driver"
	StatusReceived  DeliveryStatus = "Received by Customer"
)

var allowedStatuses = [...]DeliveryStatus{
	StatusRequested, StatusAssigned, StatusPickedUp, StatusDelivered, StatusReceived,
}

// Valid checks if the DeliveryStatus is one of the known lifecycle stages.
func (s DeliveryStatus) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Routing keys for the notifications topic exchange.
const (
	RoutingKeyAssigned  = "delivery.assigned"
	RoutingKeyPickedUp  = "delivery.pickedup"
	RoutingKeyDelivered = "delivery.delivered"
	RoutingKeyReceived  = "delivery.received"
)

// statusRoutingKeys maps the driver-reported stages to their routing keys.
// AssignedToDriver is intentionally absent: the assignment event is published
// by the place-request saga, never by a status-change report.
var statusRoutingKeys = map[DeliveryStatus]string{
	StatusPickedUp:  RoutingKeyPickedUp,
	StatusDelivered: RoutingKeyDelivered,
	StatusReceived:  RoutingKeyReceived,
}

// RoutingKey returns the topic-exchange routing key for a status-change
// report. The second return is false for statuses that do not produce an
// event.
func (s DeliveryStatus) RoutingKey() (string, bool) {
	key, ok := statusRoutingKeys[s]
	return key, ok
}
