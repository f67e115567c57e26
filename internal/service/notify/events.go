package notify

// AssignedEvent is the payload published on delivery.assigned. It carries
// everything the notification consumer needs to address the customer.
type AssignedEvent struct {
	Status       string `json:"status"`
	Email        string `json:"email"`
	DeliveryTime string `json:"delivery_time"`
	OrderID      int64  `json:"order_id"`
	Name         string `json:"name"`
}

// StatusEvent is the payload published on delivery.pickedup,
// delivery.delivered and delivery.received.
type StatusEvent struct {
	Status     string `json:"status"`
	DeliveryID int64  `json:"delivery_id"`
}
