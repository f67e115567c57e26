package handlers

type placeDeliveryRequest struct {
	OrderID      int64  `json:"order_id"`
	UserID       int64  `json:"user_id"`
	DeliveryTime string `json:"delivery_time"`
}

type orderResponse struct {
	OrderID        int64  `json:"order_id"`
	DeliveryID     int64  `json:"delivery_id"`
	DeliveryStatus string `json:"delivery_status"`
}

type updateDeliveryStatusRequest struct {
	DeliveryID     int64  `json:"delivery_id"`
	DeliveryStatus string `json:"delivery_status"`
}
