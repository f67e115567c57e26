package handlers

import "service-delivery-go/internal/domain"

func orderToResponse(ord domain.Order) orderResponse {
	return orderResponse{
		OrderID:        ord.OrderID,
		DeliveryID:     ord.DeliveryID,
		DeliveryStatus: string(ord.DeliveryStatus),
	}
}

func placeRequestToDomain(req placeDeliveryRequest) domain.DeliveryRequest {
	return domain.DeliveryRequest{
		OrderID:      req.OrderID,
		UserID:       req.UserID,
		DeliveryTime: req.DeliveryTime,
	}
}
