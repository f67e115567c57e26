package handlers

import (
	"context"

	"service-delivery-go/internal/domain"
	"service-delivery-go/internal/service/saga"
)

type deliveryUsecase interface {
	PlaceDeliveryRequest(ctx context.Context, req domain.DeliveryRequest) (domain.Order, error)
	UpdateDeliveryStatus(ctx context.Context, deliveryID int64, status domain.DeliveryStatus) error
}

// NewDeliveryUsecase wires the saga service into a deliveryUsecase.
func NewDeliveryUsecase(svc *saga.Service) deliveryUsecase {
	return svc
}
