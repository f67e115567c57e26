package saga

import (
	"context"

	"service-delivery-go/internal/domain"
)

type usersGateway interface {
	GetByID(ctx context.Context, userID int64) (*domain.UserInfo, error)
}

type driversGateway interface {
	Assign(ctx context.Context, ar domain.AssignmentRequest) (*domain.DriverAssignment, error)
}

type ordersGateway interface {
	GetByID(ctx context.Context, orderID int64) (*domain.Order, error)
	Update(ctx context.Context, ord domain.Order) (*domain.Order, error)
}

type notifier interface {
	PublishAssigned(ctx context.Context, ord domain.Order, user domain.UserInfo, deliveryTime string) error
	PublishStatusChange(ctx context.Context, deliveryID int64, status domain.DeliveryStatus) error
}
