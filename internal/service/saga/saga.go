package saga

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-delivery-go/internal/apperr"
	"service-delivery-go/internal/domain"
	"service-delivery-go/internal/logx"
)

// Service sequences the multi-step workflow that turns a delivery request
// into a driver assignment, an order update and a notification event.
//
// The steps are strictly sequential and there is no compensation on partial
// failure: a failure after the driver assignment leaves a driver assigned
// with no order update. The surrounding system reconciles that window out of
// band; inventing a rollback here would be guessing a recovery policy the
// collaborators do not offer.
type Service struct {
	users            usersGateway
	drivers          driversGateway
	orders           ordersGateway
	notifier         notifier
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates the delivery orchestrator.
func NewService(users usersGateway, drivers driversGateway, orders ordersGateway, n notifier, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		users:            users,
		drivers:          drivers,
		orders:           orders,
		notifier:         n,
		operationTimeout: timeout,
		logger:           logger,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// PlaceDeliveryRequest runs the place-delivery saga:
// user lookup → driver assignment → order update → assignment event.
// Each collaborator call gets a bounded timeout; expiry surfaces as
// ErrUpstreamUnavailable.
func (s *Service) PlaceDeliveryRequest(ctx context.Context, req domain.DeliveryRequest) (domain.Order, error) {
	if err := validateRequest(req); err != nil {
		return domain.Order{}, err
	}

	user, err := s.fetchUser(ctx, req.UserID)
	if err != nil {
		return domain.Order{}, err
	}

	assignment, err := s.assignDriver(ctx, req, user.Address)
	if err != nil {
		return domain.Order{}, err
	}

	updated, err := s.updateOrder(ctx, req.OrderID, assignment.DeliveryID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.notifier.PublishAssigned(ctx, updated, *user, req.DeliveryTime); err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("delivery request placed",
		logx.Int64("order_id", updated.OrderID),
		logx.Int64("delivery_id", updated.DeliveryID),
		logx.Int64("driver_id", assignment.DriverID),
	)
	return updated, nil
}

func (s *Service) fetchUser(ctx context.Context, userID int64) (*domain.UserInfo, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.GetByID(callCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch user %d: %v", apperr.ErrUpstreamUnavailable, userID, err)
	}
	if strings.TrimSpace(user.Address) == "" {
		return nil, fmt.Errorf("%w: user %d has no address", apperr.ErrUpstreamUnavailable, userID)
	}
	return user, nil
}

func (s *Service) assignDriver(ctx context.Context, req domain.DeliveryRequest, address string) (*domain.DriverAssignment, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	assignment, err := s.drivers.Assign(callCtx, domain.AssignmentRequest{
		DeliveryTime: req.DeliveryTime,
		OrderID:      req.OrderID,
		UserAddress:  address,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: assign driver for order %d: %v", apperr.ErrAssignmentFailed, req.OrderID, err)
	}
	if assignment.DeliveryID == 0 {
		return nil, fmt.Errorf("%w: no delivery id for order %d", apperr.ErrAssignmentFailed, req.OrderID)
	}
	return assignment, nil
}

// updateOrder does a read-modify-write against the order service. The two
// calls are not atomic; a concurrent writer can interleave (lost update).
// Closing that window needs a conditional update on the order service's
// interface, which it does not offer.
func (s *Service) updateOrder(ctx context.Context, orderID, deliveryID int64) (domain.Order, error) {
	getCtx, cancelGet := s.withTimeout(ctx)
	defer cancelGet()

	ord, err := s.orders.GetByID(getCtx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: fetch order %d: %v", apperr.ErrUpstreamUnavailable, orderID, err)
	}

	ord.DeliveryID = deliveryID
	ord.DeliveryStatus = domain.StatusAssigned

	putCtx, cancelPut := s.withTimeout(ctx)
	defer cancelPut()

	updated, err := s.orders.Update(putCtx, *ord)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: update order %d: %v", apperr.ErrUpstreamUnavailable, orderID, err)
	}
	return *updated, nil
}

// UpdateDeliveryStatus publishes the event for a driver-reported status
// change. The order record is not updated on this path; the gap is logged so
// it is never silently dropped.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, deliveryID int64, status domain.DeliveryStatus) error {
	if deliveryID <= 0 || strings.TrimSpace(string(status)) == "" {
		return fmt.Errorf("%w: delivery_id and delivery_status are required", apperr.ErrInvalid)
	}

	s.logger.Warn("order record update on status change is not implemented",
		logx.Int64("delivery_id", deliveryID),
		logx.String("status", string(status)),
	)

	return s.notifier.PublishStatusChange(ctx, deliveryID, status)
}

func validateRequest(req domain.DeliveryRequest) error {
	switch {
	case req.OrderID <= 0:
		return fmt.Errorf("%w: order_id is required", apperr.ErrInvalid)
	case req.UserID <= 0:
		return fmt.Errorf("%w: user_id is required", apperr.ErrInvalid)
	case strings.TrimSpace(req.DeliveryTime) == "":
		return fmt.Errorf("%w: delivery_time is required", apperr.ErrInvalid)
	}
	return nil
}
