package drivers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"service-delivery-go/internal/domain"
)

type assignmentRequestDTO struct {
	DeliveryTime string `json:"delivery_time"`
	OrderID      int64  `json:"order_id"`
	UserAddress  string `json:"user_address"`
}

type assignmentResponseDTO struct {
	DeliveryID int64 `json:"delivery_id"`
	DriverID   int64 `json:"driver_id"`
}

// Gateway requests driver assignments from the driver-assignment service.
type Gateway struct {
	client  *http.Client
	baseURL string
}

// New creates a driver-assignment service gateway.
func New(client *http.Client, baseURL string) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{client: client, baseURL: baseURL}
}

// Assign asks the driver-assignment service to pick a driver for an order.
func (g *Gateway) Assign(ctx context.Context, ar domain.AssignmentRequest) (*domain.DriverAssignment, error) {
	body, err := json.Marshal(assignmentRequestDTO{
		DeliveryTime: ar.DeliveryTime,
		OrderID:      ar.OrderID,
		UserAddress:  ar.UserAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("drivers gateway: marshal request: %w", err)
	}

	url := g.baseURL + "/driver_assignment"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("drivers gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drivers gateway: assign order %d: %w", ar.OrderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("drivers gateway: assign order %d: unexpected status %d", ar.OrderID, resp.StatusCode)
	}

	var dto assignmentResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("drivers gateway: decode assignment for order %d: %w", ar.OrderID, err)
	}

	return &domain.DriverAssignment{
		DeliveryID: dto.DeliveryID,
		DriverID:   dto.DriverID,
	}, nil
}
