package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"service-delivery-go/internal/domain"
)

type orderDTO struct {
	OrderID        int64  `json:"order_id"`
	DeliveryID     int64  `json:"delivery_id"`
	DeliveryStatus string `json:"delivery_status"`
}

// envelope is the {code, data} wrapper the order service puts around its
// payloads.
type envelope struct {
	Code int      `json:"code"`
	Data orderDTO `json:"data"`
}

// Gateway reads and updates order records through the order service's HTTP
// API. The read-modify-write done by the saga is not atomic from the order
// service's point of view; see domain.Order.
type Gateway struct {
	client  *http.Client
	baseURL string
}

// New creates an order service gateway.
func New(client *http.Client, baseURL string) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{client: client, baseURL: baseURL}
}

// GetByID fetches an order by id.
func (g *Gateway) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	url := fmt.Sprintf("%s/order/%d", g.baseURL, orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("orders gateway: build request: %w", err)
	}

	return g.do(req, fmt.Sprintf("get order %d", orderID))
}

// Update writes the full order record back.
func (g *Gateway) Update(ctx context.Context, ord domain.Order) (*domain.Order, error) {
	body, err := json.Marshal(orderDTO{
		OrderID:        ord.OrderID,
		DeliveryID:     ord.DeliveryID,
		DeliveryStatus: string(ord.DeliveryStatus),
	})
	if err != nil {
		return nil, fmt.Errorf("orders gateway: marshal order: %w", err)
	}

	url := fmt.Sprintf("%s/order/%d", g.baseURL, ord.OrderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("orders gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return g.do(req, fmt.Sprintf("update order %d", ord.OrderID))
}

func (g *Gateway) do(req *http.Request, op string) (*domain.Order, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orders gateway: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("orders gateway: %s: unexpected status %d", op, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("orders gateway: %s: decode: %w", op, err)
	}

	return &domain.Order{
		OrderID:        env.Data.OrderID,
		DeliveryID:     env.Data.DeliveryID,
		DeliveryStatus: domain.DeliveryStatus(env.Data.DeliveryStatus),
	}, nil
}
