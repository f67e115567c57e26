package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"service-delivery-go/internal/domain"
)

type userInfoDTO struct {
	UserID  int64  `json:"user_id"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// Gateway is a user-info lookup backed by the user service's HTTP API.
type Gateway struct {
	client  *http.Client
	baseURL string
}

// New creates a user service gateway.
func New(client *http.Client, baseURL string) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{client: client, baseURL: baseURL}
}

// GetByID fetches the user record for a user id.
func (g *Gateway) GetByID(ctx context.Context, userID int64) (*domain.UserInfo, error) {
	url := fmt.Sprintf("%s/user/%d", g.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("users gateway: build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("users gateway: get user %d: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("users gateway: get user %d: unexpected status %d", userID, resp.StatusCode)
	}

	var dto userInfoDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("users gateway: decode user %d: %w", userID, err)
	}

	info := domain.UserInfo{
		UserID:  dto.UserID,
		Address: dto.Address,
		Email:   dto.Email,
		Name:    dto.Name,
	}
	if info.UserID == 0 {
		info.UserID = userID
	}
	return &info, nil
}
