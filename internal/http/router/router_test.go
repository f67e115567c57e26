package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"service-delivery-go/internal/domain"
	"service-delivery-go/internal/http/handlers"
	"service-delivery-go/internal/http/pprofserver"
	"service-delivery-go/internal/http/router"
	"service-delivery-go/internal/logx"
)

type nopUsecase struct{}

func (nopUsecase) PlaceDeliveryRequest(context.Context, domain.DeliveryRequest) (domain.Order, error) {
	return domain.Order{}, nil
}

func (nopUsecase) UpdateDeliveryStatus(context.Context, int64, domain.DeliveryStatus) error {
	return nil
}

func newRouter() http.Handler {
	base := handlers.New(logx.Nop())
	del := handlers.NewDeliveryHandler(logx.Nop(), nopUsecase{})
	return router.New(logx.Nop(), base, del, nil, pprofserver.Auth{})
}

func TestRouter_Ping(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_HealthcheckHead(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodHead, "/healthcheck", nil))

	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.JSONEq(t, `{"code":404,"message":"route not found"}`, rr.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_PlaceDeliveryRequest_Routed(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/place_delivery_request", nil)
	newRouter().ServeHTTP(rr, req)

	// nil body fails decoding, proving the route reaches the handler
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
