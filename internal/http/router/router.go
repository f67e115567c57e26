package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"service-delivery-go/internal/http/handlers"
	"service-delivery-go/internal/http/middleware"
	"service-delivery-go/internal/http/middleware/ratelimit"
	"service-delivery-go/internal/http/pprofserver"
	"service-delivery-go/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
func New(
	logger logx.Logger,
	h *handlers.Handlers,
	dh *handlers.DeliveryHandler,
	rl *ratelimit.Middleware,
	pprofAuth pprofserver.Auth,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Observability(logger))
	if rl != nil {
		r.Use(rl.Handler())
	}

	r.Post("/place_delivery_request", dh.PlaceDeliveryRequest)
	r.Post("/update_delivery_status", dh.UpdateDeliveryStatus)

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/debug", pprofserver.Handler(pprofAuth))
	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}
