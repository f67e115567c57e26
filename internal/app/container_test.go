package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"service-delivery-go/internal/broker"
	"service-delivery-go/internal/config"
	"service-delivery-go/internal/http/handlers"
	"service-delivery-go/internal/logx"
	"service-delivery-go/internal/service/saga"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:      8080,
		Broker:    config.DefaultBroker(),
		Gateways:  config.DefaultGateways(),
		RateLimit: config.DefaultRateLimit(),
	}
}

func setupTestContainer(t *testing.T) *dig.Container {
	t.Helper()

	c := dig.New()

	providers := []struct {
		name     string
		provider any
	}{
		{"context", func() context.Context { return context.Background() }},
		{"logger", logx.Nop},
		{"config", func() *config.Config { return testConfig() }},
		{"metrics", provideMetrics},
	}

	for _, p := range providers {
		err := c.Provide(p.provider)
		require.NoErrorf(t, err, "provide %s", p.name)
	}

	require.NoError(t, registerBroker(c))
	require.NoError(t, registerGateways(c))
	require.NoError(t, registerService(c))
	require.NoError(t, registerHTTP(c))

	return c
}

func verifyServer(t *testing.T, srv *http.Server) {
	t.Helper()

	require.NotNil(t, srv, "http.Server is nil")
	require.Equal(t, ":8080", srv.Addr)
	require.Greater(t, srv.ReadHeaderTimeout, time.Duration(0))
	require.Greater(t, srv.ReadTimeout, time.Duration(0))
	require.Greater(t, srv.WriteTimeout, time.Duration(0))
	require.Greater(t, srv.IdleTimeout, time.Duration(0))
}

func TestContainer_ProvidesHttpServerAndHandlers(t *testing.T) {
	c := setupTestContainer(t)

	err := c.Invoke(func(
		srv *http.Server,
		base *handlers.Handlers,
		del *handlers.DeliveryHandler,
	) {
		verifyServer(t, srv)
		require.NotNil(t, base)
		require.NotNil(t, del)
	})
	require.NoError(t, err)
}

func TestContainer_ProvidesSagaAndBroker(t *testing.T) {
	c := setupTestContainer(t)

	err := c.Invoke(func(svc *saga.Service, mgr *broker.Manager) {
		require.NotNil(t, svc)
		require.NotNil(t, mgr)
	})
	require.NoError(t, err)
}

func TestContainerBuilder_ReportsBuildFailure(t *testing.T) {
	var msg string
	b := NewContainerBuilder().WithLogFatalf(func(format string, args ...interface{}) {
		msg = format
	})
	c := b.MustBuild(context.Background())
	require.NotNil(t, c)
	require.Empty(t, msg)
}
