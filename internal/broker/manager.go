package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"

	"service-delivery-go/internal/apperr"
	"service-delivery-go/internal/config"
	"service-delivery-go/internal/logx"
)

// Manager owns the process-wide broker connection and channel. The pair is
// shared mutable state touched by every request worker, so every access goes
// through the manager's mutex: the check-and-reconnect and the publish itself
// are one critical section, and two workers can never race to open duplicate
// connections.
//
// The connection is lazy. Nothing is dialed until the first publish or
// subscribe, and a connection found closed is transparently re-established on
// the next use. Startup therefore never fails on a down broker; callers get
// ErrBrokerUnavailable until a dial succeeds.
type Manager struct {
	cfg        config.Broker
	logger     logx.Logger
	reconnects prometheus.Counter
	dial       Dialer

	mu   sync.Mutex
	conn Conn
	ch   Channel
}

// NewManager creates a connection manager. No connection is opened yet.
func NewManager(cfg config.Broker, logger logx.Logger, reconnects prometheus.Counter) *Manager {
	return &Manager{
		cfg:        cfg,
		logger:     logger,
		reconnects: reconnects,
		dial:       AMQPDialer,
	}
}

// Publish JSON-encodes payload and sends it to the configured topic exchange
// with the given routing key, marked persistent. A dead connection is
// re-established first; when no connection can be made after the configured
// dial attempts, the error wraps apperr.ErrBrokerUnavailable.
func (m *Manager) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ch, err := m.ensureOpen(ctx)
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, m.cfg.PublishTimeout)
	defer cancel()

	err = ch.PublishWithContext(pubCtx,
		m.cfg.Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		// The channel may have died mid-publish; drop it so the next
		// caller reconnects.
		m.closeLocked()
		m.logger.Error("publish failed",
			logx.String("exchange", m.cfg.Exchange),
			logx.String("routing_key", routingKey),
			logx.Err(err),
		)
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	m.logger.Debug("message published",
		logx.String("exchange", m.cfg.Exchange),
		logx.String("routing_key", routingKey),
		logx.Int("bytes", len(body)),
	)
	return nil
}

// Channel ensures the connection is open and returns the shared channel.
// Consumers use it to declare and bind their queues.
func (m *Manager) Channel(ctx context.Context) (Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureOpen(ctx)
}

// ensureOpen returns the current channel, dialing first if the connection is
// absent or closed. Callers must hold m.mu.
func (m *Manager) ensureOpen(ctx context.Context) (Channel, error) {
	if m.conn != nil && !m.conn.IsClosed() {
		return m.ch, nil
	}
	m.closeLocked()

	var lastErr error
	for attempt := 1; attempt <= m.cfg.DialAttempts; attempt++ {
		if m.reconnects != nil {
			m.reconnects.Inc()
		}

		ch, err := m.connect()
		if err == nil {
			m.logger.Info("broker connected",
				logx.String("host", m.cfg.Host),
				logx.String("exchange", m.cfg.Exchange),
				logx.Int("attempt", attempt),
			)
			return ch, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == m.cfg.DialAttempts {
			break
		}
		delay := backoff(m.cfg.DialBaseDelay, m.cfg.DialMaxDelay, attempt)
		m.logger.Warn("broker dial retry",
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}

	return nil, fmt.Errorf("%w: dial after %d attempts: %w",
		apperr.ErrBrokerUnavailable, m.cfg.DialAttempts, lastErr)
}

// connect performs a single dial, opens a channel and declares the durable
// topic exchange. On any failure nothing is retained.
func (m *Manager) connect() (Channel, error) {
	conn, err := m.dial(m.cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		m.cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", m.cfg.Exchange, err)
	}

	m.conn = conn
	m.ch = ch
	return ch, nil
}

// Close tears the connection down. Used on shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

func (m *Manager) closeLocked() error {
	if m.ch != nil {
		m.ch.Close()
		m.ch = nil
	}
	if m.conn != nil {
		err := m.conn.Close()
		m.conn = nil
		return err
	}
	return nil
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
