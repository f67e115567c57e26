package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"service-delivery-go/internal/apperr"
	"service-delivery-go/internal/config"
	"service-delivery-go/internal/logx"
)

func testBrokerConfig() config.Broker {
	return config.Broker{
		Host:           "localhost",
		Port:           "5672",
		User:           "guest",
		Pass:           "guest",
		Exchange:       "delivery_notifications",
		Queue:          "delivery_notifications_queue",
		DialAttempts:   3,
		DialBaseDelay:  time.Millisecond,
		DialMaxDelay:   2 * time.Millisecond,
		PublishTimeout: time.Second,
	}
}

type published struct {
	key string
	msg amqp091.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  []string
	publishes  []published
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp091.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if kind != "topic" || !durable {
		return errors.New("unexpected exchange declaration")
	}
	f.exchanges = append(f.exchanges, name)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(string, string, string, bool, amqp091.Table) error { return nil }

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp091.Table) (<-chan amqp091.Delivery, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.publishes = append(f.publishes, published{key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeChannel) publishedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.publishes))
	for _, p := range f.publishes {
		keys = append(keys, p.key)
	}
	return keys
}

type fakeConn struct {
	mu     sync.Mutex
	ch     *fakeChannel
	closed bool
}

func (f *fakeConn) Channel() (Channel, error) { return f.ch, nil }

func (f *fakeConn) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) markClosed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// fakeDialer counts dials and hands out fresh connections.
type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	errs  []error // consumed per dial; nil entry means success
}

func (d *fakeDialer) dial(string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.errs) > 0 {
		err := d.errs[0]
		d.errs = d.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	conn := &fakeConn{ch: &fakeChannel{}}
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func newTestManager(d *fakeDialer) *Manager {
	m := NewManager(testBrokerConfig(), logx.Nop(), nil)
	m.dial = d.dial
	return m
}

func TestManager_Publish_LazyConnectAndPersistent(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	m := newTestManager(d)

	require.Equal(t, 0, d.dialCount())

	err := m.Publish(context.Background(), "delivery.assigned", map[string]any{"order_id": 42})
	require.NoError(t, err)
	require.Equal(t, 1, d.dialCount())

	ch := d.conns[0].ch
	require.Equal(t, []string{"delivery_notifications"}, ch.exchanges)
	require.Len(t, ch.publishes, 1)

	p := ch.publishes[0]
	require.Equal(t, "delivery.assigned", p.key)
	require.Equal(t, uint8(amqp091.Persistent), p.msg.DeliveryMode)
	require.Equal(t, "application/json", p.msg.ContentType)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(p.msg.Body, &body))
	require.Equal(t, int64(42), body["order_id"])
}

func TestManager_Publish_ReusesOpenConnection(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	m := newTestManager(d)

	require.NoError(t, m.Publish(context.Background(), "delivery.pickedup", struct{}{}))
	require.NoError(t, m.Publish(context.Background(), "delivery.delivered", struct{}{}))

	require.Equal(t, 1, d.dialCount())
	require.Equal(t, []string{"delivery.pickedup", "delivery.delivered"}, d.conns[0].ch.publishedKeys())
}

func TestManager_Publish_ReconnectsOnceWhenClosed(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	m := newTestManager(d)

	require.NoError(t, m.Publish(context.Background(), "delivery.pickedup", struct{}{}))
	d.conns[0].markClosed()

	require.NoError(t, m.Publish(context.Background(), "delivery.received", struct{}{}))

	require.Equal(t, 2, d.dialCount())
	require.Equal(t, []string{"delivery.received"}, d.conns[1].ch.publishedKeys())
}

func TestManager_Publish_ConcurrentDeadConnectionDialsOnce(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	m := newTestManager(d)

	require.NoError(t, m.Publish(context.Background(), "delivery.pickedup", struct{}{}))
	d.conns[0].markClosed()

	const workers = 16
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- m.Publish(context.Background(), "delivery.delivered", struct{}{})
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	// One dial for the initial connection, exactly one more for the
	// reconnect, no matter how many workers raced.
	require.Equal(t, 2, d.dialCount())
	require.Len(t, d.conns[1].ch.publishedKeys(), workers)
}

func TestManager_Publish_BrokerUnavailableAfterAllAttempts(t *testing.T) {
	t.Parallel()

	dialErr := errors.New("connection refused")
	d := &fakeDialer{errs: []error{dialErr, dialErr, dialErr}}
	m := newTestManager(d)

	err := m.Publish(context.Background(), "delivery.assigned", struct{}{})
	require.ErrorIs(t, err, apperr.ErrBrokerUnavailable)
	require.ErrorIs(t, err, dialErr)
	require.Equal(t, 0, d.dialCount())
}

func TestManager_Publish_RecoversAfterFailedDial(t *testing.T) {
	t.Parallel()

	dialErr := errors.New("connection refused")
	d := &fakeDialer{errs: []error{dialErr, dialErr, dialErr}}
	m := newTestManager(d)

	err := m.Publish(context.Background(), "delivery.assigned", struct{}{})
	require.ErrorIs(t, err, apperr.ErrBrokerUnavailable)

	// Broker came back: the next publish dials fresh and succeeds.
	require.NoError(t, m.Publish(context.Background(), "delivery.assigned", struct{}{}))
	require.Equal(t, 1, d.dialCount())
}

func TestManager_Publish_DropsChannelOnPublishError(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	m := newTestManager(d)

	require.NoError(t, m.Publish(context.Background(), "delivery.pickedup", struct{}{}))
	d.conns[0].ch.publishErr = errors.New("channel gone")

	err := m.Publish(context.Background(), "delivery.delivered", struct{}{})
	require.Error(t, err)
	require.True(t, d.conns[0].IsClosed())

	// Next publish reconnects.
	require.NoError(t, m.Publish(context.Background(), "delivery.received", struct{}{}))
	require.Equal(t, 2, d.dialCount())
}

func TestManager_Close(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	m := newTestManager(d)

	require.NoError(t, m.Publish(context.Background(), "delivery.pickedup", struct{}{}))
	require.NoError(t, m.Close())
	require.True(t, d.conns[0].IsClosed())
	require.True(t, d.conns[0].ch.closed)
}
