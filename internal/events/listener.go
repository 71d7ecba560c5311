package events

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Channel names must match the pg_notify calls in the schema triggers.
const (
	channelOrders   = "order_events"
	channelPayments = "payment_events"
)

// reconnectDelay is how long the listener waits before re-acquiring a
// connection after a failure.
const reconnectDelay = 3 * time.Second

// Listener holds a dedicated connection on LISTEN and feeds the hub.
type Listener struct {
	pool *pgxpool.Pool
	hub  *Hub
	lg   *zap.Logger
}

// NewListener creates a Listener publishing into hub.
func NewListener(pool *pgxpool.Pool, hub *Hub, lg *zap.Logger) *Listener {
	return &Listener{pool: pool, hub: hub, lg: lg}
}

// Run blocks listening for notifications until ctx is cancelled. Connection
// failures are logged and retried; events delivered while disconnected are
// lost, which clients tolerate by re-fetching state on reconnect.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.listenOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.lg.Warn("Event listener disconnected", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "acquire listen connection")
	}
	defer conn.Release()

	for _, channel := range []string{channelOrders, channelPayments} {
		if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
			return errors.Wrapf(err, "listen %s", channel)
		}
	}
	l.lg.Info("Event listener attached")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return errors.Wrap(err, "wait for notification")
		}

		ev, err := parseNotification(n.Channel, []byte(n.Payload))
		if err != nil {
			l.lg.Warn("Dropping malformed notification",
				zap.String("channel", n.Channel), zap.Error(err))
			continue
		}
		l.hub.Publish(ev)
	}
}

// parseNotification maps a pg_notify channel and JSON payload to an Event.
// Only the order id is extracted; the payload travels to subscribers as-is.
func parseNotification(channel string, payload []byte) (Event, error) {
	var kind Kind
	var idField string
	switch channel {
	case channelOrders:
		kind, idField = KindOrder, "id"
	case channelPayments:
		kind, idField = KindPayment, "order_id"
	default:
		return Event{}, errors.Errorf("unknown channel %q", channel)
	}

	orderID, err := extractString(payload, idField)
	if err != nil {
		return Event{}, err
	}

	return Event{Kind: kind, OrderID: orderID, Payload: payload}, nil
}

// extractString pulls a top-level string field out of a JSON object.
func extractString(payload []byte, field string) (string, error) {
	var value string
	d := jx.DecodeBytes(payload)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == field {
			v, err := d.Str()
			if err != nil {
				return err
			}
			value = v
			return nil
		}
		return d.Skip()
	}); err != nil {
		return "", errors.Wrap(err, "decode notification payload")
	}
	if value == "" {
		return "", errors.Errorf("notification payload missing %q", field)
	}
	return value, nil
}
