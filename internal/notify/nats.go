package notify

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/nats-io/nats.go"

	"github.com/xenking/orders/internal/domain/order"
)

var _ order.Notifier = (*NATS)(nil)

// Publisher is the subset of *nats.Conn used by NATS.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATS publishes each notification on a subject and waits for the server to
// acknowledge the flush.
type NATS struct {
	conn    Publisher
	subject string
	now     clock
}

// NewNATS returns a NATS notifier publishing on subject.
func NewNATS(conn Publisher, subject string) *NATS {
	return &NATS{conn: conn, subject: subject}
}

// DialNATS connects to the NATS server at url.
func DialNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name("orders"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, errors.Wrap(err, "connect to nats")
	}
	return conn, nil
}

func (n *NATS) Notify(ctx context.Context, message string) error {
	if err := n.conn.Publish(n.subject, n.now.envelope(message).Bytes()); err != nil {
		return errors.Wrapf(err, "publish to %q", n.subject)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return errors.Wrap(err, "flush")
	}
	return nil
}
