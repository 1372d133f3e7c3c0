package notify

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/orders/internal/domain/order"
)

var _ order.Notifier = (*Redis)(nil)

// StreamAdder is the subset of redis.UniversalClient used by Redis.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Redis appends each notification to a stream.
type Redis struct {
	client StreamAdder
	stream string
	maxLen int64
	now    clock
}

// NewRedis returns a Redis notifier. A positive maxLen caps the stream
// length approximately.
func NewRedis(client StreamAdder, stream string, maxLen int64) *Redis {
	return &Redis{client: client, stream: stream, maxLen: maxLen}
}

func (r *Redis) Notify(ctx context.Context, message string) error {
	env := r.now.envelope(message)
	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			"message": env.Message,
			"payload": env.Bytes(),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return errors.Wrapf(err, "xadd to %q", r.stream)
	}
	return nil
}
