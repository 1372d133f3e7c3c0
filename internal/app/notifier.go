package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenking/orders/internal/domain/order"
	"github.com/xenking/orders/internal/notify"
)

// OpenNotifier builds the notifier selected by cfg.Driver. It returns a nil
// Notifier for "none"; the returned close function is never nil.
func OpenNotifier(ctx context.Context, lg *zap.Logger, cfg NotifierConfig) (order.Notifier, func(), error) {
	noop := func() {}
	switch cfg.Driver {
	case "none":
		return nil, noop, nil
	case "log":
		return notify.NewLog(lg), noop, nil
	case "nats":
		conn, err := notify.DialNATS(cfg.NATSURL)
		if err != nil {
			return nil, nil, err
		}
		return notify.NewNATS(conn, cfg.Subject), func() {
			if err := conn.Drain(); err != nil {
				lg.Warn("Drain NATS connection", zap.Error(err))
			}
		}, nil
	case "kafka":
		w := notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.Topic)
		return notify.NewKafka(w), func() {
			if err := w.Close(); err != nil {
				lg.Warn("Close Kafka writer", zap.Error(err))
			}
		}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, errors.Wrap(err, "ping redis")
		}
		return notify.NewRedis(client, cfg.Stream, cfg.StreamMaxLen), func() {
			if err := client.Close(); err != nil {
				lg.Warn("Close Redis client", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, errors.Errorf("unknown notifier driver %q", cfg.Driver)
	}
}
