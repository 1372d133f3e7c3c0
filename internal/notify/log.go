package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/xenking/orders/internal/domain/order"
)

var _ order.Notifier = (*Log)(nil)

// Log writes notifications to a zap logger. It never fails.
type Log struct {
	lg *zap.Logger
}

// NewLog returns a Log notifier writing to lg.
func NewLog(lg *zap.Logger) *Log {
	return &Log{lg: lg.Named("notify")}
}

func (l *Log) Notify(_ context.Context, message string) error {
	l.lg.Info("Notification", zap.String("message", message))
	return nil
}
