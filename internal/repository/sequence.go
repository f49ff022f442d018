package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const orderSequenceKey = "incident-service:purchase-orders:seq"

// OrderSequence issues monotonically increasing purchase-order numbers via
// Redis INCR, falling back to the table count when Redis is unreachable.
type OrderSequence struct {
	client *redis.Client
	orders PurchaseOrderRepository
	logger *zap.Logger
}

// NewOrderSequence builds the sequence.
func NewOrderSequence(client *redis.Client, orders PurchaseOrderRepository, logger *zap.Logger) *OrderSequence {
	return &OrderSequence{client: client, orders: orders, logger: logger}
}

// Next returns the next sequence value. A fresh counter is seeded from the
// existing order count so numbering continues rather than restarting.
func (s *OrderSequence) Next(ctx context.Context) (int64, error) {
	if s.client != nil {
		n, err := s.client.Incr(ctx, orderSequenceKey).Result()
		if err == nil {
			if n == 1 {
				if seeded, ok := s.seed(ctx); ok {
					return seeded, nil
				}
			}
			return n, nil
		}
		s.logger.Warn("order sequence redis unavailable, using table count", zap.Error(err))
	}

	count, err := s.orders.Count(ctx)
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

func (s *OrderSequence) seed(ctx context.Context) (int64, bool) {
	count, err := s.orders.Count(ctx)
	if err != nil || count == 0 {
		return 0, false
	}
	next := count + 1
	if err := s.client.Set(ctx, orderSequenceKey, next, 0).Err(); err != nil {
		s.logger.Warn("order sequence seed failed", zap.Error(err))
		return 0, false
	}
	return next, true
}
