package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const invoiceSeqKeyPrefix = "invoice_seq:"

// NumberSequence allocates externally visible invoice numbers. Numbers must
// never collide or be reused, even under concurrent allocation.
type NumberSequence interface {
	Next() (string, error)
}

type redisSequence struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisSequence creates a sequence generator backed by a per-year redis
// counter. INCR is atomic, so concurrent callers always receive distinct
// numbers.
func NewRedisSequence(client *redis.Client) NumberSequence {
	return &redisSequence{client: client, now: time.Now}
}

func (s *redisSequence) Next() (string, error) {
	year := s.now().Year()
	key := fmt.Sprintf("%s%d", invoiceSeqKeyPrefix, year)

	n, err := s.client.Incr(context.Background(), key).Result()
	if err != nil {
		return "", fmt.Errorf("allocate invoice number: %w", err)
	}
	return fmt.Sprintf("RJ-%d-%06d", year, n), nil
}
