package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("blocks within interval, allows after", func(t *testing.T) {
		now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
		l := NewIntervalLimiter(60*time.Second, nil)
		l.now = func() time.Time { return now }

		assert.True(t, l.Allow(ctx, "1.2.3.4"))
		l.Record(ctx, "1.2.3.4")

		now = now.Add(10 * time.Second)
		assert.False(t, l.Allow(ctx, "1.2.3.4"))

		now = now.Add(50 * time.Second)
		assert.True(t, l.Allow(ctx, "1.2.3.4"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := NewIntervalLimiter(60*time.Second, nil)
		l.Record(ctx, "1.2.3.4")
		assert.False(t, l.Allow(ctx, "1.2.3.4"))
		assert.True(t, l.Allow(ctx, "5.6.7.8"))
	})

	t.Run("zero interval disables limiting", func(t *testing.T) {
		l := NewIntervalLimiter(0, nil)
		l.Record(ctx, "1.2.3.4")
		assert.True(t, l.Allow(ctx, "1.2.3.4"))
	})
}
