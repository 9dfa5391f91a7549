package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIPRateLimiter(t *testing.T) {
	t.Run("Same IP Gets Same Limiter", func(t *testing.T) {
		rl := NewIPRateLimiter(rate.Limit(1), 2, testLogger())

		a := rl.GetLimiter("10.0.0.1")
		b := rl.GetLimiter("10.0.0.1")
		assert.Same(t, a, b)
	})

	t.Run("Burst Then Deny", func(t *testing.T) {
		rl := NewIPRateLimiter(rate.Limit(0.001), 2, testLogger())

		l := rl.GetLimiter("10.0.0.2")
		assert.True(t, l.Allow())
		assert.True(t, l.Allow())
		assert.False(t, l.Allow())
	})

	t.Run("Distinct IPs Independent", func(t *testing.T) {
		rl := NewIPRateLimiter(rate.Limit(0.001), 1, testLogger())

		assert.True(t, rl.GetLimiter("10.0.0.3").Allow())
		assert.False(t, rl.GetLimiter("10.0.0.3").Allow())
		assert.True(t, rl.GetLimiter("10.0.0.4").Allow())
	})
}
