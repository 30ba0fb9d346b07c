package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAttemptStore(t *testing.T) {
	ctx := context.Background()

	t.Run("miss returns nil nil", func(t *testing.T) {
		s := NewMemoryAttemptStore(time.Minute)

		res, err := s.Get(ctx, "unknown")
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("round trip", func(t *testing.T) {
		s := NewMemoryAttemptStore(time.Minute)
		want := &CardSessionResult{SessionID: "cs_1", ClientSecret: "sec", OrderID: "ord_1", OrderNumber: "CSZ-2026-X"}

		require.NoError(t, s.Put(ctx, "a1", want))

		got, err := s.Get(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("expired entries are dropped on access", func(t *testing.T) {
		s := NewMemoryAttemptStore(10 * time.Millisecond)
		require.NoError(t, s.Put(ctx, "a1", &CardSessionResult{SessionID: "cs_1"}))

		time.Sleep(20 * time.Millisecond)

		got, err := s.Get(ctx, "a1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("attempts are isolated", func(t *testing.T) {
		s := NewMemoryAttemptStore(time.Minute)
		require.NoError(t, s.Put(ctx, "a1", &CardSessionResult{SessionID: "cs_1"}))
		require.NoError(t, s.Put(ctx, "a2", &CardSessionResult{SessionID: "cs_2"}))

		got, err := s.Get(ctx, "a2")
		require.NoError(t, err)
		assert.Equal(t, "cs_2", got.SessionID)
	})
}

func TestOrderNumbers(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

	t.Run("card format", func(t *testing.T) {
		n := cardOrderNumber(now)
		assert.Regexp(t, `^CSZ-2026-[0-9A-Z]+$`, n)
	})

	t.Run("bank format", func(t *testing.T) {
		n := bankOrderNumber(now)
		assert.Regexp(t, `^CSZ-202609-[0-9A-Z]{6}$`, n)
	})

	t.Run("numbers do not collide", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 100 {
			n := bankOrderNumber(now)
			_, dup := seen[n]
			assert.False(t, dup, "duplicate %s", n)
			seen[n] = struct{}{}
		}
	})
}
