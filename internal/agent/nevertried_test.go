package agent

import (
	"context"
	"errors"
	"testing"

	"recur_notification_service/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeverTried(t *testing.T) {
	now := at(t, "2026-03-10 14:00")

	t.Run("day seven outreach", func(t *testing.T) {
		u := testUser(now.AddDate(0, 0, -7))
		n := NewNeverTried(&fakeFamilyRepo{}, &fakeDedup{}, testLogger())

		d, err := n.Evaluate(context.Background(), u, now)
		require.NoError(t, err)
		require.True(t, d.IsSend())
		assert.Equal(t, notification.TypeDormantReactivation, d.Type)
		assert.Equal(t, notification.PriorityMedium, d.Priority)
		assert.Equal(t, "Ready to start tracking?", d.Message.Title)
		assert.Equal(t, "recur://add-family-member", d.DeepLink)
	})

	t.Run("day thirty softens to low priority", func(t *testing.T) {
		u := testUser(now.AddDate(0, 0, -30))
		n := NewNeverTried(&fakeFamilyRepo{}, &fakeDedup{}, testLogger())

		d, err := n.Evaluate(context.Background(), u, now)
		require.NoError(t, err)
		require.True(t, d.IsSend())
		assert.Equal(t, notification.PriorityLow, d.Priority)
		assert.Equal(t, "We're here when you're ready", d.Message.Title)
	})

	t.Run("day sixty is the last attempt", func(t *testing.T) {
		u := testUser(now.AddDate(0, 0, -60))
		n := NewNeverTried(&fakeFamilyRepo{}, &fakeDedup{}, testLogger())

		d, err := n.Evaluate(context.Background(), u, now)
		require.NoError(t, err)
		require.True(t, d.IsSend())
		assert.Equal(t, notification.PriorityLow, d.Priority)
		assert.Equal(t, "Miss tracking your classes?", d.Message.Title)
	})

	t.Run("nothing after day sixty", func(t *testing.T) {
		u := testUser(now.AddDate(0, 0, -90))
		n := NewNeverTried(&fakeFamilyRepo{}, &fakeDedup{}, testLogger())

		d, err := n.Evaluate(context.Background(), u, now)
		require.NoError(t, err)
		assert.False(t, d.IsSend())
	})

	t.Run("users with family members are not dormant", func(t *testing.T) {
		u := testUser(now.AddDate(0, 0, -7))
		n := NewNeverTried(&fakeFamilyRepo{count: 2}, &fakeDedup{}, testLogger())

		d, err := n.Evaluate(context.Background(), u, now)
		require.NoError(t, err)
		assert.False(t, d.IsSend())
		assert.Equal(t, "family members already added", d.Reason)
	})

	t.Run("family lookup error skips rather than misfires", func(t *testing.T) {
		u := testUser(now.AddDate(0, 0, -7))
		n := NewNeverTried(&fakeFamilyRepo{err: errors.New("db down")}, &fakeDedup{}, testLogger())

		d, err := n.Evaluate(context.Background(), u, now)
		require.NoError(t, err)
		assert.False(t, d.IsSend())
		assert.Equal(t, "error checking family members", d.Reason)
	})

	t.Run("suppressed within the cooldown", func(t *testing.T) {
		u := testUser(now.AddDate(0, 0, -7))
		dedup := &fakeDedup{suppressed: map[string]bool{
			dedupKey(notification.TypeDormantReactivation, ""): true,
		}}
		n := NewNeverTried(&fakeFamilyRepo{}, dedup, testLogger())

		d, err := n.Evaluate(context.Background(), u, now)
		require.NoError(t, err)
		assert.False(t, d.IsSend())
	})
}
