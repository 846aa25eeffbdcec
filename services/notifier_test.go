package services

import (
	"context"
	"testing"
	"time"

	"f1cards/achievements"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unlockAt(id string, at time.Time) achievements.UnlockEvent {
	return achievements.UnlockEvent{
		AchievementID: id,
		Pool:          achievements.Standard,
		UnlockedAt:    at,
		VisibleUntil:  at.Add(achievements.NotificationTTL),
	}
}

func TestNotifierFeedExpires(t *testing.T) {
	clock := &testClock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	n := NewNotifier(nil)
	n.now = clock.Now

	assert.Nil(t, n.Publish(1, nil))
	published := n.Publish(1, []achievements.UnlockEvent{unlockAt("first_pack", clock.t)})
	require.Len(t, published, 1)
	assert.NotEmpty(t, published[0].ID)
	assert.Equal(t, uint(1), published[0].UserID)

	assert.Len(t, n.List(1), 1)
	assert.Empty(t, n.List(2))

	clock.Advance(14 * time.Second)
	assert.Len(t, n.List(1), 1)
	clock.Advance(time.Second)
	assert.Empty(t, n.List(1))
}

func TestNotifierDismiss(t *testing.T) {
	clock := &testClock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	n := NewNotifier(nil)
	n.now = clock.Now

	out := n.Publish(7, []achievements.UnlockEvent{
		unlockAt("first_pack", clock.t),
		unlockAt("daily_pack", clock.t),
	})
	require.Len(t, out, 2)

	assert.False(t, n.Dismiss(8, out[0].ID))
	assert.True(t, n.Dismiss(7, out[0].ID))
	assert.False(t, n.Dismiss(7, out[0].ID))

	left := n.List(7)
	require.Len(t, left, 1)
	assert.Equal(t, "daily_pack", left[0].AchievementID)
}

func TestNotifierSubscribe(t *testing.T) {
	n := NewNotifier(nil)
	backlog, ch, cancel := n.Subscribe(3)
	assert.Empty(t, backlog)

	n.Publish(3, []achievements.UnlockEvent{unlockAt("ten_cards", time.Now())})
	n.Publish(4, []achievements.UnlockEvent{unlockAt("tycoon", time.Now())})

	select {
	case note := <-ch:
		assert.Equal(t, "ten_cards", note.AchievementID)
	case <-time.After(time.Second):
		t.Fatal("no notification delivered")
	}
	select {
	case note := <-ch:
		t.Fatalf("unexpected notification %v", note)
	default:
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestNotifierSubscribeSplitsBacklogAndLive(t *testing.T) {
	n := NewNotifier(nil)
	n.Publish(5, []achievements.UnlockEvent{unlockAt("first_pack", time.Now())})

	backlog, ch, cancel := n.Subscribe(5)
	defer cancel()
	require.Len(t, backlog, 1)
	assert.Equal(t, "first_pack", backlog[0].AchievementID)

	n.Publish(5, []achievements.UnlockEvent{unlockAt("daily_pack", time.Now())})

	var live []string
	for done := false; !done; {
		select {
		case note := <-ch:
			live = append(live, note.AchievementID)
		default:
			done = true
		}
	}
	assert.Equal(t, []string{"daily_pack"}, live)
	assert.Len(t, n.List(5), 2)
}

func TestNotifierPrune(t *testing.T) {
	clock := &testClock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	n := NewNotifier(nil)
	n.now = clock.Now

	n.Publish(1, []achievements.UnlockEvent{unlockAt("a", clock.t)})
	n.Publish(2, []achievements.UnlockEvent{unlockAt("b", clock.t.Add(10*time.Second))})

	clock.Advance(20 * time.Second)
	assert.Equal(t, 1, n.Prune())
	assert.Empty(t, n.List(1))
	assert.Len(t, n.List(2), 1)
}

func TestDailyResetServiceTick(t *testing.T) {
	env := newTestEnv(t, 10000)
	svc := NewDailyResetService(env.tracker, env.notifier, env.market, time.Minute, nil)

	assert.False(t, svc.Tick(context.Background()))
	env.clock.Advance(12 * time.Hour)
	assert.False(t, svc.Tick(context.Background()))
	env.clock.Advance(6 * time.Hour)
	assert.True(t, svc.Tick(context.Background()))
	assert.False(t, svc.Tick(context.Background()))
}

func TestDailyResetServiceStartStop(t *testing.T) {
	env := newTestEnv(t, 10000)
	svc := NewDailyResetService(env.tracker, env.notifier, env.market, 10*time.Millisecond, nil)
	svc.Start()
	svc.Start()
	time.Sleep(30 * time.Millisecond)
	svc.Stop()
	svc.Stop()
}
