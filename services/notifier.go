// services/notifier.go - In-memory achievement unlock feed
package services

import (
	"sync"
	"time"

	"f1cards/achievements"
	"f1cards/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification is an unlock event addressed to one user.
type Notification struct {
	ID     string `json:"id"`
	UserID uint   `json:"user_id"`
	achievements.UnlockEvent
}

// Notifier keeps each user's recent unlock events and fans them out to
// live websocket subscribers. Nothing here is persisted.
type Notifier struct {
	mu      sync.Mutex
	feeds   map[uint][]Notification
	subs    map[uint]map[int]chan Notification
	nextSub int
	now     func() time.Time
	log     *zap.Logger
}

func NewNotifier(log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		feeds: make(map[uint][]Notification),
		subs:  make(map[uint]map[int]chan Notification),
		now:   time.Now,
		log:   log,
	}
}

// Publish stores events for userID and pushes them to subscribers. A slow
// subscriber drops events rather than blocking the publisher.
func (n *Notifier) Publish(userID uint, events []achievements.UnlockEvent) []Notification {
	if len(events) == 0 {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notification, 0, len(events))
	for _, ev := range events {
		note := Notification{ID: uuid.NewString(), UserID: userID, UnlockEvent: ev}
		out = append(out, note)
		utils.AchievementsUnlocked.WithLabelValues(ev.AchievementID).Inc()
		n.log.Info("achievement_unlocked",
			zap.Uint("user_id", userID),
			zap.String("achievement", ev.AchievementID),
			zap.String("pool", string(ev.Pool)),
			zap.Int("reward", ev.Reward))

		for id, ch := range n.subs[userID] {
			select {
			case ch <- note:
			default:
				n.log.Warn("notification_dropped", zap.Uint("user_id", userID), zap.Int("subscriber", id))
			}
		}
	}
	n.feeds[userID] = append(n.live(n.feeds[userID]), out...)
	return out
}

// List returns the events of userID that are still visible.
func (n *Notifier) List(userID uint) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	feed := n.live(n.feeds[userID])
	if len(feed) == 0 {
		delete(n.feeds, userID)
		return []Notification{}
	}
	n.feeds[userID] = feed
	return append([]Notification(nil), feed...)
}

// Dismiss hides one event. It reports whether the event existed.
func (n *Notifier) Dismiss(userID uint, id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	feed := n.feeds[userID]
	for i, note := range feed {
		if note.ID == id {
			n.feeds[userID] = append(feed[:i:i], feed[i+1:]...)
			return true
		}
	}
	return false
}

// Subscribe registers a live channel for userID and returns the events
// still visible at that moment. Each event is either in the backlog or sent
// on the channel, never both. The returned func must be called to release
// the channel.
func (n *Notifier) Subscribe(userID uint) ([]Notification, <-chan Notification, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	backlog := n.live(n.feeds[userID])
	n.nextSub++
	id := n.nextSub
	ch := make(chan Notification, 16)
	if n.subs[userID] == nil {
		n.subs[userID] = make(map[int]chan Notification)
	}
	n.subs[userID][id] = ch

	var once sync.Once
	return backlog, ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[userID], id)
			if len(n.subs[userID]) == 0 {
				delete(n.subs, userID)
			}
			close(ch)
		})
	}
}

// Prune drops expired events for every user and returns how many went.
func (n *Notifier) Prune() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	removed := 0
	for userID, feed := range n.feeds {
		kept := n.live(feed)
		removed += len(feed) - len(kept)
		if len(kept) == 0 {
			delete(n.feeds, userID)
		} else {
			n.feeds[userID] = kept
		}
	}
	return removed
}

func (n *Notifier) live(feed []Notification) []Notification {
	now := n.now()
	kept := feed[:0:0]
	for _, note := range feed {
		if note.Visible(now) {
			kept = append(kept, note)
		}
	}
	return kept
}
