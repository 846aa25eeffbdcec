// achievements/tracker.go - Progress, unlock, claim and daily reset
package achievements

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// NotificationTTL is how long an unlock event stays visible.
const NotificationTTL = 15 * time.Second

// DefaultZone is the reference timezone for the daily reset.
const DefaultZone = "Europe/Paris"

const dateLayout = "2006-01-02"

// Tracker applies achievement rules to a State. It keeps no per-player
// data, so one Tracker serves every player.
type Tracker struct {
	defs []Definition
	loc  *time.Location
	now  func() time.Time
	ttl  time.Duration
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

func WithNotificationTTL(ttl time.Duration) Option {
	return func(t *Tracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// NewTracker validates defs and builds a tracker. Without WithLocation the
// reset zone is Europe/Paris, falling back to UTC if tzdata is missing.
func NewTracker(defs []Definition, opts ...Option) (*Tracker, error) {
	if err := ValidateDefinitions(defs); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(DefaultZone)
	if err != nil {
		loc = time.UTC
	}
	t := &Tracker{
		defs: append([]Definition(nil), defs...),
		loc:  loc,
		now:  time.Now,
		ttl:  NotificationTTL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// ValidateDefinitions rejects duplicate ids, unknown pools or counters
// and non-positive thresholds.
func ValidateDefinitions(defs []Definition) error {
	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		switch {
		case d.ID == "":
			return fmt.Errorf("%w: definition %d has empty id", ErrInvalidDefinition, i)
		case seen[d.ID]:
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidDefinition, d.ID)
		case !d.Pool.Valid():
			return fmt.Errorf("%w: %s has unknown pool %q", ErrInvalidDefinition, d.ID, d.Pool)
		case !d.Counter.Valid():
			return fmt.Errorf("%w: %s has unknown counter %q", ErrInvalidDefinition, d.ID, d.Counter)
		case d.Threshold <= 0:
			return fmt.Errorf("%w: %s threshold must be > 0", ErrInvalidDefinition, d.ID)
		case d.Reward < 0:
			return fmt.Errorf("%w: %s reward must be >= 0", ErrInvalidDefinition, d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

func (t *Tracker) Definitions() []Definition {
	return append([]Definition(nil), t.defs...)
}

func (t *Tracker) Location() *time.Location { return t.loc }

// Today is the current date in the reference zone, as YYYY-MM-DD.
func (t *Tracker) Today() string {
	return t.now().In(t.loc).Format(dateLayout)
}

// NextReset is the next midnight in the reference zone.
func (t *Tracker) NextReset() time.Time {
	now := t.now().In(t.loc)
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.loc)
}

// NewState seeds every definition as locked, marks today as reset and
// takes counters as the daily baseline.
func (t *Tracker) NewState(counters Snapshot) State {
	st := State{
		Achievements:   make([]Achievement, 0, len(t.defs)),
		LastDailyReset: t.Today(),
		DailyBaseline:  counters,
	}
	for _, d := range t.defs {
		st.Achievements = append(st.Achievements, Achievement{Definition: d})
	}
	return st
}

// Sync aligns a stored state with the current definitions: new ones are
// added locked, removed ones are dropped, and static fields are refreshed.
// Progress flags of surviving achievements are kept.
func (t *Tracker) Sync(st *State) {
	existing := make(map[string]Achievement, len(st.Achievements))
	for _, a := range st.Achievements {
		existing[a.ID] = a
	}
	out := make([]Achievement, 0, len(t.defs))
	for _, d := range t.defs {
		a, ok := existing[d.ID]
		if !ok {
			a = Achievement{}
		}
		a.Definition = d
		out = append(out, a)
	}
	st.Achievements = out
}

// Recompute updates every achievement driven by counter c, given its
// current absolute value. Achievements keyed to other counters are not
// touched. One event is returned per false to true unlock edge.
func (t *Tracker) Recompute(st *State, c Counter, value int) []UnlockEvent {
	var events []UnlockEvent
	now := t.now()
	for i := range st.Achievements {
		a := &st.Achievements[i]
		if a.Counter != c {
			continue
		}
		v := value
		if a.Pool == Daily {
			v -= st.DailyBaseline.Value(c)
		}
		if a.Unlocked {
			a.Progress = 100
			continue
		}
		a.Progress = Progress(v, a.Threshold)
		if v >= a.Threshold {
			a.Unlocked = true
			a.Progress = 100
			at := now
			a.UnlockedAt = &at
			events = append(events, UnlockEvent{
				AchievementID: a.ID,
				Description:   a.Description,
				Reward:        a.Reward,
				Pool:          a.Pool,
				UnlockedAt:    now,
				VisibleUntil:  now.Add(t.ttl),
			})
		}
	}
	return events
}

// RecomputeAll runs one pass per counter in declared order.
func (t *Tracker) RecomputeAll(st *State, counters Snapshot) []UnlockEvent {
	var events []UnlockEvent
	for _, c := range allCounters {
		events = append(events, t.Recompute(st, c, counters.Value(c))...)
	}
	return events
}

// Claim marks an unlocked, unpaid achievement as claimed and reports the
// reward the caller must credit. Locked or already claimed achievements
// yield a result with Claimed false and no state change.
func (t *Tracker) Claim(st *State, id string) (ClaimResult, error) {
	a := st.Find(id)
	if a == nil {
		return ClaimResult{}, fmt.Errorf("%w: %q", ErrUnknownAchievement, id)
	}
	res := ClaimResult{AchievementID: a.ID, Pool: a.Pool}
	if !a.Claimable() {
		return res, nil
	}
	now := t.now()
	a.RewardClaimed = true
	a.ClaimedAt = &now
	res.Claimed = true
	res.Reward = a.Reward
	return res, nil
}

// ResetDaily clears every daily achievement and records counters as the
// new baseline. Standard achievements are left alone.
func (t *Tracker) ResetDaily(st *State, counters Snapshot) {
	for i := range st.Achievements {
		a := &st.Achievements[i]
		if a.Pool != Daily {
			continue
		}
		a.Progress = 0
		a.Unlocked = false
		a.RewardClaimed = false
		a.UnlockedAt = nil
		a.ClaimedAt = nil
	}
	st.DailyBaseline = counters
}

// EnsureDailyReset resets the daily pool once per reference-zone day. It
// returns true when a reset happened; the caller must persist st.
func (t *Tracker) EnsureDailyReset(st *State, counters Snapshot) bool {
	today := t.Today()
	if st.LastDailyReset == today {
		return false
	}
	t.ResetDaily(st, counters)
	st.LastDailyReset = today
	return true
}

// Progress is min(100, 100*value/threshold), floored, with negative
// values treated as zero.
func Progress(value, threshold int) int {
	if threshold <= 0 {
		return 0
	}
	if value <= 0 {
		return 0
	}
	if value >= threshold {
		return 100
	}
	return int(int64(value) * 100 / int64(threshold))
}
