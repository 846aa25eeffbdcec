// storage/memory.go - In-memory Repository (dev/test use)
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"f1cards/game"
	"f1cards/models"
)

// Memory stores everything in process memory. Game states are kept as
// JSON so callers never share slices with the store.
type Memory struct {
	mu sync.Mutex

	states   map[uint][]byte
	versions map[uint]int
	users    map[uint]models.User
	nextUser uint
	listings map[string]models.MarketListing
	ledger   []models.Transaction
	nextTx   uint
	packs    map[string]models.Pack
	shop     map[string]models.ShopCard
	defs     map[string]models.AchievementDefinition
}

func NewMemory() *Memory {
	return &Memory{
		states:   make(map[uint][]byte),
		versions: make(map[uint]int),
		users:    make(map[uint]models.User),
		nextUser: 1,
		listings: make(map[string]models.MarketListing),
		nextTx:   1,
		packs:    make(map[string]models.Pack),
		shop:     make(map[string]models.ShopCard),
		defs:     make(map[string]models.AchievementDefinition),
	}
}

func (m *Memory) Load(ctx context.Context, userID uint) (game.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.states[userID]
	if !ok {
		return game.State{}, ErrNotFound
	}
	st, err := decodeState(data)
	if err != nil {
		return game.State{}, err
	}
	st.Version = m.versions[userID]
	return st, nil
}

func (m *Memory) Create(ctx context.Context, userID uint, st game.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.states[userID]; ok {
		return ErrExists
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	m.states[userID] = data
	m.versions[userID] = 1
	return nil
}

func (m *Memory) Update(ctx context.Context, userID uint, fn UpdateFunc) (game.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.states[userID]
	if !ok {
		return game.State{}, ErrNotFound
	}
	st, err := decodeState(data)
	if err != nil {
		return game.State{}, err
	}
	st.Version = m.versions[userID]
	if err := fn(&st); err != nil {
		return game.State{}, err
	}
	out, err := json.Marshal(st)
	if err != nil {
		return game.State{}, fmt.Errorf("encode state: %w", err)
	}
	m.states[userID] = out
	m.versions[userID]++
	saved, err := decodeState(out)
	if err != nil {
		return game.State{}, err
	}
	saved.Version = m.versions[userID]
	return saved, nil
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.Username == u.Username {
			return ErrExists
		}
	}
	now := time.Now()
	u.ID = m.nextUser
	u.CreatedAt = now
	u.UpdatedAt = now
	m.nextUser++
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) DeleteUser(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *Memory) UserByID(ctx context.Context, id uint) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (m *Memory) UserExists(ctx context.Context, username, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username || strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) UpdateProfile(ctx context.Context, id uint, avatarURL, bannerURL, bio string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	u.AvatarURL, u.BannerURL, u.Bio = avatarURL, bannerURL, bio
	u.UpdatedAt = time.Now()
	m.users[id] = u
	return u, nil
}

func (m *Memory) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLogin = &at
	m.users[id] = u
	return nil
}

func (m *Memory) CreateListing(ctx context.Context, l *models.MarketListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.listings[l.ID]; ok {
		return ErrExists
	}
	l.UpdatedAt = time.Now()
	m.listings[l.ID] = *l
	return nil
}

func (m *Memory) GetListing(ctx context.Context, id string) (models.MarketListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.listings[id]
	if !ok {
		return models.MarketListing{}, ErrNotFound
	}
	return l, nil
}

func (m *Memory) ListListings(ctx context.Context, q ListingQuery) ([]models.MarketListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := q.Status
	if status == "" {
		status = models.ListingActive
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.MarketListing, 0)
	for _, l := range m.listings {
		if l.Status != status {
			continue
		}
		if q.SellerID != 0 && l.SellerID != q.SellerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(l.CardName), search) {
			continue
		}
		out = append(out, l)
	}
	sortListings(out, q.Sort)
	if limit := clampLimit(q.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortListings(ls []models.MarketListing, by string) {
	sort.SliceStable(ls, func(i, j int) bool {
		a, b := ls[i], ls[j]
		switch by {
		case SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case SortName:
			if a.CardName != b.CardName {
				return a.CardName < b.CardName
			}
		}
		if !a.ListedAt.Equal(b.ListedAt) {
			return a.ListedAt.After(b.ListedAt)
		}
		return a.ID < b.ID
	})
}

func (m *Memory) TransitionListing(ctx context.Context, id string, from, to models.ListingStatus, buyerID *uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.listings[id]
	if !ok {
		return ErrNotFound
	}
	if l.Status != from {
		return ErrConflict
	}
	applyTransition(&l, to, buyerID, time.Now())
	m.listings[id] = l
	return nil
}

func applyTransition(l *models.MarketListing, to models.ListingStatus, buyerID *uint, now time.Time) {
	l.Status = to
	l.UpdatedAt = now
	switch to {
	case models.ListingReserved:
		l.BuyerID = buyerID
	case models.ListingActive:
		l.BuyerID = nil
	case models.ListingSold:
		l.SoldAt = &now
	case models.ListingSettled:
		l.SettledAt = &now
	}
}

func (m *Memory) StaleListings(ctx context.Context, status models.ListingStatus, before time.Time, limit int) ([]models.MarketListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.MarketListing, 0)
	for _, l := range m.listings {
		if l.Status == status && !l.UpdatedAt.After(before) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) RecordTransaction(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx.ID = m.nextTx
	m.nextTx++
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	m.ledger = append(m.ledger, *tx)
	return nil
}

func (m *Memory) ListTransactions(ctx context.Context, userID uint, limit int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Transaction, 0)
	for i := len(m.ledger) - 1; i >= 0; i-- {
		if m.ledger[i].UserID == userID {
			out = append(out, m.ledger[i])
		}
	}
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ListPacks(ctx context.Context) ([]models.Pack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Pack, 0, len(m.packs))
	for _, p := range m.packs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *Memory) GetPack(ctx context.Context, id string) (models.Pack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.packs[id]
	if !ok {
		return models.Pack{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListShopCards(ctx context.Context) ([]models.ShopCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.ShopCard, 0, len(m.shop))
	for _, c := range m.shop {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *Memory) GetShopCard(ctx context.Context, id string) (models.ShopCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.shop[id]
	if !ok || !c.IsActive {
		return models.ShopCard{}, ErrNotFound
	}
	return c, nil
}

func (m *Memory) ListAchievementDefinitions(ctx context.Context) ([]models.AchievementDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.AchievementDefinition, 0, len(m.defs))
	for _, d := range m.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *Memory) SeedCatalog(ctx context.Context, packs []models.Pack, shop []models.ShopCard, defs []models.AchievementDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range packs {
		if _, ok := m.packs[p.ID]; !ok {
			m.packs[p.ID] = p
		}
	}
	for _, c := range shop {
		if _, ok := m.shop[c.ID]; !ok {
			m.shop[c.ID] = c
		}
	}
	for _, d := range defs {
		if _, ok := m.defs[d.ID]; !ok {
			m.defs[d.ID] = d
		}
	}
	return nil
}

func decodeState(data []byte) (game.State, error) {
	var st game.State
	if err := json.Unmarshal(data, &st); err != nil {
		return game.State{}, fmt.Errorf("decode state: %w", err)
	}
	return st, nil
}
