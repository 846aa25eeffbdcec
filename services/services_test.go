package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"f1cards/achievements"
	"f1cards/cardgen"
	"f1cards/game"
	"f1cards/models"
	"f1cards/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	repo     *storage.Memory
	game     *GameService
	market   *MarketService
	users    *UserService
	notifier *Notifier
	tracker  *achievements.Tracker
	clock    *testClock
}

func newTestEnv(t *testing.T, startingCoins int) *testEnv {
	t.Helper()
	ctx := context.Background()
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	clock := &testClock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, paris)}

	repo := storage.NewMemory()
	var defs []models.AchievementDefinition
	for i, d := range achievements.DefaultDefinitions() {
		defs = append(defs, models.NewAchievementDefinition(d, i))
	}
	require.NoError(t, repo.SeedCatalog(ctx, models.DefaultPacks(), models.DefaultShopCards(), defs))

	gen, err := cardgen.NewGenerator(cardgen.DefaultTables(), cardgen.WithRandomSource(cardgen.NewSeededSource(7)))
	require.NoError(t, err)
	tracker, err := achievements.NewTracker(achievements.DefaultDefinitions(),
		achievements.WithClock(clock.Now), achievements.WithLocation(paris))
	require.NoError(t, err)
	engine := game.NewEngine(gen, tracker)

	notifier := NewNotifier(nil)
	notifier.now = clock.Now
	gs := NewGameService(repo, repo, repo, engine, notifier, nil, startingCoins)
	return &testEnv{
		repo:     repo,
		game:     gs,
		market:   NewMarketService(repo, repo, repo, engine, notifier, nil),
		users:    NewUserService(repo, gs, testSecret, time.Hour, nil),
		notifier: notifier,
		tracker:  tracker,
		clock:    clock,
	}
}

func (e *testEnv) register(t *testing.T, name string) models.User {
	t.Helper()
	u, _, err := e.users.Register(context.Background(), RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) coins(t *testing.T, userID uint) int {
	t.Helper()
	st, err := e.game.State(context.Background(), userID)
	require.NoError(t, err)
	return st.Coins
}

func unlockedIDs(events []achievements.UnlockEvent) []string {
	var ids []string
	for _, ev := range events {
		ids = append(ids, ev.AchievementID)
	}
	return ids
}

func TestRegisterCreatesPlayer(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()

	u, token, err := env.users.Register(ctx, RegisterInput{Username: " max ", Email: "Max@Example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "max", u.Username)
	assert.Equal(t, "max@example.com", u.Email)
	assert.NotEqual(t, "pw", u.Password)
	assert.NotEmpty(t, token)

	st, err := env.game.State(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 10000, st.Coins)
	assert.Empty(t, st.Cards)
	assert.Len(t, st.Achievements.Achievements, len(achievements.DefaultDefinitions()))

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(u.ID), claims["user_id"])
	assert.Equal(t, "max", claims["username"])
}

func TestRegisterRejectsDuplicatesAndMissingFields(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	env.register(t, "lando")

	_, _, err := env.users.Register(ctx, RegisterInput{Username: "lando", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUserExists)
	_, _, err = env.users.Register(ctx, RegisterInput{Username: "other", Email: "LANDO@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUserExists)
	_, _, err = env.users.Register(ctx, RegisterInput{Username: "", Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	u := env.register(t, "oscar")

	got, token, err := env.users.Login(ctx, "OSCAR@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, token)
	require.NotNil(t, got.LastLogin)

	_, _, err = env.users.Login(ctx, "oscar@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = env.users.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestBuyPackChargesAndUnlocks(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	u := env.register(t, "charles")

	res, err := env.game.BuyPack(ctx, u.ID, "basic")
	require.NoError(t, err)
	assert.Len(t, res.Cards, 3)
	assert.Equal(t, 7500, res.Balance)
	assert.ElementsMatch(t, []string{"first_pack", "daily_pack"}, unlockedIDs(res.Unlocks))

	st, err := env.game.State(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.PacksOpened)
	assert.Len(t, st.Cards, 3)

	assert.Len(t, env.notifier.List(u.ID), 2)

	txs, err := env.game.Transactions(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TxPackPurchase, txs[0].Type)
	assert.Equal(t, -2500, txs[0].Amount)
}

func TestBuyPackInsufficientFundsLeavesStateAlone(t *testing.T) {
	env := newTestEnv(t, 1000)
	ctx := context.Background()
	u := env.register(t, "george")

	_, err := env.game.BuyPack(ctx, u.ID, "basic")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	st, err := env.game.State(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, st.Coins)
	assert.Empty(t, st.Cards)
	assert.Zero(t, st.PacksOpened)

	txs, err := env.game.Transactions(ctx, u.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Empty(t, env.notifier.List(u.ID))
}

func TestBuyPackUnknown(t *testing.T) {
	env := newTestEnv(t, 10000)
	u := env.register(t, "alex")
	_, err := env.game.BuyPack(context.Background(), u.ID, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuyShopCard(t *testing.T) {
	env := newTestEnv(t, 15000)
	ctx := context.Background()
	u := env.register(t, "fernando")

	first, err := env.game.BuyShopCard(ctx, u.ID, "101")
	require.NoError(t, err)
	assert.Equal(t, "Charles Leclerc Ferrari", first.Card.Name)
	assert.Equal(t, 9000, first.Balance)
	assert.NotNil(t, first.Card.ObtainedAt)
	assert.Contains(t, unlockedIDs(first.Unlocks), "daily_shop_card")

	second, err := env.game.BuyShopCard(ctx, u.ID, "101")
	require.NoError(t, err)
	assert.NotEqual(t, first.Card.ID, second.Card.ID)
	assert.Empty(t, second.Unlocks)

	st, err := env.game.State(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.CardsPurchased)

	_, err = env.game.BuyShopCard(ctx, u.ID, "101")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestClaimAchievement(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	u := env.register(t, "lewis")

	locked, err := env.game.ClaimAchievement(ctx, u.ID, "first_pack")
	require.NoError(t, err)
	assert.False(t, locked.Claimed)
	assert.Equal(t, 10000, locked.Balance)

	_, err = env.game.BuyPack(ctx, u.ID, "basic")
	require.NoError(t, err)

	got, err := env.game.ClaimAchievement(ctx, u.ID, "first_pack")
	require.NoError(t, err)
	assert.True(t, got.Claimed)
	assert.Equal(t, 100, got.Reward)
	assert.Equal(t, 7600, got.Balance)

	again, err := env.game.ClaimAchievement(ctx, u.ID, "first_pack")
	require.NoError(t, err)
	assert.False(t, again.Claimed)
	assert.Equal(t, 7600, again.Balance)

	daily, err := env.game.ClaimAchievement(ctx, u.ID, "daily_pack")
	require.NoError(t, err)
	assert.True(t, daily.Claimed)
	assert.Equal(t, 7650, daily.Balance)

	_, err = env.game.ClaimAchievement(ctx, u.ID, "missing")
	assert.ErrorIs(t, err, achievements.ErrUnknownAchievement)

	txs, err := env.game.Transactions(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, models.TxDailyReward, txs[0].Type)
	assert.Equal(t, 50, txs[0].Amount)
	assert.Equal(t, models.TxAchievementReward, txs[1].Type)
	assert.Equal(t, 100, txs[1].Amount)
}

func TestAchievementsViewAppliesDailyReset(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	u := env.register(t, "kimi")

	_, err := env.game.BuyPack(ctx, u.ID, "basic")
	require.NoError(t, err)
	view, err := env.game.Achievements(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, view.Standard, 6)
	require.Len(t, view.Daily, 2)
	assert.True(t, view.Daily[0].Unlocked)

	env.clock.Advance(24 * time.Hour)
	view, err = env.game.Achievements(ctx, u.ID)
	require.NoError(t, err)
	for _, a := range view.Daily {
		assert.False(t, a.Unlocked, a.ID)
		assert.Zero(t, a.Progress, a.ID)
	}
	for _, a := range view.Standard {
		if a.ID == "first_pack" {
			assert.True(t, a.Unlocked)
		}
	}

	res, err := env.game.BuyPack(ctx, u.ID, "basic")
	require.NoError(t, err)
	assert.Equal(t, []string{"daily_pack"}, unlockedIDs(res.Unlocks))
}

func TestCollectionFiltersAndValue(t *testing.T) {
	env := newTestEnv(t, 50000)
	ctx := context.Background()
	u := env.register(t, "nico")

	_, err := env.game.BuyPack(ctx, u.ID, "premium")
	require.NoError(t, err)
	shop, err := env.game.BuyShopCard(ctx, u.ID, "103")
	require.NoError(t, err)

	all, err := env.game.Collection(ctx, u.ID, CollectionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 6)

	teams, err := env.game.Collection(ctx, u.ID, CollectionFilter{Category: cardgen.Team})
	require.NoError(t, err)
	for _, c := range teams {
		assert.Equal(t, cardgen.Team, c.Category)
	}
	assert.NotEmpty(t, teams)

	value, count, err := env.game.CollectionValue(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
	sum := 0
	for _, c := range all {
		sum += c.Price
	}
	assert.Equal(t, sum, value)

	got, err := env.game.Card(ctx, u.ID, shop.Card.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.Card.Name, got.Name)
	_, err = env.game.Card(ctx, u.ID, "missing")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestMarketSale(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	seller := env.register(t, "seller")
	buyer := env.register(t, "buyer")

	pack, err := env.game.BuyPack(ctx, seller.ID, "basic")
	require.NoError(t, err)
	card := pack.Cards[0]

	l, err := env.market.CreateListing(ctx, seller.ID, seller.Username, card.ID, 1200)
	require.NoError(t, err)
	assert.Equal(t, models.ListingActive, l.Status)
	assert.Equal(t, card.Name, l.Card.Data().Name)

	sellerCards, err := env.game.Collection(ctx, seller.ID, CollectionFilter{})
	require.NoError(t, err)
	assert.Len(t, sellerCards, 2)

	_, err = env.market.Buy(ctx, seller.ID, l.ID)
	assert.ErrorIs(t, err, ErrOwnListing)

	res, err := env.market.Buy(ctx, buyer.ID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, card.ID, res.Card.ID)
	assert.Equal(t, 8800, res.Balance)
	assert.Equal(t, 7500+1200, env.coins(t, seller.ID))

	got, err := env.repo.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingSettled, got.Status)
	require.NotNil(t, got.BuyerID)
	assert.Equal(t, buyer.ID, *got.BuyerID)

	st, err := env.game.State(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CardsPurchased)
	_, ok := st.FindCard(card.ID)
	assert.True(t, ok)

	_, err = env.market.Buy(ctx, buyer.ID, l.ID)
	assert.ErrorIs(t, err, ErrListingUnavailable)

	sellerTx, err := env.game.Transactions(ctx, seller.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.TxCardSale, sellerTx[0].Type)
	assert.Equal(t, 1200, sellerTx[0].Amount)
}

func TestMarketCreateListingValidation(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	u := env.register(t, "valtteri")

	_, err := env.market.CreateListing(ctx, u.ID, u.Username, "missing", 100)
	assert.ErrorIs(t, err, ErrCardNotFound)
	_, err = env.market.CreateListing(ctx, u.ID, u.Username, "missing", 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestMarketCancelReturnsCard(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	seller := env.register(t, "esteban")
	other := env.register(t, "pierre")

	pack, err := env.game.BuyPack(ctx, seller.ID, "basic")
	require.NoError(t, err)
	l, err := env.market.CreateListing(ctx, seller.ID, seller.Username, pack.Cards[1].ID, 900)
	require.NoError(t, err)

	assert.ErrorIs(t, env.market.CancelListing(ctx, other.ID, l.ID), ErrNotListingOwner)
	require.NoError(t, env.market.CancelListing(ctx, seller.ID, l.ID))
	assert.ErrorIs(t, env.market.CancelListing(ctx, seller.ID, l.ID), ErrListingUnavailable)

	_, err = env.game.Card(ctx, seller.ID, pack.Cards[1].ID)
	assert.NoError(t, err)
	listed, err := env.market.List(ctx, storage.ListingQuery{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestMarketBuyWithoutFundsReleasesListing(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	seller := env.register(t, "yuki")

	pack, err := env.game.BuyPack(ctx, seller.ID, "basic")
	require.NoError(t, err)
	l, err := env.market.CreateListing(ctx, seller.ID, seller.Username, pack.Cards[0].ID, 50000)
	require.NoError(t, err)

	buyer := env.register(t, "logan")
	_, err = env.market.Buy(ctx, buyer.ID, l.ID)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	got, err := env.repo.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingActive, got.Status)
	assert.Nil(t, got.BuyerID)
	assert.Equal(t, 10000, env.coins(t, buyer.ID))
}

func TestSettlePendingPaysSeller(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	seller := env.register(t, "zhou")
	buyer := env.register(t, "oliver")

	pack, err := env.game.BuyPack(ctx, seller.ID, "basic")
	require.NoError(t, err)
	l, err := env.market.CreateListing(ctx, seller.ID, seller.Username, pack.Cards[0].ID, 700)
	require.NoError(t, err)
	require.NoError(t, env.repo.TransitionListing(ctx, l.ID, models.ListingActive, models.ListingReserved, &buyer.ID))
	require.NoError(t, env.repo.TransitionListing(ctx, l.ID, models.ListingReserved, models.ListingSold, &buyer.ID))

	n, err := env.market.SettlePending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "fresh sales are left to the request that made them")

	env.market.now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err = env.market.SettlePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 7500+700, env.coins(t, seller.ID))

	n, err = env.market.SettlePending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 7500+700, env.coins(t, seller.ID))
}

// flakyListings fails every transition into sold while failSold is set.
type flakyListings struct {
	storage.ListingRepo
	failSold bool
	attempts int
}

func (f *flakyListings) TransitionListing(ctx context.Context, id string, from, to models.ListingStatus, buyerID *uint) error {
	if to == models.ListingSold && f.failSold {
		f.attempts++
		return errors.New("connection reset")
	}
	return f.ListingRepo.TransitionListing(ctx, id, from, to, buyerID)
}

func TestSettlePendingRecoversPaidReservation(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	seller := env.register(t, "lando")
	buyer := env.register(t, "oscar")

	pack, err := env.game.BuyPack(ctx, seller.ID, "basic")
	require.NoError(t, err)
	l, err := env.market.CreateListing(ctx, seller.ID, seller.Username, pack.Cards[0].ID, 1200)
	require.NoError(t, err)

	flaky := &flakyListings{ListingRepo: env.repo, failSold: true}
	env.market.listings = flaky

	res, err := env.market.Buy(ctx, buyer.ID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 8800, res.Balance)
	assert.Equal(t, markSoldAttempts, flaky.attempts)

	got, err := env.repo.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingReserved, got.Status)
	assert.Equal(t, 7500, env.coins(t, seller.ID))

	flaky.failSold = false
	env.market.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	n, err := env.market.SettlePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err = env.repo.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingSettled, got.Status)
	assert.Equal(t, 7500+1200, env.coins(t, seller.ID))
	assert.Equal(t, 8800, env.coins(t, buyer.ID))

	n, err = env.market.SettlePending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 7500+1200, env.coins(t, seller.ID))
}

func TestSettlePendingLeavesUnpaidReservation(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	seller := env.register(t, "alex")
	buyer := env.register(t, "franco")

	pack, err := env.game.BuyPack(ctx, seller.ID, "basic")
	require.NoError(t, err)
	l, err := env.market.CreateListing(ctx, seller.ID, seller.Username, pack.Cards[0].ID, 600)
	require.NoError(t, err)
	require.NoError(t, env.repo.TransitionListing(ctx, l.ID, models.ListingActive, models.ListingReserved, &buyer.ID))

	env.market.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	n, err := env.market.SettlePending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := env.repo.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingReserved, got.Status)
	assert.Equal(t, 7500, env.coins(t, seller.ID))
}

// failingStates refuses to create game states.
type failingStates struct {
	storage.StateStore
}

func (failingStates) Create(context.Context, uint, game.State) error {
	return errors.New("state write failed")
}

func TestRegisterRollsBackUserWhenStateFails(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	in := RegisterInput{Username: "nico", Email: "nico@example.com", Password: "password123"}

	env.game.store = failingStates{StateStore: env.repo}
	_, _, err := env.users.Register(ctx, in)
	require.EqualError(t, err, "state write failed")

	_, _, err = env.users.Login(ctx, in.Email, in.Password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	exists, err := env.repo.UserExists(ctx, in.Username, in.Email)
	require.NoError(t, err)
	assert.False(t, exists)

	env.game.store = env.repo
	u, _, err := env.users.Register(ctx, in)
	require.NoError(t, err)
	_, err = env.game.State(ctx, u.ID)
	assert.NoError(t, err)
}

func TestRegisterPublishesStartingUnlocks(t *testing.T) {
	env := newTestEnv(t, 100000)
	u := env.register(t, "toto")

	notes := env.notifier.List(u.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "tycoon", notes[0].AchievementID)
}

func TestStateAppliesChangedDefinitions(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()
	u := env.register(t, "kimi")
	_, err := env.game.BuyPack(ctx, u.ID, "basic")
	require.NoError(t, err)

	defs := achievements.DefaultDefinitions()
	for i := range defs {
		if defs[i].ID == "ten_cards" {
			defs[i].Threshold = 3
		}
	}
	tracker, err := achievements.NewTracker(defs, achievements.WithClock(env.clock.Now), achievements.WithLocation(env.tracker.Location()))
	require.NoError(t, err)
	env.game.engine = game.NewEngine(env.game.engine.Generator(), tracker)

	st, err := env.game.State(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, st.Achievements.Find("ten_cards").Unlocked)

	stored, err := env.repo.Load(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Achievements.Find("ten_cards").Threshold)
	assert.True(t, stored.Achievements.Find("ten_cards").Unlocked)
	assert.Contains(t, notificationIDs(env.notifier.List(u.ID)), "ten_cards")
}

func notificationIDs(notes []Notification) []string {
	var ids []string
	for _, n := range notes {
		ids = append(ids, n.AchievementID)
	}
	return ids
}

func TestBuildEngineSeedsCatalog(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemory()

	engine, err := BuildEngine(ctx, repo, cardgen.DefaultTables(), time.UTC, nil)
	require.NoError(t, err)
	assert.Len(t, engine.Tracker().Definitions(), len(achievements.DefaultDefinitions()))
	assert.Equal(t, time.UTC, engine.Tracker().Location())

	packs, err := repo.ListPacks(ctx)
	require.NoError(t, err)
	assert.Len(t, packs, 3)
	shop, err := repo.ListShopCards(ctx)
	require.NoError(t, err)
	assert.Len(t, shop, 3)

	_, err = BuildEngine(ctx, repo, cardgen.DefaultTables(), time.UTC, nil)
	require.NoError(t, err, "seeding twice is harmless")
}
