// utils/metrics.go - Prometheus metrics
package utils

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1cards_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "f1cards_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PacksOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1cards_packs_opened_total",
			Help: "Packs opened, by tier",
		},
		[]string{"tier"},
	)

	CardsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1cards_cards_generated_total",
			Help: "Cards generated from packs, by rarity",
		},
		[]string{"rarity"},
	)

	AchievementsUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1cards_achievements_unlocked_total",
			Help: "Achievement unlocks, by achievement id",
		},
		[]string{"achievement"},
	)

	RewardsClaimed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1cards_achievement_rewards_claimed_total",
			Help: "Achievement rewards paid out, by achievement id",
		},
		[]string{"achievement"},
	)

	MarketSales = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "f1cards_market_sales_total",
			Help: "Marketplace listings sold",
		},
	)

	DailyRollovers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "f1cards_daily_rollovers_total",
			Help: "Reference-zone day changes observed by the reset service",
		},
	)
)

var registerOnce sync.Once

// InitMetrics registers every collector with the default registry. It is
// safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ReqCount, ReqDuration,
			PacksOpened, CardsGenerated,
			AchievementsUnlocked, RewardsClaimed,
			MarketSales, DailyRollovers,
		)
	})
}
