// models/transaction.go
package models

import "time"

type TransactionType string

const (
	TxPackPurchase      TransactionType = "pack_purchase"
	TxCardSale          TransactionType = "card_sale"
	TxCardPurchase      TransactionType = "card_purchase"
	TxDailyReward       TransactionType = "daily_reward"
	TxAchievementReward TransactionType = "achievement_reward"
)

// Transaction is one coin movement in a user's ledger. Amount is signed:
// debits are negative.
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	Type        TransactionType `json:"type" gorm:"not null;size:32;index"`
	Amount      int             `json:"amount"`
	Description string          `json:"description" gorm:"size:255"`
	CreatedAt   time.Time       `json:"date" gorm:"index"`
}
