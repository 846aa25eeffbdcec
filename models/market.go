// models/market.go
package models

import (
	"time"

	"f1cards/cardgen"

	"gorm.io/datatypes"
)

type ListingStatus string

// A listing moves active -> reserved -> sold -> settled, or active ->
// cancelled. reserved means a buyer claimed it and is being charged; sold
// means the buyer paid and the seller payout is pending.
const (
	ListingActive    ListingStatus = "active"
	ListingReserved  ListingStatus = "reserved"
	ListingSold      ListingStatus = "sold"
	ListingSettled   ListingStatus = "settled"
	ListingCancelled ListingStatus = "cancelled"
)

type MarketListing struct {
	ID             string                           `json:"id" gorm:"primaryKey;size:36"`
	SellerID       uint                             `json:"seller_id" gorm:"not null;index"`
	SellerUsername string                           `json:"seller_username" gorm:"size:64"`
	BuyerID        *uint                            `json:"buyer_id,omitempty" gorm:"index"`
	CardID         string                           `json:"card_id" gorm:"not null;size:64"`
	Card           datatypes.JSONType[cardgen.Card] `json:"card"`
	CardName       string                           `json:"-" gorm:"size:200;index"`
	Price          int                              `json:"price" gorm:"not null;index"`
	Status         ListingStatus                    `json:"status" gorm:"not null;size:16;index"`
	ListedAt       time.Time                        `json:"listed_date" gorm:"index"`
	SoldAt         *time.Time                       `json:"sold_at,omitempty"`
	SettledAt      *time.Time                       `json:"settled_at,omitempty"`
	UpdatedAt      time.Time                        `json:"updated_at"`
}
