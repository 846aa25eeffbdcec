// models/models.go - Shop catalog models
package models

import (
	"time"

	"f1cards/cardgen"
)

// Pack is a purchasable pack in the shop catalog.
type Pack struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Name        string    `json:"name" gorm:"not null;size:100"`
	Tier        string    `json:"tier" gorm:"not null;size:16"`
	Price       int       `json:"price" gorm:"not null"`
	CardCount   int       `json:"card_count" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    string    `json:"image_url" gorm:"size:512"`
	SortOrder   int       `json:"-" gorm:"default:0"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (p Pack) ToPack() cardgen.Pack {
	return cardgen.Pack{
		ID:          p.ID,
		Name:        p.Name,
		Tier:        cardgen.PackTier(p.Tier),
		Price:       p.Price,
		CardCount:   p.CardCount,
		Description: p.Description,
	}
}

// ShopCard is a fixed card sold in the daily shop.
type ShopCard struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Name        string    `json:"name" gorm:"not null;size:100"`
	Category    string    `json:"category" gorm:"not null;size:32"`
	Rarity      string    `json:"rarity" gorm:"not null;size:16"`
	Price       int       `json:"price" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    string    `json:"image_url" gorm:"size:512"`
	IsActive    bool      `json:"-" gorm:"default:true"`
	SortOrder   int       `json:"-" gorm:"default:0"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// ToCard copies the shop card into a collection card with the given id.
func (s ShopCard) ToCard(id string) cardgen.Card {
	return cardgen.Card{
		ID:          id,
		Name:        s.Name,
		Category:    cardgen.Category(s.Category),
		Rarity:      cardgen.Rarity(s.Rarity),
		Price:       s.Price,
		Description: s.Description,
		ImageURL:    s.ImageURL,
	}
}

const shopImageURL = "https://images.pexels.com/photos/8775636/pexels-photo-8775636.jpeg"
const packImageURL = "https://images.pexels.com/photos/163064/play-stone-network-networked-interactive-163064.jpeg"

// DefaultPacks converts the built-in pack catalog into rows.
func DefaultPacks() []Pack {
	var out []Pack
	for i, p := range cardgen.DefaultPacks() {
		out = append(out, Pack{
			ID:          p.ID,
			Name:        p.Name,
			Tier:        string(p.Tier),
			Price:       p.Price,
			CardCount:   p.CardCount,
			Description: p.Description,
			ImageURL:    packImageURL,
			SortOrder:   i,
		})
	}
	return out
}

// DefaultShopCards is the daily shop selection seeded on first start.
func DefaultShopCards() []ShopCard {
	return []ShopCard{
		{ID: "101", Name: "Charles Leclerc Ferrari", Category: string(cardgen.Pilot), Rarity: string(cardgen.Rare),
			Price: 6000, Description: "Le prince de Monaco", ImageURL: shopImageURL, IsActive: true, SortOrder: 0},
		{ID: "102", Name: "Silverstone Circuit", Category: string(cardgen.Circuit), Rarity: string(cardgen.Rare),
			Price: 5500, Description: "Temple de la vitesse britannique", ImageURL: shopImageURL, IsActive: true, SortOrder: 1},
		{ID: "103", Name: "Mercedes AMG Team", Category: string(cardgen.Team), Rarity: string(cardgen.Epic),
			Price: 9000, Description: "Étoile d'argent allemande", ImageURL: shopImageURL, IsActive: true, SortOrder: 2},
	}
}
