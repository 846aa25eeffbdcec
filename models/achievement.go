// models/achievement.go
package models

import (
	"time"

	"f1cards/achievements"
)

// AchievementDefinition is the stored achievement catalog. Player progress
// lives in the game state, not here.
type AchievementDefinition struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Description string    `gorm:"not null" json:"description"`
	Criteria    string    `gorm:"type:text" json:"criteria"`
	Reward      int       `gorm:"not null;default:0" json:"reward"`
	Pool        string    `gorm:"not null;index;size:16" json:"pool"`
	Counter     string    `gorm:"not null;size:32" json:"counter"`
	Threshold   int       `gorm:"not null" json:"threshold"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a AchievementDefinition) ToDefinition() achievements.Definition {
	return achievements.Definition{
		ID:          a.ID,
		Description: a.Description,
		Criteria:    a.Criteria,
		Reward:      a.Reward,
		Pool:        achievements.Pool(a.Pool),
		Counter:     achievements.Counter(a.Counter),
		Threshold:   a.Threshold,
	}
}

func NewAchievementDefinition(d achievements.Definition, order int) AchievementDefinition {
	return AchievementDefinition{
		ID:          d.ID,
		Description: d.Description,
		Criteria:    d.Criteria,
		Reward:      d.Reward,
		Pool:        string(d.Pool),
		Counter:     string(d.Counter),
		Threshold:   d.Threshold,
		SortOrder:   order,
	}
}
