// models/game_state.go - Per-user game state persistence
package models

import (
	"time"

	"gorm.io/datatypes"
)

// GameStateRecord stores a user's serialized game state. Version is bumped
// on every write.
type GameStateRecord struct {
	UserID    uint           `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Data      datatypes.JSON `json:"data" gorm:"not null"`
	Version   int            `json:"version" gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (GameStateRecord) TableName() string {
	return "game_states"
}
