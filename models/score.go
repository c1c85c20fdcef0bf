// models/score.go
package models

import "time"

// Score is a single game result. Exactly one of UserID/GuestName is set:
// member games carry a user id, guest games carry a free-text name.
type Score struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TeamID    uint      `json:"team_id" gorm:"not null;index"`
	Team      *Team     `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	GuestName *string   `json:"guest_name,omitempty" gorm:"size:60;index"`
	Score     int       `json:"score" gorm:"not null"`
	GameDate  time.Time `json:"game_date" gorm:"not null;index"`
	GameType  string    `json:"game_type" gorm:"size:20"`
	Memo      *string   `json:"memo,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Score) TableName() string {
	return "scores"
}

const (
	GameTypeRegular     = "정기전" // weekly club game
	GameTypePickup      = "벙개"  // impromptu game
	GameTypeResident    = "상주"  // house league
	GameTypeInterleague = "교류전" // match against another club
	GameTypeOther       = "기타"
)

// GameTypes lists the recognized categories in display order.
var GameTypes = []string{GameTypeRegular, GameTypePickup, GameTypeResident, GameTypeInterleague, GameTypeOther}

// NormalizeGameType buckets unrecognized or empty values into GameTypeOther
// so that stray strings in old rows never create untracked categories.
func NormalizeGameType(t string) string {
	switch t {
	case GameTypeRegular, GameTypePickup, GameTypeResident, GameTypeInterleague:
		return t
	}
	return GameTypeOther
}

// ValidScore reports whether n is a legal single-game bowling score.
func ValidScore(n int) bool {
	return n >= 0 && n <= 300
}
