// models/team_member.go
package models

import "time"

type TeamMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	TeamID   uint      `json:"team_id" gorm:"not null;uniqueIndex:idx_team_members_user_team"`
	Team     *Team     `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_team_members_user_team"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Alias    *string   `json:"alias,omitempty" gorm:"size:60"`
	JoinedAt time.Time `json:"joined_at" gorm:"not null"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

// DisplayName is the alias when one was assigned (same-name collision),
// otherwise the member's real name.
func (m *TeamMember) DisplayName() string {
	if m.Alias != nil && *m.Alias != "" {
		return *m.Alias
	}
	if m.User != nil {
		return m.User.Name
	}
	return ""
}
