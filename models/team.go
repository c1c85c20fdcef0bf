// models/team.go
package models

import "time"

type Team struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"not null;size:100"`
	Code      string       `json:"code" gorm:"unique;size:10"`
	OwnerID   uint         `json:"owner_id" gorm:"not null"`
	Owner     *User        `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Managers  []User       `json:"managers,omitempty" gorm:"many2many:team_managers;"`
	Members   []TeamMember `json:"members,omitempty" gorm:"foreignKey:TeamID"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Team) TableName() string {
	return "teams"
}

// IsManager reports whether the given user is a designated manager.
// The owner is not implicitly a manager; check OwnerID separately.
func (t *Team) IsManager(userID uint) bool {
	for _, m := range t.Managers {
		if m.ID == userID {
			return true
		}
	}
	return false
}
