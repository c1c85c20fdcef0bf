// models/post.go
package models

import "time"

// TeamStorageLimit caps the combined size of board images per team.
const TeamStorageLimit = 10 * 1024 * 1024

type Post struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	TeamID    uint        `json:"team_id" gorm:"not null;index"`
	AuthorID  uint        `json:"author_id" gorm:"not null"`
	Author    *User       `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Title     string      `json:"title" gorm:"not null;size:200"`
	Content   string      `json:"content" gorm:"type:text"`
	Images    []PostImage `json:"images,omitempty" gorm:"foreignKey:PostID"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

type PostImage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	URL       string    `json:"url" gorm:"not null"`
	Size      int64     `json:"size" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostImage) TableName() string {
	return "post_images"
}
