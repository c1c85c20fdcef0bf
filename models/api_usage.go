// models/api_usage.go - AI analysis quota tracking
package models

// APIUsage accumulates generative-AI calls and cost for one KST date across
// all users. Date is a YYYY-MM-DD string so rows align with the club's
// calendar regardless of server timezone.
type APIUsage struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Date         string  `json:"date" gorm:"uniqueIndex;not null;size:10"`
	Count        int     `json:"count" gorm:"default:0"`
	InputTokens  int64   `json:"input_tokens" gorm:"default:0"`
	OutputTokens int64   `json:"output_tokens" gorm:"default:0"`
	Cost         float64 `json:"cost" gorm:"default:0"`
}

func (APIUsage) TableName() string {
	return "api_usage"
}

// UserAPIUsage counts one user's AI calls for one KST date.
type UserAPIUsage struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_user_api_usage_user_date"`
	Date   string `json:"date" gorm:"not null;size:10;uniqueIndex:idx_user_api_usage_user_date"`
	Count  int    `json:"count" gorm:"default:0"`
}

func (UserAPIUsage) TableName() string {
	return "user_api_usage"
}
