package models

// UserStats holds one row per user; Clicks only ever grows. The row is
// created lazily on the user's first accepted press.
type UserStats struct {
	UserID uint  `gorm:"primaryKey" json:"user_id"`
	User   User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Clicks int64 `gorm:"not null;default:0" json:"clicks"`
}

func (UserStats) TableName() string {
	return "user_stats"
}

// GlobalCounter is a keyed singleton table. The only key in use is
// GlobalTotalKey; its value must equal the sum of all user_stats.clicks.
type GlobalCounter struct {
	Key   string `gorm:"primaryKey;size:32" json:"key"`
	Value int64  `gorm:"not null;default:0" json:"value"`
}

func (GlobalCounter) TableName() string {
	return "globals"
}

const GlobalTotalKey = "total_clicks"
