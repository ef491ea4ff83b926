package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/shopperssay/backend/pkg/enums"
)

// User represents the canonical identity entity. Accounts are keyed by
// lower-cased e-mail; there is no password column.
type User struct {
	ID              int64             `gorm:"column:id;primaryKey;autoIncrement"`
	Name            string            `gorm:"column:name;not null"`
	Email           string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	AvatarURL       string            `gorm:"column:avatar_url;not null;default:''"`
	AccountType     enums.AccountType `gorm:"column:account_type;not null;default:'user'"`
	Phone           *string           `gorm:"column:phone"`
	Address         *string           `gorm:"column:address"`
	RatingAverage   float64           `gorm:"column:rating_average;not null;default:0"`
	RatingCount     int               `gorm:"column:rating_count;not null;default:0"`
	FavoriteSellers pq.Int64Array     `gorm:"column:favorite_sellers;type:bigint[];not null;default:ARRAY[]::bigint[]"`
	IsAdmin         bool              `gorm:"column:is_admin;not null;default:false"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
