package users

import (
	"time"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
)

// UserDTO is the transport shape of an account.
type UserDTO struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	AvatarURL       string            `json:"avatar_url"`
	AccountType     enums.AccountType `json:"account_type"`
	Phone           *string           `json:"phone,omitempty"`
	Address         *string           `json:"address,omitempty"`
	RatingAverage   float64           `json:"rating_average"`
	RatingCount     int               `json:"rating_count"`
	FavoriteSellers []int64           `json:"favorite_sellers"`
	IsAdmin         bool              `json:"is_admin"`
	CreatedAt       time.Time         `json:"created_at"`
}

// UpdateProfileInput carries partial profile edits; nil fields are untouched.
type UpdateProfileInput struct {
	Name        *string
	Phone       *string
	Address     *string
	AccountType *string
	AvatarURL   *string
}

// UserList is one page of accounts for the admin surface.
type UserList struct {
	Items      []UserDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// FavoriteToggleResult reports the outcome of a favorite-seller toggle.
type FavoriteToggleResult struct {
	SellerID int64 `json:"seller_id"`
	Favorite bool  `json:"favorite"`
}

func toUserDTO(u models.User) UserDTO {
	favorites := make([]int64, len(u.FavoriteSellers))
	copy(favorites, u.FavoriteSellers)

	return UserDTO{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		AvatarURL:       u.AvatarURL,
		AccountType:     u.AccountType,
		Phone:           u.Phone,
		Address:         u.Address,
		RatingAverage:   u.RatingAverage,
		RatingCount:     u.RatingCount,
		FavoriteSellers: favorites,
		IsAdmin:         u.IsAdmin,
		CreatedAt:       u.CreatedAt,
	}
}
