package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/shopperssay/backend/pkg/db"
	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
	"github.com/shopperssay/backend/pkg/logger"
	"github.com/shopperssay/backend/pkg/pagination"
)

// Service exposes account operations.
type Service interface {
	LoginOrCreate(ctx context.Context, email string) (*UserDTO, bool, error)
	Get(ctx context.Context, id int64) (*UserDTO, error)
	UpdateProfile(ctx context.Context, id int64, input UpdateProfileInput) (*UserDTO, error)
	ToggleFavoriteSeller(ctx context.Context, userID, sellerID int64) (*FavoriteToggleResult, error)
	List(ctx context.Context, page pagination.Params) (*UserList, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the accounts service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// LoginOrCreate resolves an account by e-mail, creating one on first contact.
// The bool reports whether a new account was created. Two concurrent first
// logins race on the unique e-mail index; the loser re-fetches.
func (s *service) LoginOrCreate(ctx context.Context, email string) (*UserDTO, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "invalid e-mail address")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		dto := toUserDTO(*existing)
		return &dto, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}

	user := &models.User{
		Name:            nameFromEmail(email),
		Email:           email,
		AvatarURL:       avatarFromEmail(email),
		AccountType:     enums.AccountTypeUser,
		FavoriteSellers: []int64{},
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			winner, findErr := s.repo.FindByEmail(ctx, email)
			if findErr != nil {
				return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "refetch user after duplicate insert")
			}
			dto := toUserDTO(*winner)
			return &dto, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	ctx = s.logg.WithUserID(ctx, created.ID)
	s.logg.Info(ctx, "account created")

	dto := toUserDTO(*created)
	return &dto, true, nil
}

func (s *service) Get(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(*user)
	return &dto, nil
}

func (s *service) UpdateProfile(ctx context.Context, id int64, input UpdateProfileInput) (*UserDTO, error) {
	if _, err := s.findUser(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
		}
		updates["name"] = name
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*input.AvatarURL)
	}
	if input.AccountType != nil {
		accountType, err := enums.ParseAccountType(strings.TrimSpace(*input.AccountType))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown account type").
				WithDetails(map[string]any{"account_type": *input.AccountType})
		}
		updates["account_type"] = accountType
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
		}
	}

	return s.Get(ctx, id)
}

// ToggleFavoriteSeller adds or removes a seller from the caller's favorites
// and reports the resulting membership.
func (s *service) ToggleFavoriteSeller(ctx context.Context, userID, sellerID int64) (*FavoriteToggleResult, error) {
	if sellerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if sellerID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot favorite yourself")
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findUser(ctx, sellerID); err != nil {
		return nil, err
	}

	favorites := make([]int64, 0, len(user.FavoriteSellers)+1)
	removed := false
	for _, id := range user.FavoriteSellers {
		if id == sellerID {
			removed = true
			continue
		}
		favorites = append(favorites, id)
	}
	if !removed {
		favorites = append(favorites, sellerID)
	}

	if err := s.repo.UpdateFavoriteSellers(ctx, userID, favorites); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update favorite sellers")
	}

	return &FavoriteToggleResult{
		SellerID: sellerID,
		Favorite: !removed,
	}, nil
}

func (s *service) List(ctx context.Context, page pagination.Params) (*UserList, error) {
	cursor, err := pagination.ParseSeqCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(page.Limit)

	rows, err := s.repo.List(ctx, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	list := &UserList{Items: make([]UserDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeSeqCursor(pagination.SeqCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Items = append(list.Items, toUserDTO(row))
	}
	return list, nil
}

// Delete removes the account outright. Listings are not cascaded; catalog
// readers filter rows whose seller is gone.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}

	ctx = s.logg.WithUserID(ctx, id)
	s.logg.Info(ctx, "account deleted")
	return nil
}

func (s *service) findUser(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

// nameFromEmail turns "jane.d_oe@example.com" into "jane d oe". Good enough
// for a first-login placeholder the user can edit.
func nameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	replacer := strings.NewReplacer(".", " ", "_", " ", "-", " ")
	return strings.Join(strings.Fields(replacer.Replace(local)), " ")
}

func avatarFromEmail(email string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/200", email)
}
