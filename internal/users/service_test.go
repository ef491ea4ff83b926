package users

import (
	"context"
	"errors"
	"io"
	"testing"

	"gorm.io/gorm"

	"github.com/shopperssay/backend/pkg/db/models"
	"github.com/shopperssay/backend/pkg/enums"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
	"github.com/shopperssay/backend/pkg/logger"
	"github.com/shopperssay/backend/pkg/pagination"
)

type stubUsersRepo struct {
	byID    map[int64]*models.User
	byEmail map[string]*models.User

	created   *models.User
	createErr error
	updates   map[string]any
	favorites map[int64][]int64
	deleted   []int64
	listRows  []models.User
}

func newStubUsersRepo(users ...*models.User) *stubUsersRepo {
	repo := &stubUsersRepo{
		byID:      map[int64]*models.User{},
		byEmail:   map[string]*models.User{},
		favorites: map[int64][]int64{},
	}
	for _, u := range users {
		repo.byID[u.ID] = u
		repo.byEmail[u.Email] = u
	}
	return repo
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if user.ID == 0 {
		user.ID = int64(len(s.byID) + 1)
	}
	s.created = user
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	s.updates = updates
	u, ok := s.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["name"].(string); ok {
		u.Name = v
	}
	if v, ok := updates["account_type"].(enums.AccountType); ok {
		u.AccountType = v
	}
	return nil
}

func (s *stubUsersRepo) UpdateFavoriteSellers(ctx context.Context, id int64, favorites []int64) error {
	s.favorites[id] = favorites
	if u, ok := s.byID[id]; ok {
		u.FavoriteSellers = favorites
	}
	return nil
}

func (s *stubUsersRepo) List(ctx context.Context, limit int, cursor *pagination.SeqCursor) ([]models.User, error) {
	if len(s.listRows) > limit {
		return s.listRows[:limit], nil
	}
	return s.listRows, nil
}

func (s *stubUsersRepo) Delete(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	delete(s.byID, id)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestLoginCreatesAccount(t *testing.T) {
	repo := newStubUsersRepo()
	svc := newTestService(t, repo)

	dto, created, err := svc.LoginOrCreate(context.Background(), "  Jane.Doe@Example.COM ")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !created {
		t.Fatal("expected account creation")
	}
	if dto.Email != "jane.doe@example.com" {
		t.Fatalf("e-mail must be canonicalized, got %s", dto.Email)
	}
	if dto.Name != "Jane Doe" && dto.Name != "jane doe" {
		t.Fatalf("unexpected derived name %q", dto.Name)
	}
	if dto.AvatarURL == "" {
		t.Fatal("expected seeded avatar")
	}
	if dto.AccountType != enums.AccountTypeUser {
		t.Fatalf("unexpected account type %s", dto.AccountType)
	}
}

func TestLoginReturnsExistingAccount(t *testing.T) {
	existing := &models.User{ID: 5, Email: "jane@example.com", Name: "Jane"}
	repo := newStubUsersRepo(existing)
	svc := newTestService(t, repo)

	dto, created, err := svc.LoginOrCreate(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if created {
		t.Fatal("existing account must not be recreated")
	}
	if dto.ID != 5 {
		t.Fatalf("unexpected user %+v", dto)
	}
	if repo.created != nil {
		t.Fatal("no insert expected")
	}
}

func TestLoginDuplicateInsertFallsBackToFetch(t *testing.T) {
	winner := &models.User{ID: 9, Email: "jane@example.com", Name: "Jane"}
	repo := newStubUsersRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "idx_users_email"`)
	svc := newTestService(t, repo)

	// The winner lands between our failed find and the insert.
	repo.byEmail[winner.Email] = winner
	repo.byID[winner.ID] = winner

	dto, created, err := svc.LoginOrCreate(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if created {
		t.Fatal("losing the insert race must not report creation")
	}
	if dto.ID != 9 {
		t.Fatalf("expected winner's account got %+v", dto)
	}
}

func TestLoginInvalidEmail(t *testing.T) {
	svc := newTestService(t, newStubUsersRepo())

	for _, email := range []string{"", "not-an-email", "@example.com"} {
		_, _, err := svc.LoginOrCreate(context.Background(), email)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("email %q: unexpected error %v", email, err)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	user := &models.User{ID: 5, Email: "jane@example.com", Name: "Jane"}
	repo := newStubUsersRepo(user)
	svc := newTestService(t, repo)

	name := "Jane D"
	accountType := "business"
	dto, err := svc.UpdateProfile(context.Background(), 5, UpdateProfileInput{
		Name:        &name,
		AccountType: &accountType,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dto.Name != "Jane D" {
		t.Fatalf("unexpected name %s", dto.Name)
	}
	if dto.AccountType != enums.AccountTypeBusiness {
		t.Fatalf("unexpected account type %s", dto.AccountType)
	}
}

func TestUpdateProfileUnknownAccountType(t *testing.T) {
	user := &models.User{ID: 5, Email: "jane@example.com", Name: "Jane"}
	svc := newTestService(t, newStubUsersRepo(user))

	bad := "superuser"
	_, err := svc.UpdateProfile(context.Background(), 5, UpdateProfileInput{AccountType: &bad})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestToggleFavoriteSeller(t *testing.T) {
	buyer := &models.User{ID: 5, Email: "jane@example.com"}
	seller := &models.User{ID: 7, Email: "seller@example.com"}
	repo := newStubUsersRepo(buyer, seller)
	svc := newTestService(t, repo)

	result, err := svc.ToggleFavoriteSeller(context.Background(), 5, 7)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !result.Favorite {
		t.Fatal("first toggle must add the favorite")
	}
	if got := repo.favorites[5]; len(got) != 1 || got[0] != 7 {
		t.Fatalf("unexpected favorites %v", got)
	}

	result, err = svc.ToggleFavoriteSeller(context.Background(), 5, 7)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.Favorite {
		t.Fatal("second toggle must remove the favorite")
	}
	if got := repo.favorites[5]; len(got) != 0 {
		t.Fatalf("unexpected favorites %v", got)
	}
}

func TestToggleFavoriteSellerSelf(t *testing.T) {
	buyer := &models.User{ID: 5, Email: "jane@example.com"}
	svc := newTestService(t, newStubUsersRepo(buyer))

	_, err := svc.ToggleFavoriteSeller(context.Background(), 5, 5)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestToggleFavoriteSellerMissing(t *testing.T) {
	buyer := &models.User{ID: 5, Email: "jane@example.com"}
	svc := newTestService(t, newStubUsersRepo(buyer))

	_, err := svc.ToggleFavoriteSeller(context.Background(), 5, 404)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	user := &models.User{ID: 5, Email: "jane@example.com"}
	repo := newStubUsersRepo(user)
	svc := newTestService(t, repo)

	if err := svc.Delete(context.Background(), 5); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != 5 {
		t.Fatalf("unexpected deletes %v", repo.deleted)
	}

	err := svc.Delete(context.Background(), 5)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error %v", err)
	}
}
