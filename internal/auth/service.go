package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/shopperssay/backend/internal/users"
	pkgAuth "github.com/shopperssay/backend/pkg/auth"
	"github.com/shopperssay/backend/pkg/auth/session"
	"github.com/shopperssay/backend/pkg/config"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
	"github.com/shopperssay/backend/pkg/logger"
)

// LoginRequest is the login payload. Accounts are keyed by e-mail alone;
// an unknown address creates a fresh account.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginResponse carries the minted token and the resolved account.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	Created     bool           `json:"created"`
	User        *users.UserDTO `json:"user"`
}

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
}

type accountResolver interface {
	LoginOrCreate(ctx context.Context, email string) (*users.UserDTO, bool, error)
}

type sessionManager interface {
	Create(ctx context.Context, sessionID string, userID int64) error
	Revoke(ctx context.Context, sessionID string) error
}

type service struct {
	accounts accountResolver
	session  sessionManager
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Accounts  accountResolver
	Session   sessionManager
	JWTConfig config.JWTConfig
	Logger    *logger.Logger
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts service is required")
	}
	if params.Session == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		accounts: params.Accounts,
		session:  params.Session,
		jwtCfg:   params.JWTConfig,
		logg:     params.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, created, err := s.accounts.LoginOrCreate(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	sessionID := session.NewSessionID()
	payload := pkgAuth.AccessTokenPayload{
		UserID:      user.ID,
		Email:       user.Email,
		AccountType: user.AccountType,
		IsAdmin:     user.IsAdmin,
		JTI:         sessionID,
	}
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.session.Create(ctx, sessionID, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	logCtx := s.logg.WithUserID(ctx, user.ID)
	if created {
		s.logg.Info(s.logg.WithField(logCtx, "event", "auth.account_created"), "account created on first login")
	}
	s.logg.Info(logCtx, "login succeeded")

	return &LoginResponse{
		AccessToken: accessToken,
		Created:     created,
		User:        user,
	}, nil
}

// Logout revokes the server-side session so the token dies immediately.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.session.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}
