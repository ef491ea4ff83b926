package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopperssay/backend/internal/auth"
	"github.com/shopperssay/backend/internal/users"
	pkgAuth "github.com/shopperssay/backend/pkg/auth"
	"github.com/shopperssay/backend/pkg/config"
	"github.com/shopperssay/backend/pkg/enums"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
)

type stubAuthService struct {
	resp      *auth.LoginResponse
	loginErr  error
	logoutErr error
	loggedOut []string
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.resp, nil
}

func (s *stubAuthService) Logout(_ context.Context, sessionID string) error {
	if s.logoutErr != nil {
		return s.logoutErr
	}
	s.loggedOut = append(s.loggedOut, sessionID)
	return nil
}

func TestAuthLoginReturnsTokenHeader(t *testing.T) {
	svc := &stubAuthService{resp: &auth.LoginResponse{
		AccessToken: "signed-token",
		User:        &users.UserDTO{ID: 42, Email: "asha@example.com"},
	}}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"asha@example.com"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("X-SS-Token"); got != "signed-token" {
		t.Fatalf("expected token header, got %q", got)
	}
	var payload struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Data.AccessToken != "signed-token" {
		t.Fatalf("expected token in body, got %q", payload.Data.AccessToken)
	}
}

func TestAuthLoginRejectsBadEmail(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"not-an-email"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginRejectsUnknownFields(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@example.com","password":"nope"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginSurfacesServiceError(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeDependency, "session store down")}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@example.com"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestAuthLogoutRevokesSessionFromToken(t *testing.T) {
	jwtCfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 30}
	token, err := pkgAuth.MintAccessToken(jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:      42,
		Email:       "asha@example.com",
		AccountType: enums.AccountTypeUser,
		JTI:         "session-xyz",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	svc := &stubAuthService{}
	handler := AuthLogout(svc, jwtCfg, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "session-xyz" {
		t.Fatalf("expected session-xyz revoked, got %v", svc.loggedOut)
	}
}

func TestAuthLogoutRequiresToken(t *testing.T) {
	jwtCfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 30}
	handler := AuthLogout(&stubAuthService{}, jwtCfg, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
