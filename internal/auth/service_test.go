package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/shopcartlabs/shopcart-backend/pkg/auth"
	"github.com/shopcartlabs/shopcart-backend/pkg/auth/session"
	"github.com/shopcartlabs/shopcart-backend/pkg/config"
	"github.com/shopcartlabs/shopcart-backend/pkg/db/models"
	"github.com/shopcartlabs/shopcart-backend/pkg/enums"
	pkgerrors "github.com/shopcartlabs/shopcart-backend/pkg/errors"
	"github.com/shopcartlabs/shopcart-backend/pkg/security"
)

func TestServiceLoginSuccess(t *testing.T) {
	password := "customer-secret"
	hashed := mustHashPassword(t, password)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "shopper@example.com",
		PasswordHash: hashed,
		Name:         "Shopper",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, sessionMgr, err := buildTestService(user, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Shopper@Example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role claim, got %s", claims.Role)
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
	if sessionMgr.generatedFor != claims.ID {
		t.Fatalf("refresh token not keyed to jti")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("expected user dto in response")
	}
}

func TestServiceLoginUniformFailures(t *testing.T) {
	password := "right-password"
	hashed := mustHashPassword(t, password)
	cfg := testJWTConfig()

	cases := []struct {
		name     string
		user     *models.User
		repoErr  error
		password string
	}{
		{
			name:     "unknown email",
			repoErr:  gorm.ErrRecordNotFound,
			password: password,
		},
		{
			name: "wrong password",
			user: &models.User{
				ID:           uuid.New(),
				Email:        "shopper@example.com",
				PasswordHash: hashed,
				Role:         enums.UserRoleCustomer,
				IsActive:     true,
			},
			password: "wrong-password",
		},
		{
			name: "inactive account",
			user: &models.User{
				ID:           uuid.New(),
				Email:        "shopper@example.com",
				PasswordHash: hashed,
				Role:         enums.UserRoleCustomer,
				IsActive:     false,
			},
			password: password,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			userRepo := &stubUserRepo{user: tc.user, err: tc.repoErr}
			svc, err := NewService(ServiceParams{
				UserRepo:       userRepo,
				SessionManager: &stubSessionManager{refreshToken: "refresh-token"},
				JWTConfig:      cfg,
			})
			if err != nil {
				t.Fatalf("build service: %v", err)
			}

			_, err = svc.Login(context.Background(), LoginRequest{
				Email:    "shopper@example.com",
				Password: tc.password,
			})
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized error, got %v", err)
			}
			if typed.Message() != invalidCredentialsMessage {
				t.Fatalf("expected uniform message, got %q", typed.Message())
			}
		})
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	accessID := session.NewAccessID()

	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   enums.UserRoleCustomer,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	sessionMgr := &stubSessionManager{
		refreshToken:   "stored-token",
		rotateAccessID: "new-access-id",
		rotateToken:    "new-refresh-token",
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{},
		SessionManager: sessionMgr,
		JWTConfig:      cfg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "stored-token",
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.RefreshToken != "new-refresh-token" {
		t.Fatalf("expected rotated refresh token, got %q", resp.RefreshToken)
	}
	if sessionMgr.rotatedFrom != accessID {
		t.Fatalf("rotate not called with old jti")
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated access token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("rotated token lost user id")
	}
	if claims.ID != "new-access-id" {
		t.Fatalf("rotated token jti mismatch, got %s", claims.ID)
	}
}

func TestServiceRefreshInvalidToken(t *testing.T) {
	cfg := testJWTConfig()
	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{},
		SessionManager: &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken},
		JWTConfig:      cfg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "tampered",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLogout(t *testing.T) {
	sessionMgr := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{},
		SessionManager: sessionMgr,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if err := svc.Logout(context.Background(), "access-42"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessionMgr.revoked != "access-42" {
		t.Fatalf("expected revoke for access id")
	}

	if err := svc.Logout(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "shopcart",
		ExpirationMinutes: 30,
	}
}

func buildTestService(user *models.User, jwtCfg config.JWTConfig) (Service, *stubSessionManager, error) {
	userRepo := &stubUserRepo{user: user}
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionMgr,
		JWTConfig:      jwtCfg,
	})
	return svc, sessionMgr, err
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSessionManager struct {
	refreshToken   string
	generatedFor   string
	rotateAccessID string
	rotateToken    string
	rotatedFrom    string
	rotateErr      error
	revoked        string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generatedFor = accessID
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	s.rotatedFrom = oldAccessID
	return s.rotateAccessID, s.rotateToken, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}
