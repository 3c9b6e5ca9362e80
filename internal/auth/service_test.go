package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jbaptiste/cardfolio-backend/internal/users"
	pkgAuth "github.com/jbaptiste/cardfolio-backend/pkg/auth"
	"github.com/jbaptiste/cardfolio-backend/pkg/auth/session"
	"github.com/jbaptiste/cardfolio-backend/pkg/config"
	"github.com/jbaptiste/cardfolio-backend/pkg/db/models"
	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
	"github.com/jbaptiste/cardfolio-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "cardfolio",
	ExpirationMinutes: 30,
}

func TestServiceRegisterIssuesTokens(t *testing.T) {
	repo := newStubUserRepo()
	svc := buildTestService(t, repo)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "New@Example.com",
		Password:    "long-enough-password",
		DisplayName: "Jean",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", resp)
	}
	if resp.User == nil || resp.User.Email != "new@example.com" {
		t.Fatalf("expected lowercased email, got %+v", resp.User)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != pkgAuth.RoleUser {
		t.Fatalf("expected user role claim, got %s", claims.Role)
	}
}

func TestServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{ID: uuid.New(), Email: "taken@example.com", PasswordHash: "x"})
	svc := buildTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "taken@example.com",
		Password:    "long-enough-password",
		DisplayName: "Jean",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestServiceRegisterShortPassword(t *testing.T) {
	svc := buildTestService(t, newStubUserRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "short@example.com",
		Password:    "short",
		DisplayName: "Jean",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceLoginSuccess(t *testing.T) {
	password := "correct-horse-battery"
	repo := newStubUserRepo()
	repo.add(&models.User{
		ID:           uuid.New(),
		Email:        "jean@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         "user",
	})
	svc := buildTestService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Jean@Example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", resp)
	}
}

func TestServiceLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{
		ID:           uuid.New(),
		Email:        "jean@example.com",
		PasswordHash: mustHashPassword(t, "real-password"),
	})
	svc := buildTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "jean@example.com",
		Password: "wrong-password",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginUnknownEmail(t *testing.T) {
	svc := buildTestService(t, newStubUserRepo())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	password := "correct-horse-battery"
	repo := newStubUserRepo()
	repo.add(&models.User{
		ID:           uuid.New(),
		Email:        "jean@example.com",
		PasswordHash: mustHashPassword(t, password),
	})
	svc := buildTestService(t, repo)

	ctx := context.Background()
	login, err := svc.Login(ctx, LoginRequest{Email: "jean@example.com", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == login.AccessToken {
		t.Fatal("expected a new access token")
	}

	// The old refresh token must be single-use.
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on reuse, got %v", err)
	}
}

func buildTestService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: newStubSessionManager(),
		JWTConfig:      testJWTConfig,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
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
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail: make(map[string]*models.User),
		byID:    make(map[uuid.UUID]*models.User),
	}
}

func (s *stubUserRepo) add(user *models.User) {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	user.ID = uuid.New()
	s.add(user)
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type stubSessionManager struct {
	tokens map[string]string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{tokens: make(map[string]string)}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + uuid.NewString()
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newAccessID := uuid.NewString()
	token := "refresh-" + uuid.NewString()
	s.tokens[newAccessID] = token
	return newAccessID, token, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(s.tokens, accessID)
	return nil
}
