package service

import (
	"context"
	"testing"
	"time"

	autherrors "eventbook/internal/auth/errors"
	"eventbook/pkg/config"
	apperrors "eventbook/pkg/errors"
	"eventbook/pkg/logger"
	"eventbook/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	createFunc      func(ctx context.Context, user *model.User) error
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "68b000000000000000000010"
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, autherrors.ErrNotFound
}

func (m *mockUserRepository) EnsureIndexes(context.Context) error {
	return nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	return &config.Config{
		Log:       log,
		JWTSecret: "test-secret",
		JWTTTL:    720 * time.Hour,
	}
}

func TestRegister_HashesPasswordAndIssuesToken(t *testing.T) {
	var created *model.User
	repo := &mockUserRepository{
		createFunc: func(_ context.Context, user *model.User) error {
			user.ID = "68b000000000000000000010"
			created = user
			return nil
		},
	}
	svc := &authService{repo: repo, cfg: testConfig()}

	result, err := svc.Register(context.Background(), "Guest", "Guest@Example.com", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected user to be created")
	}
	if created.Email != "guest@example.com" {
		t.Errorf("expected normalized email, got %q", created.Email)
	}
	if created.PasswordHash == "secret123" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(result.Token, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims["sub"] != "68b000000000000000000010" {
		t.Errorf("expected subject to be user id, got %v", claims["sub"])
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := &authService{repo: &mockUserRepository{}, cfg: testConfig()}

	_, err := svc.Register(context.Background(), "Guest", "guest@example.com", "abc")
	if err == nil {
		t.Fatal("expected error for short password")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepository{
		createFunc: func(context.Context, *model.User) error {
			return autherrors.ErrDuplicateEmail
		},
	}
	svc := &authService{repo: repo, cfg: testConfig()}

	_, err := svc.Register(context.Background(), "Guest", "guest@example.com", "secret123")
	if err == nil {
		t.Fatal("expected error for duplicate email")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
}

func TestLogin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	repo := &mockUserRepository{
		findByEmailFunc: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:           "68b000000000000000000010",
				Email:        email,
				PasswordHash: string(hash),
			}, nil
		},
	}
	svc := &authService{repo: repo, cfg: testConfig()}

	result, err := svc.Login(context.Background(), "guest@example.com", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token == "" {
		t.Error("expected token in result")
	}
	if result.User.ID != "68b000000000000000000010" {
		t.Errorf("expected user in result, got %q", result.User.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	repo := &mockUserRepository{
		findByEmailFunc: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{Email: email, PasswordHash: string(hash)}, nil
		},
	}
	svc := &authService{repo: repo, cfg: testConfig()}

	_, err = svc.Login(context.Background(), "guest@example.com", "wrong-password")
	if err == nil {
		t.Fatal("expected error for wrong password")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUnauthorized {
		t.Errorf("expected code %s, got %s", apperrors.CodeUnauthorized, appErr.Code)
	}
}

func TestLogin_UnknownEmailSameResponse(t *testing.T) {
	svc := &authService{repo: &mockUserRepository{}, cfg: testConfig()}

	_, err := svc.Login(context.Background(), "nobody@example.com", "secret123")
	if err == nil {
		t.Fatal("expected error for unknown email")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUnauthorized {
		t.Errorf("expected code %s, got %s", apperrors.CodeUnauthorized, appErr.Code)
	}
	if appErr.Message != "Invalid credentials" {
		t.Errorf("expected generic message, got %q", appErr.Message)
	}
}
