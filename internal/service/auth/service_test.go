package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/arialabs/aria/internal/domain"
	"github.com/arialabs/aria/internal/mocks"
)

func newTestService(repo *mocks.MockUserRepository) *Service {
	svc := NewService(repo, mocks.NewMockCache(), "test-secret", 7*24*time.Hour, 30*24*time.Hour, zap.NewNop())
	return svc.(*Service)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hashed)
}

func TestRegister_Success(t *testing.T) {
	// Arrange
	var saved *domain.User
	mockRepo := &mocks.MockUserRepository{
		SaveFunc: func(ctx context.Context, user *domain.User) error {
			saved = user
			return nil
		},
	}
	service := newTestService(mockRepo)

	user := &domain.User{
		Name:     "Maria",
		Email:    "Maria@Example.com",
		Password: "secret123",
	}

	// Act
	err := service.Register(context.Background(), user)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if saved == nil {
		t.Fatal("expected user to be saved")
	}
	if saved.Email != "maria@example.com" {
		t.Errorf("email must be normalized, got %q", saved.Email)
	}
	if saved.Password == "secret123" {
		t.Error("password must be hashed before persisting")
	}
	if saved.ID == "" {
		t.Error("expected generated user ID")
	}
}

func TestRegister_ShortPasswordRejected(t *testing.T) {
	mockRepo := &mocks.MockUserRepository{
		SaveFunc: func(ctx context.Context, user *domain.User) error {
			t.Error("save must not be called for weak password")
			return nil
		},
	}
	service := newTestService(mockRepo)

	err := service.Register(context.Background(), &domain.User{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "12345",
	})

	if !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	mockRepo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "existing", Email: email}, nil
		},
	}
	service := newTestService(mockRepo)

	err := service.Register(context.Background(), &domain.User{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "secret123",
	})

	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	hashed := hashPassword(t, "secret123")
	mockRepo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email, Password: hashed}, nil
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
	}
	service := newTestService(mockRepo)

	token, refresh, err := service.Login(context.Background(), "maria@example.com", "secret123")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" || refresh == "" {
		t.Fatal("expected both tokens")
	}

	user, err := service.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("issued token must validate, got %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("expected user-1, got %q", user.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed := hashPassword(t, "secret123")
	mockRepo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email, Password: hashed}, nil
		},
	}
	service := newTestService(mockRepo)

	_, _, err := service.Login(context.Background(), "maria@example.com", "wrong")

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	service := newTestService(&mocks.MockUserRepository{})

	_, _, err := service.Login(context.Background(), "nobody@example.com", "secret123")

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshToken_AccessTokenRejected(t *testing.T) {
	mockRepo := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
	}
	service := newTestService(mockRepo)

	accessToken, err := service.generateAccessToken(&domain.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	_, err = service.RefreshToken(context.Background(), accessToken)

	if err == nil {
		t.Error("access token must not be accepted as a refresh token")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	service := newTestService(&mocks.MockUserRepository{})

	_, err := service.ValidateToken(context.Background(), "not-a-token")

	if err == nil {
		t.Error("expected error for malformed token")
	}
}
