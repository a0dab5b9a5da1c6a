package ports

import (
	"context"

	"github.com/arialabs/aria/internal/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, string, error) // token, refresh, err
	Register(ctx context.Context, user *domain.User) error
	RefreshToken(ctx context.Context, token string) (string, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}

type ProfileService interface {
	GetCurrentUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateAssistant(ctx context.Context, userID, assistantName string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID, assistantName, imagePath string) (*domain.User, error)
	Persona(ctx context.Context, userID string) (domain.Persona, error)
}

type HistoryService interface {
	// Record publishes an executed command for asynchronous persistence.
	// Fire and forget from the caller's perspective.
	Record(ctx context.Context, userID, command, response string) error

	// Add persists a record synchronously (thin-client REST path).
	Add(ctx context.Context, userID, command, response string) (*domain.CommandRecord, error)

	List(ctx context.Context, userID string, limit int) ([]domain.CommandRecord, error)
}
