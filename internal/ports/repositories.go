package ports

import (
	"context"

	"github.com/arialabs/aria/internal/domain"
)

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type HistoryRepository interface {
	Save(ctx context.Context, record *domain.CommandRecord) error
	FindByUserID(ctx context.Context, userID string, limit int) ([]domain.CommandRecord, error)
}
