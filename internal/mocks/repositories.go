package mocks

import (
	"context"

	"github.com/arialabs/aria/internal/domain"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	SaveFunc        func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

// MockHistoryRepository is a mock implementation of HistoryRepository
type MockHistoryRepository struct {
	SaveFunc         func(ctx context.Context, record *domain.CommandRecord) error
	FindByUserIDFunc func(ctx context.Context, userID string, limit int) ([]domain.CommandRecord, error)
}

func (m *MockHistoryRepository) Save(ctx context.Context, record *domain.CommandRecord) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, record)
	}
	return nil
}

func (m *MockHistoryRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]domain.CommandRecord, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID, limit)
	}
	return []domain.CommandRecord{}, nil
}
