package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arialabs/aria/internal/domain"
	"github.com/arialabs/aria/internal/observability/telemetry"
	"github.com/arialabs/aria/internal/ports"
)

type HistoryRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewHistoryRepository(db *gorm.DB, log *zap.Logger) ports.HistoryRepository {
	return &HistoryRepository{
		db:  db,
		log: log,
	}
}

func (r *HistoryRepository) Save(ctx context.Context, record *domain.CommandRecord) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Create(record).Error
	telemetry.DatabaseLatency.Observe(time.Since(start).Seconds())
	return err
}

func (r *HistoryRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]domain.CommandRecord, error) {
	var records []domain.CommandRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
