package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/adapter/queue"
	"github.com/arialabs/aria/internal/domain"
	"github.com/arialabs/aria/internal/ports"
)

// TopicCommandExecuted carries executed commands from voice sessions to the
// persistence worker.
const TopicCommandExecuted = "assistant.command.executed"

const defaultListLimit = 50

var ErrEmptyCommand = errors.New("command must not be empty")

type commandMessage struct {
	UserID    string    `json:"user_id"`
	Command   string    `json:"command"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Service records executed commands. The voice path publishes to the queue
// and a worker persists off the hot path; the REST path persists directly.
type Service struct {
	repo  ports.HistoryRepository
	queue queue.MessageQueue
	log   *zap.Logger
}

func NewService(repo ports.HistoryRepository, mq queue.MessageQueue, log *zap.Logger) *Service {
	return &Service{
		repo:  repo,
		queue: mq,
		log:   log,
	}
}

// Record publishes an executed command for asynchronous persistence. Falls
// back to a synchronous write when no queue is configured.
func (s *Service) Record(ctx context.Context, userID, command, response string) error {
	if command == "" {
		return ErrEmptyCommand
	}

	if s.queue == nil {
		_, err := s.Add(ctx, userID, command, response)
		return err
	}

	msg := commandMessage{
		UserID:    userID,
		Command:   command,
		Response:  response,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.queue.Publish(TopicCommandExecuted, data)
}

// Add persists a record synchronously and returns it.
func (s *Service) Add(ctx context.Context, userID, command, response string) (*domain.CommandRecord, error) {
	if command == "" {
		return nil, ErrEmptyCommand
	}

	record := &domain.CommandRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Command:   command,
		Response:  response,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// List returns the most recent records for a user, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]domain.CommandRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.FindByUserID(ctx, userID, limit)
}

// StartWorker subscribes to the command topic and persists incoming records.
// Returns immediately; the subscription lives until the queue closes.
func (s *Service) StartWorker() error {
	if s.queue == nil {
		return nil
	}
	return s.queue.Subscribe(TopicCommandExecuted, func(data []byte) error {
		var msg commandMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn("discarding malformed history message", zap.Error(err))
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		record := &domain.CommandRecord{
			ID:        uuid.NewString(),
			UserID:    msg.UserID,
			Command:   msg.Command,
			Response:  msg.Response,
			CreatedAt: msg.Timestamp,
		}
		if err := s.repo.Save(ctx, record); err != nil {
			s.log.Error("history persistence failed",
				zap.String("user_id", msg.UserID),
				zap.Error(err))
			return err
		}
		return nil
	})
}

// RecorderFor binds the service to one user, giving the interpretation
// pipeline a recorder that does not know about user identity.
func (s *Service) RecorderFor(userID string) ports.HistoryRecorder {
	return &userRecorder{svc: s, userID: userID}
}

type userRecorder struct {
	svc    *Service
	userID string
}

func (r *userRecorder) Record(ctx context.Context, command, response string) error {
	return r.svc.Record(ctx, r.userID, command, response)
}
