package profile

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/domain"
	"github.com/arialabs/aria/internal/ports"
)

var ErrUserNotFound = errors.New("user not found")

const (
	personaCacheTTL = 10 * time.Minute
	defaultName     = "Aria"
	defaultLocale   = "en-US"
)

// Service owns the assistant identity and setup state of a user. Persona
// reads are cached; any profile write invalidates the cache and pushes the
// fresh persona to live sessions.
type Service struct {
	userRepo ports.UserRepository
	cache    ports.Cache
	notifier ports.PersonaNotifier
	log      *zap.Logger
}

func NewService(userRepo ports.UserRepository, cache ports.Cache, notifier ports.PersonaNotifier, log *zap.Logger) ports.ProfileService {
	return &Service{
		userRepo: userRepo,
		cache:    cache,
		notifier: notifier,
		log:      log,
	}
}

func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) UpdateAssistant(ctx context.Context, userID, assistantName string) (*domain.User, error) {
	return s.update(ctx, userID, assistantName, "")
}

func (s *Service) UpdateProfile(ctx context.Context, userID, assistantName, imagePath string) (*domain.User, error) {
	return s.update(ctx, userID, assistantName, imagePath)
}

func (s *Service) update(ctx context.Context, userID, assistantName, imagePath string) (*domain.User, error) {
	user, err := s.GetCurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(assistantName); name != "" {
		user.AssistantName = name
	}
	if imagePath != "" {
		user.ImagePath = imagePath
	}
	// Setup is complete once the assistant has both a name and a face.
	user.HasCompletedSetup = user.AssistantName != "" && user.ImagePath != ""
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.invalidatePersona(ctx, userID)
	persona := s.personaOf(user)
	if s.notifier != nil {
		s.notifier.NotifyPersona(userID, persona)
	}

	s.log.Info("profile updated",
		zap.String("user_id", userID),
		zap.Bool("setup_complete", user.HasCompletedSetup))
	return user, nil
}

func (s *Service) Persona(ctx context.Context, userID string) (domain.Persona, error) {
	cacheKey := "persona:" + userID
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var persona domain.Persona
		if err := json.Unmarshal([]byte(cached), &persona); err == nil {
			return persona, nil
		}
	}

	user, err := s.GetCurrentUser(ctx, userID)
	if err != nil {
		return domain.Persona{}, err
	}

	persona := s.personaOf(user)
	if data, err := json.Marshal(persona); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(data), personaCacheTTL); err != nil {
			s.log.Debug("persona cache write failed", zap.Error(err))
		}
	}
	return persona, nil
}

func (s *Service) personaOf(user *domain.User) domain.Persona {
	persona := domain.Persona{
		AssistantName: user.AssistantName,
		Locale:        user.PreferredLanguage,
	}
	if persona.AssistantName == "" {
		persona.AssistantName = defaultName
	}
	if persona.Locale == "" {
		persona.Locale = defaultLocale
	}
	persona.VoiceHint = domain.VoiceHintFor(persona.AssistantName)
	return persona
}

func (s *Service) invalidatePersona(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, "persona:"+userID); err != nil {
		s.log.Debug("persona cache invalidation failed", zap.Error(err))
	}
}
