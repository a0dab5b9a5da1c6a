package profile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/domain"
	"github.com/arialabs/aria/internal/mocks"
)

type notifierSpy struct {
	mu       sync.Mutex
	notified []domain.Persona
}

func (n *notifierSpy) NotifyPersona(userID string, persona domain.Persona) {
	n.mu.Lock()
	n.notified = append(n.notified, persona)
	n.mu.Unlock()
}

func userStore(initial *domain.User) *mocks.MockUserRepository {
	current := initial
	return &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			if current != nil && current.ID == id {
				copied := *current
				return &copied, nil
			}
			return nil, nil
		},
		SaveFunc: func(ctx context.Context, user *domain.User) error {
			current = user
			return nil
		},
	}
}

func TestUpdateProfile_CompletesSetupWithNameAndImage(t *testing.T) {
	repo := userStore(&domain.User{ID: "user-1", PreferredLanguage: "en-US"})
	notifier := &notifierSpy{}
	service := NewService(repo, mocks.NewMockCache(), notifier, zap.NewNop())

	user, err := service.UpdateProfile(context.Background(), "user-1", "Jarvis", "/uploads/abc.png")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !user.HasCompletedSetup {
		t.Error("setup must be complete with both name and image")
	}
	if len(notifier.notified) != 1 {
		t.Fatalf("expected 1 persona notification, got %d", len(notifier.notified))
	}
	if notifier.notified[0].AssistantName != "Jarvis" {
		t.Errorf("expected notified name Jarvis, got %q", notifier.notified[0].AssistantName)
	}
}

func TestUpdateAssistant_NameAloneDoesNotCompleteSetup(t *testing.T) {
	repo := userStore(&domain.User{ID: "user-1"})
	service := NewService(repo, mocks.NewMockCache(), &notifierSpy{}, zap.NewNop())

	user, err := service.UpdateAssistant(context.Background(), "user-1", "Jarvis")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.HasCompletedSetup {
		t.Error("setup must not be complete without an image")
	}
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	service := NewService(userStore(nil), mocks.NewMockCache(), &notifierSpy{}, zap.NewNop())

	_, err := service.UpdateProfile(context.Background(), "ghost", "Jarvis", "")

	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPersona_DefaultsWhenUnset(t *testing.T) {
	repo := userStore(&domain.User{ID: "user-1"})
	service := NewService(repo, mocks.NewMockCache(), &notifierSpy{}, zap.NewNop())

	persona, err := service.Persona(context.Background(), "user-1")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if persona.AssistantName != "Aria" {
		t.Errorf("expected default name Aria, got %q", persona.AssistantName)
	}
	if persona.Locale != "en-US" {
		t.Errorf("expected default locale en-US, got %q", persona.Locale)
	}
}

func TestPersona_VoiceHintFollowsName(t *testing.T) {
	cases := []struct {
		name string
		hint string
	}{
		{"Aria", "female"},
		{"Friday", "male"},
		{"Jarvis", "male"},
		{"Chloe", "female"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := userStore(&domain.User{ID: "user-1", AssistantName: tc.name, PreferredLanguage: "en-US"})
			service := NewService(repo, mocks.NewMockCache(), &notifierSpy{}, zap.NewNop())

			persona, err := service.Persona(context.Background(), "user-1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if persona.VoiceHint != tc.hint {
				t.Errorf("expected voice hint %q for %s, got %q", tc.hint, tc.name, persona.VoiceHint)
			}
		})
	}
}

func TestPersona_CachedAfterFirstRead(t *testing.T) {
	lookups := 0
	repo := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			lookups++
			return &domain.User{ID: id, AssistantName: "Jarvis", PreferredLanguage: "en-US"}, nil
		},
	}
	service := NewService(repo, mocks.NewMockCache(), &notifierSpy{}, zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := service.Persona(context.Background(), "user-1"); err != nil {
			t.Fatalf("persona read %d: %v", i, err)
		}
	}

	if lookups != 1 {
		t.Errorf("expected 1 repository lookup, got %d", lookups)
	}
}

func TestUpdateProfile_InvalidatesPersonaCache(t *testing.T) {
	repo := userStore(&domain.User{ID: "user-1", AssistantName: "Old", ImagePath: "/uploads/x.png"})
	cache := mocks.NewMockCache()
	service := NewService(repo, cache, &notifierSpy{}, zap.NewNop())

	if _, err := service.Persona(context.Background(), "user-1"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if _, err := service.UpdateAssistant(context.Background(), "user-1", "New"); err != nil {
		t.Fatalf("update: %v", err)
	}

	persona, err := service.Persona(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if persona.AssistantName != "New" {
		t.Errorf("expected fresh persona after update, got %q", persona.AssistantName)
	}
}
