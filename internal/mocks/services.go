package mocks

import (
	"context"
	"sync"

	"github.com/arialabs/aria/internal/domain"
)

// MockInterpreter is a mock implementation of Interpreter interface
type MockInterpreter struct {
	InterpretFunc func(ctx context.Context, text, locale string) (*domain.Action, error)
	Calls         []string
}

func (m *MockInterpreter) Interpret(ctx context.Context, text, locale string) (*domain.Action, error) {
	m.Calls = append(m.Calls, text)
	if m.InterpretFunc != nil {
		return m.InterpretFunc(ctx, text, locale)
	}
	return nil, nil
}

// MockConversationalist is a mock implementation of Conversationalist interface
type MockConversationalist struct {
	ChatFunc func(ctx context.Context, message, locale string) (string, error)
}

func (m *MockConversationalist) Chat(ctx context.Context, message, locale string) (string, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, message, locale)
	}
	return "", nil
}

// MockDispatcher records dispatched actions for assertion
type MockDispatcher struct {
	mu           sync.Mutex
	Dispatched   []domain.Action
	DispatchFunc func(action domain.Action) error
}

func (m *MockDispatcher) Dispatch(action domain.Action) error {
	m.mu.Lock()
	m.Dispatched = append(m.Dispatched, action)
	m.mu.Unlock()
	if m.DispatchFunc != nil {
		return m.DispatchFunc(action)
	}
	return nil
}

func (m *MockDispatcher) Last() (domain.Action, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Dispatched) == 0 {
		return domain.Action{}, false
	}
	return m.Dispatched[len(m.Dispatched)-1], true
}

// MockPersonaSource returns a fixed persona
type MockPersonaSource struct {
	P domain.Persona
}

func (m *MockPersonaSource) Persona() domain.Persona {
	return m.P
}

// MockHistoryRecorder records (command, response) pairs for assertion
type MockHistoryRecorder struct {
	mu         sync.Mutex
	Records    [][2]string
	RecordFunc func(ctx context.Context, command, response string) error
}

func (m *MockHistoryRecorder) Record(ctx context.Context, command, response string) error {
	m.mu.Lock()
	m.Records = append(m.Records, [2]string{command, response})
	m.mu.Unlock()
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, command, response)
	}
	return nil
}

func (m *MockHistoryRecorder) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Records)
}
