package ports

import (
	"context"

	"github.com/arialabs/aria/internal/domain"
)

// Interpreter is the optional remote natural-language-to-action capability.
// A missing API key, network failure, timeout, or unparseable reply is
// reported as an error and treated by callers as "capability unavailable",
// never as a hard failure.
type Interpreter interface {
	Interpret(ctx context.Context, text, locale string) (*domain.Action, error)
}

// Conversationalist produces free-form reply text for the small set of
// identity questions that get generated prose instead of a structured action.
type Conversationalist interface {
	Chat(ctx context.Context, message, locale string) (string, error)
}

// PersonaSource is a read accessor for the assistant identity of the session
// the pipeline runs in. The pipeline never mutates persona state.
type PersonaSource interface {
	Persona() domain.Persona
}

// Dispatcher delivers a resolved action to the surface that performs the
// browser side effect. The executor dispatches synchronously before
// returning its response text.
type Dispatcher interface {
	Dispatch(action domain.Action) error
}

// HistoryRecorder is the persistence boundary for executed commands as seen
// from inside the interpretation pipeline. Failures are logged by the caller
// and never block the spoken response.
type HistoryRecorder interface {
	Record(ctx context.Context, command, response string) error
}

// PersonaNotifier pushes persona changes to live assistant sessions so a
// rename takes effect without reconnecting.
type PersonaNotifier interface {
	NotifyPersona(userID string, persona domain.Persona)
}
