package assistant

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/domain"
	"github.com/arialabs/aria/internal/ports"
)

// Executor turns a resolved action into a browser dispatch plus a spoken
// response line. The dispatcher delivers the action to the client; the
// executor only decides what the assistant says about it.
type Executor struct {
	dispatcher ports.Dispatcher
	now        func() time.Time
	log        *zap.Logger
}

func NewExecutor(dispatcher ports.Dispatcher, log *zap.Logger) *Executor {
	return &Executor{
		dispatcher: dispatcher,
		now:        time.Now,
		log:        log,
	}
}

// Execute dispatches the action and returns the spoken response. A dispatch
// failure is returned as-is; no response is produced for an action the client
// never received.
func (e *Executor) Execute(action domain.Action) (string, error) {
	if err := e.dispatcher.Dispatch(action); err != nil {
		e.log.Error("action dispatch failed",
			zap.String("action", string(action.Kind)),
			zap.Error(err))
		return "", fmt.Errorf("dispatch %s: %w", action.Kind, err)
	}
	return e.respond(action), nil
}

func (e *Executor) respond(action domain.Action) string {
	switch action.Kind {
	case domain.ActionOpenSearch:
		if action.Args.Engine == domain.EngineYouTube {
			return fmt.Sprintf("Searching YouTube for %s", action.Args.Query)
		}
		return fmt.Sprintf("Searching Google for %s", action.Args.Query)

	case domain.ActionOpenURL:
		return fmt.Sprintf("Opening %s", action.Args.URL)

	case domain.ActionOpenSite:
		if entry, ok := ResolveSite(action.Args.Site); ok {
			return fmt.Sprintf("Opening %s", entry.Display)
		}
		return fmt.Sprintf("Opening %s", action.Args.Site)

	case domain.ActionNavigate:
		path, _ := ResolveRoute(action.Args.Path)
		return fmt.Sprintf("Navigating to %s", path)

	case domain.ActionScroll:
		switch action.Args.Direction {
		case "top":
			return "Scrolling to the top"
		case "bottom":
			return "Scrolling to the bottom"
		default:
			return fmt.Sprintf("Scrolling %s", action.Args.Direction)
		}

	case domain.ActionReload:
		return "Reloading the page"

	case domain.ActionHistory:
		if action.Args.Direction == "forward" {
			return "Going forward"
		}
		return "Going back"

	case domain.ActionSay:
		return action.Args.Text

	case domain.ActionTime:
		return fmt.Sprintf("The time is %s", e.now().Format("3:04 PM"))

	case domain.ActionDate:
		return fmt.Sprintf("Today's date is %s", e.now().Format("Monday, January 2, 2006"))
	}

	return ""
}
