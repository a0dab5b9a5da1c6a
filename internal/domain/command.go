package domain

import (
	"strings"
	"time"
)

// ActionKind identifies one member of the closed executable-command vocabulary.
type ActionKind string

const (
	ActionOpenSearch ActionKind = "open_search"
	ActionOpenURL    ActionKind = "open_url"
	ActionOpenSite   ActionKind = "open_site"
	ActionNavigate   ActionKind = "navigate"
	ActionScroll     ActionKind = "scroll"
	ActionReload     ActionKind = "reload"
	ActionHistory    ActionKind = "history"
	ActionSay        ActionKind = "say"
	ActionTime       ActionKind = "time"
	ActionDate       ActionKind = "date"
)

const (
	EngineGoogle  = "google"
	EngineYouTube = "youtube"
)

// ActionArgs carries the per-variant arguments. Only the fields relevant to
// the active Kind are populated; the JSON shape matches the wire contract
// between interpretation and the browser executor.
type ActionArgs struct {
	Engine    string `json:"engine,omitempty"`
	Query     string `json:"query,omitempty"`
	URL       string `json:"url,omitempty"`
	Site      string `json:"site,omitempty"`
	Path      string `json:"path,omitempty"`
	Direction string `json:"direction,omitempty"`
	Text      string `json:"text,omitempty"`
}

// Action is a tagged variant over the fixed command vocabulary.
type Action struct {
	Kind ActionKind `json:"action"`
	Args ActionArgs `json:"args"`
}

// Valid reports whether the action tag is a member of the closed vocabulary
// and carries the arguments its variant requires. Used to reject malformed
// remote interpretations before they reach the executor.
func (a Action) Valid() bool {
	switch a.Kind {
	case ActionOpenSearch:
		return (a.Args.Engine == EngineGoogle || a.Args.Engine == EngineYouTube) && a.Args.Query != ""
	case ActionOpenURL:
		return a.Args.URL != ""
	case ActionOpenSite:
		return a.Args.Site != ""
	case ActionNavigate:
		return a.Args.Path != ""
	case ActionScroll:
		switch a.Args.Direction {
		case "down", "up", "top", "bottom":
			return true
		}
		return false
	case ActionHistory:
		return a.Args.Direction == "back" || a.Args.Direction == "forward"
	case ActionSay:
		return a.Args.Text != ""
	case ActionReload, ActionTime, ActionDate:
		return true
	}
	return false
}

// InterpretationSource records which stage of the pipeline produced an action.
// Kept for observability only; nothing downstream branches on it.
type InterpretationSource string

const (
	SourceRemote   InterpretationSource = "remote"
	SourceLocal    InterpretationSource = "local"
	SourceFallback InterpretationSource = "fallback"
)

// InterpretationResult pairs a resolved action with its provenance.
type InterpretationResult struct {
	Action Action
	Source InterpretationSource
	Rule   string // matched rule name for local/fallback results
}

// Utterance is one finalized unit of user speech-to-text. Immutable once
// created by the segmenter.
type Utterance struct {
	Raw        string
	Normalized string
	Locale     string
}

// NewUtterance builds an utterance from raw recognition text.
func NewUtterance(raw, locale string) Utterance {
	return Utterance{
		Raw:        strings.TrimSpace(raw),
		Normalized: strings.ToLower(strings.TrimSpace(raw)),
		Locale:     locale,
	}
}

// Persona is the read-only assistant identity the pipeline consults for
// trigger detection and voice selection. Owned by the profile boundary.
type Persona struct {
	AssistantName string `json:"assistantName"`
	VoiceHint     string `json:"voiceHint"`
	Locale        string `json:"locale"`
}

// VoiceHintFor guesses a synthesis voice from the assistant's name. Names
// ending in a, e or i lean female in the languages we ship; everything else
// gets the male voice. The browser may override with its own voice list.
func VoiceHintFor(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "female"
	}
	runes := []rune(name)
	switch runes[len(runes)-1] {
	case 'a', 'e', 'i':
		return "female"
	}
	return "male"
}

// CommandRecord is one executed (command, response) pair in a user's history.
type CommandRecord struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	Command   string    `json:"command"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"timestamp"`
}
