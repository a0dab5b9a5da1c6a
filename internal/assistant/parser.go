package assistant

import (
	"regexp"
	"strings"

	"github.com/arialabs/aria/internal/domain"
)

// Rule is a single deterministic parse rule. Rules are tried in order and the
// first match wins, so more specific phrasings must come before broader ones.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Build   func(m []string) domain.Action
}

const fileAccessRefusal = "I cannot access local files from the browser."

// Rules is the ordered rule table used when the remote interpreter is
// unavailable or returns an unusable result. Ordering matters: engine-scoped
// searches before generic search, site shortcuts before generic open, the
// local-file refusal before the catch-all.
var Rules = []Rule{
	{
		Name:    "youtube_search",
		Pattern: regexp.MustCompile(`^(?:open\s+)?youtube(?:\s+and)?\s+search(?:\s+for)?\s+(.+)$`),
		Build: func(m []string) domain.Action {
			return searchAction(domain.EngineYouTube, m[1])
		},
	},
	{
		Name:    "search_youtube_for",
		Pattern: regexp.MustCompile(`^search\s+youtube\s+for\s+(.+)$`),
		Build: func(m []string) domain.Action {
			return searchAction(domain.EngineYouTube, m[1])
		},
	},
	{
		Name:    "search_google_for",
		Pattern: regexp.MustCompile(`^search\s+google\s+for\s+(.+)$`),
		Build: func(m []string) domain.Action {
			return searchAction(domain.EngineGoogle, m[1])
		},
	},
	{
		Name:    "youtube_query",
		Pattern: regexp.MustCompile(`^youtube\s+(.+)$`),
		Build: func(m []string) domain.Action {
			return searchAction(domain.EngineYouTube, m[1])
		},
	},
	{
		Name:    "google_query",
		Pattern: regexp.MustCompile(`^google\s+(.+)$`),
		Build: func(m []string) domain.Action {
			return searchAction(domain.EngineGoogle, m[1])
		},
	},
	{
		Name:    "generic_search",
		Pattern: regexp.MustCompile(`^search\s+(?:for\s+)?(.+)$`),
		Build: func(m []string) domain.Action {
			return searchAction(domain.EngineGoogle, m[1])
		},
	},
	{
		Name:    "open_site",
		Pattern: regexp.MustCompile(`^(?:open|go\s+to)\s+(facebook|gmail|github|youtube)$`),
		Build: func(m []string) domain.Action {
			return domain.Action{Kind: domain.ActionOpenSite, Args: domain.ActionArgs{Site: m[1]}}
		},
	},
	{
		Name:    "navigate_route",
		Pattern: regexp.MustCompile(`^(?:(?:open|go\s+to|navigate\s+to)\s+)?(?:the\s+)?(dashboard|home|homepage|login|setup|customize|customise|settings?)(?:\s+page)?$`),
		Build: func(m []string) domain.Action {
			path, _ := ResolveRoute(m[1])
			return domain.Action{Kind: domain.ActionNavigate, Args: domain.ActionArgs{Path: path}}
		},
	},
	{
		Name:    "open_url",
		Pattern: regexp.MustCompile(`^open\s+(\S+)$`),
		Build: func(m []string) domain.Action {
			token := m[1]
			if !strings.Contains(token, ".") {
				return domain.Action{}
			}
			if !strings.HasPrefix(token, "http://") && !strings.HasPrefix(token, "https://") {
				token = "https://" + token
			}
			return domain.Action{Kind: domain.ActionOpenURL, Args: domain.ActionArgs{URL: token}}
		},
	},
	{
		Name:    "scroll_direction",
		Pattern: regexp.MustCompile(`^scroll\s+(down|up)$`),
		Build: func(m []string) domain.Action {
			return domain.Action{Kind: domain.ActionScroll, Args: domain.ActionArgs{Direction: m[1]}}
		},
	},
	{
		Name:    "scroll_edge",
		Pattern: regexp.MustCompile(`^scroll\s+to\s+(?:the\s+)?(top|bottom)$`),
		Build: func(m []string) domain.Action {
			return domain.Action{Kind: domain.ActionScroll, Args: domain.ActionArgs{Direction: m[1]}}
		},
	},
	{
		Name:    "reload",
		Pattern: regexp.MustCompile(`^(?:reload|refresh)(?:\s+the)?(?:\s+page)?$`),
		Build: func(m []string) domain.Action {
			return domain.Action{Kind: domain.ActionReload}
		},
	},
	{
		Name:    "history",
		Pattern: regexp.MustCompile(`^go\s+(back|forward)$`),
		Build: func(m []string) domain.Action {
			return domain.Action{Kind: domain.ActionHistory, Args: domain.ActionArgs{Direction: m[1]}}
		},
	},
	{
		Name:    "say",
		Pattern: regexp.MustCompile(`^say\s+(.+)$`),
		Build: func(m []string) domain.Action {
			return domain.Action{Kind: domain.ActionSay, Args: domain.ActionArgs{Text: m[1]}}
		},
	},
	{
		Name:    "time",
		Pattern: regexp.MustCompile(`^(?:what(?:'s|\s+is)?\s+)?(?:the\s+)?time(?:\s+is\s+it)?\??$`),
		Build: func(m []string) domain.Action {
			return domain.Action{Kind: domain.ActionTime}
		},
	},
	{
		Name:    "date",
		Pattern: regexp.MustCompile(`^(?:what(?:'s|\s+is)?\s+)?(?:the\s+|today'?s\s+)?date(?:\s+is\s+it)?(?:\s+today)?\??$`),
		Build: func(m []string) domain.Action {
			return domain.Action{Kind: domain.ActionDate}
		},
	},
	{
		Name:    "local_file_refusal",
		Pattern: regexp.MustCompile(`^(?:open|show(?:\s+me)?|access)\s+.*\b(?:folders?|director(?:y|ies)|files?|documents|downloads|desktop)\b.*$`),
		Build: func(m []string) domain.Action {
			return domain.Action{Kind: domain.ActionSay, Args: domain.ActionArgs{Text: fileAccessRefusal}}
		},
	},
}

func searchAction(engine, query string) domain.Action {
	return domain.Action{
		Kind: domain.ActionOpenSearch,
		Args: domain.ActionArgs{Engine: engine, Query: strings.TrimSpace(query)},
	}
}

// Parse runs the utterance through the ordered rule table. Every utterance
// produces an action: unmatched text falls through to a Google search, so the
// assistant always has something to do with what it heard.
func Parse(u domain.Utterance) domain.InterpretationResult {
	text := u.Normalized
	for _, rule := range Rules {
		m := rule.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		action := rule.Build(m)
		if action.Kind == "" {
			// The rule matched but declined, e.g. "open something" with no
			// dot in the token. Keep trying the remaining rules.
			continue
		}
		return domain.InterpretationResult{
			Action: action,
			Source: domain.SourceLocal,
			Rule:   rule.Name,
		}
	}
	// The catch-all searches for what the user actually said, original
	// casing intact.
	return domain.InterpretationResult{
		Action: searchAction(domain.EngineGoogle, u.Raw),
		Source: domain.SourceFallback,
		Rule:   "catch_all_search",
	}
}
