package assistant

import (
	"testing"

	"github.com/arialabs/aria/internal/domain"
)

func parse(t *testing.T, text string) domain.InterpretationResult {
	t.Helper()
	return Parse(domain.NewUtterance(text, "en-US"))
}

func TestParse_SearchRules(t *testing.T) {
	cases := []struct {
		text   string
		engine string
		query  string
	}{
		{"search for cat videos", "google", "cat videos"},
		{"search cat videos", "google", "cat videos"},
		{"google golang generics", "google", "golang generics"},
		{"search google for weather tomorrow", "google", "weather tomorrow"},
		{"youtube search lo-fi beats", "youtube", "lo-fi beats"},
		{"open youtube and search for jazz", "youtube", "jazz"},
		{"search youtube for guitar lessons", "youtube", "guitar lessons"},
		{"youtube piano covers", "youtube", "piano covers"},
	}

	for _, tc := range cases {
		result := parse(t, tc.text)
		if result.Action.Kind != domain.ActionOpenSearch {
			t.Errorf("%q: expected open_search, got %s", tc.text, result.Action.Kind)
			continue
		}
		if result.Action.Args.Engine != tc.engine {
			t.Errorf("%q: expected engine %q, got %q", tc.text, tc.engine, result.Action.Args.Engine)
		}
		if result.Action.Args.Query != tc.query {
			t.Errorf("%q: expected query %q, got %q", tc.text, tc.query, result.Action.Args.Query)
		}
	}
}

func TestParse_EngineRulesBeforeGenericSearch(t *testing.T) {
	// "search youtube for X" must bind to the youtube engine, not become a
	// google search with "youtube for X" as the query.
	result := parse(t, "search youtube for drum solos")

	if result.Action.Args.Engine != domain.EngineYouTube {
		t.Errorf("expected youtube engine, got %q", result.Action.Args.Engine)
	}
	if result.Action.Args.Query != "drum solos" {
		t.Errorf("expected query 'drum solos', got %q", result.Action.Args.Query)
	}
}

func TestParse_OpenSite(t *testing.T) {
	cases := map[string]string{
		"open facebook": "facebook",
		"go to gmail":   "gmail",
		"open github":   "github",
		"open youtube":  "youtube",
		"go to youtube": "youtube",
	}

	for text, site := range cases {
		result := parse(t, text)
		if result.Action.Kind != domain.ActionOpenSite {
			t.Errorf("%q: expected open_site, got %s", text, result.Action.Kind)
			continue
		}
		if result.Action.Args.Site != site {
			t.Errorf("%q: expected site %q, got %q", text, site, result.Action.Args.Site)
		}
	}
}

func TestParse_Navigate(t *testing.T) {
	cases := map[string]string{
		"go to dashboard":       "/dashboard",
		"open the dashboard":    "/dashboard",
		"navigate to settings":  "/dashboard",
		"go to home":            "/",
		"homepage":              "/",
		"go to login":           "/login",
		"open setup":            "/setup",
		"go to customize":       "/setup",
		"navigate to customise": "/setup",
		"dashboard":             "/dashboard",
	}

	for text, path := range cases {
		result := parse(t, text)
		if result.Action.Kind != domain.ActionNavigate {
			t.Errorf("%q: expected navigate, got %s", text, result.Action.Kind)
			continue
		}
		if result.Action.Args.Path != path {
			t.Errorf("%q: expected path %q, got %q", text, path, result.Action.Args.Path)
		}
	}
}

func TestParse_OpenURL(t *testing.T) {
	result := parse(t, "open example.com")

	if result.Action.Kind != domain.ActionOpenURL {
		t.Fatalf("expected open_url, got %s", result.Action.Kind)
	}
	if result.Action.Args.URL != "https://example.com" {
		t.Errorf("expected https scheme added, got %q", result.Action.Args.URL)
	}

	result = parse(t, "open https://news.ycombinator.com")
	if result.Action.Args.URL != "https://news.ycombinator.com" {
		t.Errorf("existing scheme must be preserved, got %q", result.Action.Args.URL)
	}
}

func TestParse_OpenBareWordFallsThrough(t *testing.T) {
	// "open something" with no dot is not a URL; it falls through to the
	// catch-all search.
	result := parse(t, "open something")

	if result.Action.Kind != domain.ActionOpenSearch {
		t.Fatalf("expected catch-all search, got %s", result.Action.Kind)
	}
	if result.Rule != "catch_all_search" {
		t.Errorf("expected catch_all_search rule, got %q", result.Rule)
	}
	if result.Source != domain.SourceFallback {
		t.Errorf("expected fallback source, got %q", result.Source)
	}
}

func TestParse_ScrollReloadHistory(t *testing.T) {
	cases := []struct {
		text string
		kind domain.ActionKind
		dir  string
	}{
		{"scroll down", domain.ActionScroll, "down"},
		{"scroll up", domain.ActionScroll, "up"},
		{"scroll to top", domain.ActionScroll, "top"},
		{"scroll to the bottom", domain.ActionScroll, "bottom"},
		{"reload", domain.ActionReload, ""},
		{"refresh the page", domain.ActionReload, ""},
		{"reload the page", domain.ActionReload, ""},
		{"go back", domain.ActionHistory, "back"},
		{"go forward", domain.ActionHistory, "forward"},
	}

	for _, tc := range cases {
		result := parse(t, tc.text)
		if result.Action.Kind != tc.kind {
			t.Errorf("%q: expected %s, got %s", tc.text, tc.kind, result.Action.Kind)
			continue
		}
		if tc.dir != "" && result.Action.Args.Direction != tc.dir {
			t.Errorf("%q: expected direction %q, got %q", tc.text, tc.dir, result.Action.Args.Direction)
		}
	}
}

func TestParse_Say(t *testing.T) {
	result := parse(t, "say hello there")

	if result.Action.Kind != domain.ActionSay {
		t.Fatalf("expected say, got %s", result.Action.Kind)
	}
	if result.Action.Args.Text != "hello there" {
		t.Errorf("expected text 'hello there', got %q", result.Action.Args.Text)
	}
}

func TestParse_TimeAndDate(t *testing.T) {
	for _, text := range []string{"what time is it", "what's the time", "time"} {
		result := parse(t, text)
		if result.Action.Kind != domain.ActionTime {
			t.Errorf("%q: expected time, got %s", text, result.Action.Kind)
		}
	}

	for _, text := range []string{"what's the date", "what is the date today", "date"} {
		result := parse(t, text)
		if result.Action.Kind != domain.ActionDate {
			t.Errorf("%q: expected date, got %s", text, result.Action.Kind)
		}
	}
}

func TestParse_LocalFileRefusal(t *testing.T) {
	cases := []string{
		"open my downloads folder",
		"show me my files",
		"access the documents directory",
		"open desktop",
	}

	for _, text := range cases {
		result := parse(t, text)
		if result.Action.Kind != domain.ActionSay {
			t.Errorf("%q: expected say refusal, got %s", text, result.Action.Kind)
			continue
		}
		if result.Action.Args.Text != fileAccessRefusal {
			t.Errorf("%q: expected refusal text, got %q", text, result.Action.Args.Text)
		}
	}
}

func TestParse_RefusalDoesNotSwallowSiteShortcuts(t *testing.T) {
	// Site shortcuts and URL opens sit above the refusal rule; they must not
	// be blocked by the filesystem-noun check.
	result := parse(t, "open github")
	if result.Action.Kind != domain.ActionOpenSite {
		t.Errorf("expected open_site, got %s", result.Action.Kind)
	}
}

func TestParse_CatchAll(t *testing.T) {
	result := parse(t, "tell me about the weather in lisbon")

	if result.Action.Kind != domain.ActionOpenSearch {
		t.Fatalf("expected open_search, got %s", result.Action.Kind)
	}
	if result.Action.Args.Engine != domain.EngineGoogle {
		t.Errorf("expected google engine, got %q", result.Action.Args.Engine)
	}
	if result.Action.Args.Query != "tell me about the weather in lisbon" {
		t.Errorf("expected full text as query, got %q", result.Action.Args.Query)
	}
	if result.Source != domain.SourceFallback {
		t.Errorf("expected fallback source, got %q", result.Source)
	}
}

func TestParse_AllResultsPassValidation(t *testing.T) {
	inputs := []string{
		"search for x", "open youtube", "go to dashboard", "open example.com",
		"scroll down", "reload", "go back", "say hi", "what time is it",
		"what's the date", "open my files", "complete gibberish input",
	}

	for _, text := range inputs {
		result := parse(t, text)
		if !result.Action.Valid() {
			t.Errorf("%q: produced invalid action %+v", text, result.Action)
		}
	}
}

func TestResolveRoute_AcceptsAliasAndPath(t *testing.T) {
	path, ok := ResolveRoute("customize")
	if !ok || path != "/setup" {
		t.Errorf("expected /setup, got %q (ok=%v)", path, ok)
	}

	path, ok = ResolveRoute("/setup")
	if !ok || path != "/setup" {
		t.Errorf("canonical path must resolve to itself, got %q (ok=%v)", path, ok)
	}

	path, ok = ResolveRoute("nowhere")
	if ok || path != "/" {
		t.Errorf("unknown word must resolve to root, got %q (ok=%v)", path, ok)
	}
}
