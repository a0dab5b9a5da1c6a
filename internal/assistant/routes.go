package assistant

// routeAliases maps spoken route words to client-side paths. The parser and
// the executor both resolve through this table so the two surfaces cannot
// drift apart.
var routeAliases = map[string]string{
	"dashboard": "/dashboard",
	"home":      "/",
	"homepage":  "/",
	"login":     "/login",
	"setup":     "/setup",
	"customize": "/setup",
	"customise": "/setup",
	"setting":   "/dashboard",
	"settings":  "/dashboard",
}

// ResolveRoute resolves a route word or an already-canonical path to a
// client-side path. Unknown inputs resolve to the root path.
func ResolveRoute(word string) (string, bool) {
	if path, ok := routeAliases[word]; ok {
		return path, true
	}
	// Already a canonical path produced by a previous resolution or by the
	// remote interpreter.
	for _, path := range routeAliases {
		if word == path {
			return word, true
		}
	}
	return "/", false
}

// RouteAliases returns the spoken words the route table accepts.
func RouteAliases() []string {
	words := make([]string, 0, len(routeAliases))
	for w := range routeAliases {
		words = append(words, w)
	}
	return words
}

type siteEntry struct {
	URL     string
	Display string
}

// siteTable maps bare site-shortcut phrases to canonical destinations.
var siteTable = map[string]siteEntry{
	"facebook": {URL: "https://www.facebook.com", Display: "Facebook"},
	"gmail":    {URL: "https://mail.google.com", Display: "Gmail"},
	"github":   {URL: "https://github.com", Display: "GitHub"},
	"youtube":  {URL: "https://www.youtube.com", Display: "YouTube"},
}

// ResolveSite resolves a canonical site key to its URL and display name.
func ResolveSite(site string) (siteEntry, bool) {
	entry, ok := siteTable[site]
	return entry, ok
}
