package deeplink

import (
	"net/url"
	"regexp"
	"strings"
)

// Category classifies the destination a route addresses, so callers can tell
// a slug-addressed category from a numeric-id one without reparsing the path.
//
//	Docs: docs/functionality-deeplink.md
type Category uint8

const (
	// CategoryNone is an exported constant or variable used by the deep-link resolver.
	CategoryNone Category = iota
	// CategoryTopic is an exported constant or variable used by the deep-link resolver.
	CategoryTopic
	// CategoryCategory is an exported constant or variable used by the deep-link resolver.
	CategoryCategory
	// CategoryParentCategory is an exported constant or variable used by the deep-link resolver.
	CategoryParentCategory
	// CategoryUser is an exported constant or variable used by the deep-link resolver.
	CategoryUser
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Category) String() string {
	switch c {
	case CategoryTopic:
		return "topic"
	case CategoryCategory:
		return "category"
	case CategoryParentCategory:
		return "parent_category"
	case CategoryUser:
		return "user"
	default:
		return "none"
	}
}

// ResolvedLink is the outcome of one resolution call. It is never persisted;
// the pending-intent layer stores only URL and path strings.
//
//	Docs: docs/functionality-deeplink.md
type ResolvedLink struct {
	Path           string
	EffectivePath  string
	IsAuthCallback bool
	RequiresAuth   bool
	Category       Category
}

// Config defines a public type used by linkAuth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Scheme string
	Domain string
}

// Resolver defines a public type used by linkAuth APIs.
//
// Resolver instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Resolver struct {
	scheme string
	domain string
}

// NewResolver describes the newresolver operation and its observable behavior.
//
// NewResolver may return an error when input validation, dependency calls, or security checks fail.
// NewResolver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewResolver(cfg Config) *Resolver {
	scheme := strings.ToLower(strings.TrimSpace(cfg.Scheme))
	domain := strings.ToLower(strings.TrimSpace(cfg.Domain))
	if scheme == "" {
		scheme = "bytehub"
	}
	if domain == "" {
		domain = "forum.bytehub.app"
	}
	return &Resolver{scheme: scheme, domain: domain}
}

// authCallbackPrefixes are matched exactly or up to the next slash. Both
// spellings exist in the wild: auth/callback from in-app handlers and
// auth_redirect from the server-side redirect.
var authCallbackPrefixes = []string{"auth/callback", "auth_redirect"}

var authRequiredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^me$`),
	regexp.MustCompile(`^notifications(?:$|/)`),
	regexp.MustCompile(`^compose(?:$|/)`),
	regexp.MustCompile(`^settings(?:$|/)`),
}

// Resolve describes the resolve operation and its observable behavior.
//
// Resolve may return an error when input validation, dependency calls, or security checks fail.
// Resolve does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Resolver) Resolve(raw string) *ResolvedLink {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}

	switch strings.ToLower(u.Scheme) {
	case r.scheme:
		return r.resolveScheme(u)
	case "https":
		if !strings.EqualFold(u.Hostname(), r.domain) {
			return nil
		}
		return r.rewriteWeb(u)
	default:
		return nil
	}
}

func (r *Resolver) resolveScheme(u *url.URL) *ResolvedLink {
	// Some URL parsers report the first path segment as the host
	// (bytehub://byte/123 gives host "byte"); treat host and path as two
	// fragments of one segment list.
	effective := strings.Trim(u.Host+u.Path, "/")
	query := coerceQuery(u.Query())

	for _, prefix := range authCallbackPrefixes {
		if effective == prefix || strings.HasPrefix(effective, prefix+"/") {
			path := "/auth/callback"
			if payload := rawQueryParam(u.RawQuery, "payload"); payload != "" {
				path += "?payload=" + payload
			}
			return &ResolvedLink{
				Path:           path,
				EffectivePath:  effective,
				IsAuthCallback: true,
			}
		}
	}

	requiresAuth := false
	for _, pattern := range authRequiredPatterns {
		if pattern.MatchString(effective) {
			requiresAuth = true
			break
		}
	}

	for _, rt := range routeTable {
		if m := rt.pattern.FindStringSubmatch(effective); m != nil {
			return &ResolvedLink{
				Path:          rt.build(m, query),
				EffectivePath: effective,
				RequiresAuth:  requiresAuth,
				Category:      rt.category,
			}
		}
	}

	// Total by construction: unmatched scheme URLs land on home.
	return &ResolvedLink{
		Path:          "/home",
		EffectivePath: effective,
		RequiresAuth:  requiresAuth,
		Category:      CategoryNone,
	}
}

func (r *Resolver) rewriteWeb(u *url.URL) *ResolvedLink {
	webPath := strings.Trim(u.Path, "/")

	for _, rule := range rewriteRules {
		m := rule.pattern.FindStringSubmatch(webPath)
		if m == nil {
			continue
		}

		rebuilt := r.scheme + "://" + rule.build(m)
		if u.RawQuery != "" {
			rebuilt += "?" + u.RawQuery
		}
		return r.Resolve(rebuilt)
	}

	return nil
}

// coerceQuery flattens every query value to a single scalar string. Transport
// layers occasionally deliver repeated parameters; the first value wins.
func coerceQuery(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for key, list := range values {
		if key == "" || len(list) == 0 {
			continue
		}
		out[key] = list[0]
	}
	return out
}

// rawQueryParam extracts a parameter without percent-decoding it. Auth
// payloads are Base64 envelopes whose escaping the crypto layer normalizes
// itself; decoding here would corrupt them.
func rawQueryParam(rawQuery, name string) string {
	for _, pair := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(pair, name+"=") {
			return pair[len(name)+1:]
		}
	}
	return ""
}
