package deeplink

import (
	"net/url"
	"regexp"
)

type route struct {
	pattern  *regexp.Regexp
	category Category
	build    func(m []string, query map[string]string) string
}

// routeTable is ordered and first-match-wins. The /comments topic form must
// stay ahead of the bare topic rule, and the numeric /id/<n> addressing must
// stay ahead of the slug rules it would otherwise shadow.
var routeTable = []route{
	{
		pattern:  regexp.MustCompile(`^(?:byte|topic|t)/(\d+)/comments$`),
		category: CategoryTopic,
		build: func(m []string, _ map[string]string) string {
			return "/topic/" + m[1] + "?comments=true"
		},
	},
	{
		pattern:  regexp.MustCompile(`^(?:byte|topic|t)/(\d+)$`),
		category: CategoryTopic,
		build: func(m []string, _ map[string]string) string {
			return "/topic/" + m[1]
		},
	},
	{
		pattern:  regexp.MustCompile(`^teret/id/(\d+)$`),
		category: CategoryCategory,
		build: func(m []string, _ map[string]string) string {
			return "/category/id/" + m[1]
		},
	},
	{
		pattern:  regexp.MustCompile(`^teret/([^/]+)$`),
		category: CategoryCategory,
		build: func(m []string, _ map[string]string) string {
			return "/category/" + m[1]
		},
	},
	{
		pattern:  regexp.MustCompile(`^hub/id/(\d+)$`),
		category: CategoryParentCategory,
		build: func(m []string, _ map[string]string) string {
			return "/hub/id/" + m[1]
		},
	},
	{
		pattern:  regexp.MustCompile(`^hub/([^/]+)$`),
		category: CategoryParentCategory,
		build: func(m []string, _ map[string]string) string {
			return "/hub/" + m[1]
		},
	},
	{
		pattern:  regexp.MustCompile(`^(?:profile|u)/([^/]+)$`),
		category: CategoryUser,
		build: func(m []string, _ map[string]string) string {
			return "/user/" + m[1]
		},
	},
	{
		pattern:  regexp.MustCompile(`^me$`),
		category: CategoryUser,
		build: func(_ []string, _ map[string]string) string {
			return "/me"
		},
	},
	{
		pattern:  regexp.MustCompile(`^activate-account/([^/]+)$`),
		category: CategoryNone,
		build: func(m []string, _ map[string]string) string {
			return "/activate-account/" + m[1]
		},
	},
	{
		pattern:  regexp.MustCompile(`^search$`),
		category: CategoryNone,
		build: func(_ []string, query map[string]string) string {
			if q, ok := query["q"]; ok && q != "" {
				return "/search?q=" + url.QueryEscape(q)
			}
			return "/search"
		},
	},
	{
		pattern:  regexp.MustCompile(`^notifications$`),
		category: CategoryNone,
		build: func(_ []string, _ map[string]string) string {
			return "/notifications"
		},
	},
	{
		pattern:  regexp.MustCompile(`^compose$`),
		category: CategoryNone,
		build: func(_ []string, query map[string]string) string {
			if teret, ok := query["teret"]; ok && teret != "" {
				return "/compose?teret=" + url.QueryEscape(teret)
			}
			return "/compose"
		},
	},
	{
		pattern:  regexp.MustCompile(`^settings$`),
		category: CategoryNone,
		build: func(_ []string, _ map[string]string) string {
			return "/settings"
		},
	},
	{
		pattern:  regexp.MustCompile(`^settings/(profile|notifications)$`),
		category: CategoryNone,
		build: func(m []string, _ map[string]string) string {
			return "/settings/" + m[1]
		},
	},
	{
		pattern:  regexp.MustCompile(`^(?:home)?$`),
		category: CategoryNone,
		build: func(_ []string, _ map[string]string) string {
			return "/home"
		},
	},
}

type rewriteRule struct {
	pattern *regexp.Regexp
	build   func(m []string) string
}

// rewriteRules turn canonical web paths into their custom-scheme form, which
// is then resolved through the ordinary route table. No rule matching means
// the web URL has no in-app destination.
var rewriteRules = []rewriteRule{
	{
		// topic with slug, optional post number suffix
		pattern: regexp.MustCompile(`^t/[^/]+/(\d+)(?:/\d+)?$`),
		build:   func(m []string) string { return "byte/" + m[1] },
	},
	{
		pattern: regexp.MustCompile(`^t/(\d+)$`),
		build:   func(m []string) string { return "byte/" + m[1] },
	},
	{
		pattern: regexp.MustCompile(`^u/activate-account/([^/]+)$`),
		build:   func(m []string) string { return "activate-account/" + m[1] },
	},
	{
		pattern: regexp.MustCompile(`^u/([^/]+)$`),
		build:   func(m []string) string { return "profile/" + m[1] },
	},
	{
		pattern: regexp.MustCompile(`^c/(?:[^/]+/)*(\d+)$`),
		build:   func(m []string) string { return "teret/id/" + m[1] },
	},
	{
		pattern: regexp.MustCompile(`^c/([^/]+)$`),
		build:   func(m []string) string { return "teret/" + m[1] },
	},
	{
		pattern: regexp.MustCompile(`^search$`),
		build:   func(_ []string) string { return "search" },
	},
}
