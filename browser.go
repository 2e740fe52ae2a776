package linkAuth

import "context"

// Browser is the external authorization surface the host platform provides.
//
// Authorize opens authorizeURL in an external browser or authorization
// session and suspends until the server redirects to a URL starting with
// redirectPrefix, the user dismisses the session, or the session errors.
// There is no application-imposed timeout, since the user controls the wait, but
// the implementation must honor ctx cancellation for host teardown. A
// dismissal is a routine user action, reported as [ErrAuthCancelled] rather
// than a hard failure.
//
// OpenURL fires a URL into the system browser without waiting for anything;
// it exists for best-effort session-cookie warming.
//
//	Docs: docs/functionality-sign-in.md
type Browser interface {
	Authorize(ctx context.Context, authorizeURL, redirectPrefix string) (string, error)
	OpenURL(ctx context.Context, rawURL string) error
}
