package linkAuth

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
)

// ensureClientID returns the stable per-installation identifier, minting and
// persisting one on first use.
func (e *Engine) ensureClientID(ctx context.Context) (string, error) {
	if id, err := e.store.Get(ctx, keyClientID); err == nil && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	if err := e.store.Set(ctx, keyClientID, id); err != nil {
		return "", errors.Join(ErrStoreUnavailable, err)
	}
	return id, nil
}

// Credentials describes the credentials operation and its observable behavior.
//
// Credentials may return an error when input validation, dependency calls, or security checks fail.
// Credentials does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Credentials(ctx context.Context) (*AuthCredentials, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	creds, err := e.credentials.Read(ctx)
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, ErrNotAuthenticated
	}
	return creds, nil
}

// IsAuthenticated describes the isauthenticated operation and its observable behavior.
//
// IsAuthenticated may return an error when input validation, dependency calls, or security checks fail.
// IsAuthenticated does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IsAuthenticated(ctx context.Context) bool {
	if e == nil {
		return false
	}
	return e.credentials.IsAuthenticated(ctx)
}

// OpenLink describes the openlink operation and its observable behavior.
//
// OpenLink may return an error when input validation, dependency calls, or security checks fail.
// OpenLink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Docs: docs/functionality-deeplinks.md
func (e *Engine) OpenLink(ctx context.Context, rawURL string) (*LinkOutcome, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	link := e.resolver.Resolve(rawURL)
	if link == nil {
		return &LinkOutcome{Handled: false}, nil
	}

	if link.IsAuthCallback {
		result, err := e.HandleAuthRedirect(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		outcome := &LinkOutcome{Handled: true, Link: link, SignIn: result}
		if intent := e.intents.Replay(ctx); intent != nil {
			outcome.ReplayedIntent = intent
		}
		return outcome, nil
	}

	if link.RequiresAuth && !e.IsAuthenticated(ctx) {
		e.intents.Store(ctx, PendingIntent{
			URL:          rawURL,
			ResolvedPath: link.Path,
		})
		log.Print("linkAuth: deferred link until sign-in: ", link.Path)
		return &LinkOutcome{Handled: true, Link: link, Deferred: true}, nil
	}

	return &LinkOutcome{Handled: true, Link: link}, nil
}
