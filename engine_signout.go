package linkAuth

import (
	"context"
	"log"
)

// SignOut describes the signout operation and its observable behavior.
//
// SignOut may return an error when input validation, dependency calls, or security checks fail.
// SignOut does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Docs: docs/functionality-signout.md
func (e *Engine) SignOut(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}

	var username, clientID string
	if creds, err := e.credentials.Read(ctx); err == nil && creds != nil {
		username = creds.Username
		clientID = creds.ClientID

		// Server-side revocation is best effort. Local material goes away
		// no matter what the server says.
		if err := e.api.Revoke(ctx, creds.APIKey); err != nil {
			e.metricInc(MetricRevokeFailure)
			log.Print("linkAuth: server-side key revocation failed: ", err)
		}
	}

	e.clearCredentialMaterial(ctx)

	e.metricInc(MetricSignOut)
	e.emit(ctx, AuthEvent{
		EventType: EventSignedOut,
		Username:  username,
		ClientID:  clientID,
		State:     StateIdle.String(),
		Success:   true,
	})
	e.setState(StateIdle)
	return nil
}

// clearCredentialMaterial wipes credentials, key material and the in-flight
// nonce. The client id survives: it identifies the installation, not the
// session, and reusing it lets the server correlate re-grants.
func (e *Engine) clearCredentialMaterial(ctx context.Context) {
	if err := e.credentials.Clear(ctx); err != nil {
		log.Print("linkAuth: credential wipe incomplete: ", err)
	}
	for _, key := range []string{keyPrivateKey, keyPublicKey} {
		if err := e.store.Delete(ctx, key); err != nil {
			log.Print("linkAuth: could not delete ", key, ": ", err)
		}
	}
	e.nonces.Clear(ctx)
}
