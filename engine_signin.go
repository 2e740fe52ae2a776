package linkAuth

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"

	"github.com/MrEthical07/linkAuth/forumapi"
	"github.com/MrEthical07/linkAuth/internal"
)

// SignIn describes the signin operation and its observable behavior.
//
// SignIn may return an error when input validation, dependency calls, or security checks fail.
// SignIn does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Docs: docs/functionality-signin.md
func (e *Engine) SignIn(ctx context.Context) (*SignInResult, error) {
	if e == nil || e.browser == nil {
		return nil, ErrEngineNotReady
	}
	if !e.signInBusy.CompareAndSwap(false, true) {
		return nil, ErrSignInInFlight
	}
	defer e.signInBusy.Store(false)

	e.setState(StateIdle)

	keys, err := e.crypto.GenerateKeyPair(e.config.Auth.KeyBits)
	if err != nil {
		return nil, e.fail(ctx, err)
	}
	if err := e.store.Set(ctx, keyPrivateKey, keys.PrivateKeyPEM); err != nil {
		return nil, e.fail(ctx, errors.Join(ErrStoreUnavailable, err))
	}
	if err := e.store.Set(ctx, keyPublicKey, keys.PublicKeyPEM); err != nil {
		return nil, e.fail(ctx, errors.Join(ErrStoreUnavailable, err))
	}
	e.setState(StateKeyGenerated)

	clientID, err := e.ensureClientID(ctx)
	if err != nil {
		return nil, e.fail(ctx, err)
	}

	nonce, err := internal.NewNonce()
	if err != nil {
		return nil, e.fail(ctx, err)
	}
	if err := e.nonces.Save(ctx, nonce); err != nil {
		return nil, e.fail(ctx, errors.Join(ErrStoreUnavailable, err))
	}

	authorizeURL := e.api.AuthorizeURL(forumapi.AuthorizeParams{
		ApplicationName: e.config.App.Name,
		ClientID:        clientID,
		Scopes:          e.config.Auth.Scopes,
		PublicKeyPEM:    keys.PublicKeyPEM,
		AuthRedirect:    e.config.authRedirect(),
		Nonce:           nonce,
	})
	e.setState(StateAuthorizationRequested)

	e.setState(StateAwaitingRedirect)
	redirectURL, err := e.browser.Authorize(ctx, authorizeURL, e.config.authRedirect())
	if err != nil {
		if errors.Is(err, ErrAuthCancelled) || errors.Is(err, context.Canceled) {
			// User dismissal is an outcome, not a fault. Drop the nonce so
			// a stale redirect cannot complete a dead attempt.
			e.nonces.Clear(ctx)
			e.metricInc(MetricSignInCancelled)
			e.emit(ctx, AuthEvent{EventType: EventSignInCancelled, ClientID: clientID, State: StateAwaitingRedirect.String()})
			e.setState(StateIdle)
			return nil, ErrAuthCancelled
		}
		return nil, e.fail(ctx, err)
	}

	return e.completeSignIn(ctx, redirectURL)
}

// HandleAuthRedirect describes the handleauthredirect operation and its observable behavior.
//
// HandleAuthRedirect may return an error when input validation, dependency calls, or security checks fail.
// HandleAuthRedirect does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Docs: docs/functionality-signin.md
func (e *Engine) HandleAuthRedirect(ctx context.Context, redirectURL string) (*SignInResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	return e.completeSignIn(ctx, redirectURL)
}

// completeSignIn consumes one redirect delivery. The redirectBusy flag is set
// before the first suspension point so a platform re-delivering the same
// intent cannot process the payload twice.
func (e *Engine) completeSignIn(ctx context.Context, redirectURL string) (*SignInResult, error) {
	if !e.redirectBusy.CompareAndSwap(false, true) {
		return nil, ErrSignInInFlight
	}
	defer e.redirectBusy.Store(false)

	payload := extractPayload(redirectURL)
	if payload == "" {
		return e.confirmExisting(ctx)
	}
	e.setState(StatePayloadReceived)

	privateKey, err := e.store.Get(ctx, keyPrivateKey)
	if err != nil || privateKey == "" {
		return nil, e.fail(ctx, ErrKeyPairMissing)
	}

	start := e.now()
	envelopePayload, err := e.crypto.Decrypt(payload, privateKey)
	if e.metrics != nil {
		e.metrics.Observe(MetricDecryptLatency, e.now().Sub(start))
	}
	if err != nil {
		e.metricInc(MetricDecryptFailure)
		e.clearCredentialMaterial(ctx)
		return nil, e.fail(ctx, errors.Join(ErrPayloadInvalid, err))
	}
	if primary := e.crypto.PrimaryScheme(); primary != "" && envelopePayload.SchemeUsed != primary {
		e.metricInc(MetricDecryptFallback)
	}
	e.setState(StateDecrypted)

	clientID, err := e.ensureClientID(ctx)
	if err != nil {
		return nil, e.fail(ctx, err)
	}

	result := &SignInResult{ClientID: clientID}

	// The nonce is single-use regardless of outcome. Clearing before the
	// comparison result is acted on means a replayed payload always finds
	// an empty slot.
	expected := e.nonces.Get(ctx)
	e.nonces.Clear(ctx)
	switch {
	case expected != "" && envelopePayload.Nonce != "" && !internal.NonceEqual(expected, envelopePayload.Nonce):
		e.metricInc(MetricNonceMismatch)
		e.emit(ctx, AuthEvent{EventType: EventReplayBlocked, ClientID: clientID, State: StateDecrypted.String()})
		e.clearCredentialMaterial(ctx)
		return nil, e.fail(ctx, ErrNonceMismatch)
	case expected == "" && envelopePayload.Nonce != "":
		// Tolerated: the local nonce expired or a prior attempt consumed
		// it, but the payload still decrypted under our private key.
		log.Print("linkAuth: no local nonce to verify redirect payload against")
		e.metricInc(MetricNonceAbsent)
	case envelopePayload.Nonce == "":
		// Older server versions omit the nonce echo entirely. Both sides
		// must be present for verification; with one missing we proceed
		// on the strength of the private-key decryption alone.
		log.Print("linkAuth: redirect payload carries no nonce echo")
		e.metricInc(MetricNonceAbsent)
	default:
		result.NonceVerified = true
	}
	e.setState(StateNonceVerified)

	creds := AuthCredentials{
		APIKey:    envelopePayload.Key,
		ClientID:  clientID,
		CreatedAt: e.now(),
	}
	if err := e.credentials.Store(ctx, creds); err != nil {
		return nil, e.fail(ctx, errors.Join(ErrStoreUnavailable, err))
	}
	e.setState(StateCredentialStored)

	username, err := e.api.CurrentUser(ctx, forumapi.Credentials{
		APIKey:   creds.APIKey,
		ClientID: creds.ClientID,
	})
	switch {
	case err == nil:
		creds.Username = username
		result.Username = username
		if storeErr := e.credentials.Store(ctx, creds); storeErr != nil {
			log.Print("linkAuth: could not persist username onto stored credentials: ", storeErr)
		}
	case errors.Is(err, forumapi.ErrCredentialRejected):
		e.metricInc(MetricCredentialRejected)
		e.credentials.Clear(ctx)
		return nil, e.fail(ctx, ErrCredentialRejected)
	default:
		// Transport trouble after the key is stored is not fatal; the
		// username backfills on the next authenticated call.
		log.Print("linkAuth: username lookup failed after sign-in: ", err)
	}

	if envelopePayload.OneTimePassword != "" {
		if err := e.store.Set(ctx, keyOneTimePassword, envelopePayload.OneTimePassword); err != nil {
			log.Print("linkAuth: could not persist one-time password: ", err)
		}
		if err := e.warmOTP(ctx, envelopePayload.OneTimePassword); err != nil {
			e.metricInc(MetricOTPWarmFailure)
			log.Print("linkAuth: one-time password session warm-up failed: ", err)
		} else {
			result.OTPWarmed = true
		}
	}

	e.metricInc(MetricSignInSuccess)
	e.emit(ctx, AuthEvent{
		EventType: EventSignedIn,
		Username:  result.Username,
		ClientID:  clientID,
		State:     StateComplete.String(),
		Success:   true,
	})
	e.setState(StateComplete)
	return result, nil
}

// confirmExisting handles a redirect with no payload parameter. Some server
// versions redirect bare when the user already holds a valid grant, so a
// stored credential that still authenticates is treated as success.
func (e *Engine) confirmExisting(ctx context.Context) (*SignInResult, error) {
	e.metricInc(MetricPayloadMissing)

	creds, err := e.credentials.Read(ctx)
	if err != nil || creds == nil {
		e.clearCredentialMaterial(ctx)
		return nil, e.fail(ctx, ErrPayloadMissing)
	}

	username, err := e.api.CurrentUser(ctx, forumapi.Credentials{
		APIKey:   creds.APIKey,
		ClientID: creds.ClientID,
		Username: creds.Username,
	})
	if err != nil {
		if errors.Is(err, forumapi.ErrCredentialRejected) {
			e.metricInc(MetricCredentialRejected)
		}
		// A payload-free redirect whose stored credential cannot be
		// confirmed is a protocol failure; nothing partial survives it.
		e.clearCredentialMaterial(ctx)
		return nil, e.fail(ctx, ErrPayloadMissing)
	}

	e.metricInc(MetricSignInShortCircuit)
	e.emit(ctx, AuthEvent{
		EventType: EventSignedIn,
		Username:  username,
		ClientID:  creds.ClientID,
		State:     StateComplete.String(),
		Success:   true,
		Metadata:  map[string]string{"short_circuit": "true"},
	})
	e.setState(StateComplete)
	return &SignInResult{
		Username:     username,
		ClientID:     creds.ClientID,
		ShortCircuit: true,
	}, nil
}

func (e *Engine) warmOTP(ctx context.Context, otp string) error {
	if e.browser == nil {
		return ErrEngineNotReady
	}
	return e.browser.OpenURL(ctx, e.api.OTPURL(otp))
}

// fail records a terminal failure for the current attempt. Partial key
// material is cheapest to regenerate, so everything short of a stored
// credential is wiped.
func (e *Engine) fail(ctx context.Context, err error) error {
	e.metricInc(MetricSignInFailure)
	e.emit(ctx, AuthEvent{
		EventType: EventSignInFailed,
		State:     e.State().String(),
		Error:     err.Error(),
	})
	e.nonces.Clear(ctx)
	e.setState(StateFailed)
	return err
}

// extractPayload accepts either a full redirect URL or a bare payload value.
// The payload query parameter is read without unescaping: the ciphertext is
// Base64 and percent-decoding it would corrupt "+" bytes.
func extractPayload(redirect string) string {
	redirect = strings.TrimSpace(redirect)
	if redirect == "" {
		return ""
	}

	if !strings.Contains(redirect, "://") && !strings.Contains(redirect, "?") {
		// Bare payload handed over directly by a platform shim.
		return redirect
	}

	u, err := url.Parse(redirect)
	if err != nil {
		return ""
	}
	return rawQueryValue(u.RawQuery, "payload")
}

func rawQueryValue(rawQuery, name string) string {
	for _, pair := range strings.Split(rawQuery, "&") {
		if after, ok := strings.CutPrefix(pair, name+"="); ok {
			return after
		}
	}
	return ""
}
