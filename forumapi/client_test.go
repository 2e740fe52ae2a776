package forumapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, RetryAttempts: 1}, srv.Client())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, srv
}

func TestAuthorizeURLCarriesAllParameters(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "https://forum.bytehub.app"}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	raw := client.AuthorizeURL(AuthorizeParams{
		ApplicationName: "ByteHub Mobile",
		ClientID:        "client-1",
		Scopes:          []string{"session_info", "read"},
		PublicKeyPEM:    "-----BEGIN PUBLIC KEY-----\nAAA\n-----END PUBLIC KEY-----\n",
		AuthRedirect:    "bytehub://auth_redirect",
		Nonce:           "nonce-1",
	})

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("authorize URL unparseable: %v", err)
	}
	if u.Path != "/user-api-key/new" {
		t.Fatalf("unexpected path %s", u.Path)
	}

	q := u.Query()
	for key, want := range map[string]string{
		"application_name": "ByteHub Mobile",
		"client_id":        "client-1",
		"scopes":           "session_info,read",
		"auth_redirect":    "bytehub://auth_redirect",
		"nonce":            "nonce-1",
	} {
		if got := q.Get(key); got != want {
			t.Fatalf("query %s = %q, want %q", key, got, want)
		}
	}
	if !strings.Contains(q.Get("public_key"), "BEGIN PUBLIC KEY") {
		t.Fatal("public key missing from authorize URL")
	}
}

func TestRevokeSendsAPIKeyHeader(t *testing.T) {
	var gotKey string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/user-api-key/revoke" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("User-Api-Key")
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.Revoke(context.Background(), "key-1"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if gotKey != "key-1" {
		t.Fatalf("expected User-Api-Key header, got %q", gotKey)
	}
}

func TestCurrentUserParsesUsername(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/current.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Api-Key") != "key-1" || r.Header.Get("User-Api-Client-Id") != "client-1" {
			t.Errorf("missing auth headers")
		}
		_, _ = w.Write([]byte(`{"current_user":{"username":"ana"}}`))
	}))

	username, err := client.CurrentUser(context.Background(), Credentials{APIKey: "key-1", ClientID: "client-1"})
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if username != "ana" {
		t.Fatalf("expected ana, got %s", username)
	}
}

func TestUnauthorizedClassifiedAsCredentialRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	if _, err := client.CurrentUser(context.Background(), Credentials{APIKey: "stale"}); !errors.Is(err, ErrCredentialRejected) {
		t.Fatalf("expected ErrCredentialRejected, got %v", err)
	}
	if err := client.Revoke(context.Background(), "stale"); !errors.Is(err, ErrCredentialRejected) {
		t.Fatalf("expected ErrCredentialRejected, got %v", err)
	}
}

func TestTransportFailureRetriesOnceThenFails(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close() // every dial now fails

	client, err := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second, RetryAttempts: 1}, &http.Client{})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if err := client.Revoke(context.Background(), "key"); !errors.Is(err, ErrServerUnavailable) {
		t.Fatalf("expected ErrServerUnavailable, got %v", err)
	}
	if attempts != 0 {
		t.Fatalf("closed server should not have served, got %d", attempts)
	}
}

func TestOTPURLEscapesToken(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "https://forum.bytehub.app"}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if got := client.OTPURL("ab/cd"); got != "https://forum.bytehub.app/session/otp/ab%2Fcd" {
		t.Fatalf("unexpected OTP URL %s", got)
	}
}
