package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/driftline/cloudclient/pkg/config"
	"github.com/driftline/cloudclient/pkg/errors"
)

func TestLogin(t *testing.T) {
	var gotUser, gotPass string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			t.Errorf("login path = %q", r.URL.Path)
		}
		gotUser, gotPass, _ = r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.Write([]byte(`{"token": "login-token"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	err := c.Login(context.Background(), LoginOptions{
		Email:       "user@example.com",
		Password:    "hunter2",
		AccountSlug: "acme",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if gotUser != "user@example.com" || gotPass != "hunter2" {
		t.Errorf("basic auth = %q / %q", gotUser, gotPass)
	}
	if gotBody["account_slug"] != "acme" {
		t.Errorf("account_slug = %v", gotBody["account_slug"])
	}
	if gotBody["account_id"] != nil {
		t.Errorf("account_id should be null, got %v", gotBody["account_id"])
	}
	if token, _ := c.Token(); token != "login-token" {
		t.Errorf("token = %q", token)
	}
}

func TestLoginDefaultsFromSettings(t *testing.T) {
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		w.Write([]byte(`{"token": "t"}`))
	}))
	defer server.Close()

	settings := &config.Settings{
		API:      server.URL,
		Email:    "configured@example.com",
		Password: "configured-pass",
	}
	c, err := New(settings, WithTokenPath(t.TempDir()+"/auth_token"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := c.Login(context.Background(), LoginOptions{}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if gotUser != "configured@example.com" || gotPass != "configured-pass" {
		t.Errorf("basic auth = %q / %q", gotUser, gotPass)
	}
}

func TestLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "bad credentials"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	err := c.Login(context.Background(), LoginOptions{Email: "u@example.com", Password: "wrong"})
	assertErrorIs(t, err, errors.ErrLoginFailed)
	if _, ok := c.Token(); ok {
		t.Error("rejected login should not set a token")
	}
}

func TestLoginWithoutTokenFieldKeepsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "ok"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, WithToken("existing-token"))

	if err := c.Login(context.Background(), LoginOptions{Email: "u@example.com", Password: "p"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token, _ := c.Token(); token != "existing-token" {
		t.Errorf("token = %q, expected the previous token to survive", token)
	}
}

func TestLoginWithoutEmail(t *testing.T) {
	doer := &countingDoer{}
	c := newTestClient(t, "https://api.example.com", WithHTTPDoer(doer))

	err := c.Login(context.Background(), LoginOptions{})
	assertErrorIs(t, err, errors.ErrConfiguration)
	if doer.calls != 0 {
		t.Errorf("expected zero network calls, got %d", doer.calls)
	}
}

func TestLogout(t *testing.T) {
	doer := &countingDoer{}
	c := newTestClient(t, "https://api.example.com", WithToken("tok"), WithHTTPDoer(doer))

	if err := c.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, ok := c.Token(); ok {
		t.Error("expected no token after logout")
	}

	// Idempotent: logging out again is fine.
	if err := c.Logout(); err != nil {
		t.Errorf("second Logout failed: %v", err)
	}

	// Any authenticated call after logout fails before the network.
	_, err := c.Request(context.Background(), http.MethodGet, "thing", nil)
	assertErrorIs(t, err, errors.ErrUnauthenticated)
	if doer.calls != 0 {
		t.Errorf("expected zero network calls, got %d", doer.calls)
	}
}

func TestRefreshToken(t *testing.T) {
	t.Run("ReplacesToken", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/refresh_token" {
				t.Errorf("refresh path = %q", r.URL.Path)
			}
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"token": "renewed"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL, WithToken("expiring"))

		if err := c.RefreshToken(context.Background()); err != nil {
			t.Fatalf("RefreshToken failed: %v", err)
		}
		if gotAuth != "Bearer expiring" {
			t.Errorf("refresh used %q, expected the current token", gotAuth)
		}
		if token, _ := c.Token(); token != "renewed" {
			t.Errorf("token = %q", token)
		}
	})

	t.Run("WithoutToken", func(t *testing.T) {
		c := newTestClient(t, "https://api.example.com")
		err := c.RefreshToken(context.Background())
		assertErrorIs(t, err, errors.ErrUnauthenticated)
	})

	t.Run("NonSuccessStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		c := newTestClient(t, server.URL, WithToken("expiring"))

		err := c.RefreshToken(context.Background())
		assertErrorIs(t, err, errors.ErrHTTPResponse)
		// The old token survives a failed refresh.
		if token, _ := c.Token(); token != "expiring" {
			t.Errorf("token = %q", token)
		}
	})

	t.Run("EmptyResponseClearsToken", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL, WithToken("expiring"))

		if err := c.RefreshToken(context.Background()); err != nil {
			t.Fatalf("RefreshToken failed: %v", err)
		}
		if _, ok := c.Token(); ok {
			t.Error("expected the token to be cleared when the server returns none")
		}
	})
}
