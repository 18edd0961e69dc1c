package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	raw := []byte(`
api: https://api.example.com
graphql: https://gql.example.com
auth_token: tok-123
email: user@example.com
use_local_secrets: true
`)

	settings, err := NewLoader(nil).Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if settings.API != "https://api.example.com" {
		t.Errorf("API = %q", settings.API)
	}
	if settings.GraphQL != "https://gql.example.com" {
		t.Errorf("GraphQL = %q", settings.GraphQL)
	}
	if settings.AuthToken != "tok-123" {
		t.Errorf("AuthToken = %q", settings.AuthToken)
	}
	if !settings.UseLocalSecrets {
		t.Error("expected UseLocalSecrets true")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := NewLoader(nil).Parse([]byte("api: [unclosed"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("TEST_CLOUD_TOKEN", "expanded-token")

	raw := []byte("api: https://api.example.com\nauth_token: ${TEST_CLOUD_TOKEN}\n")
	settings, err := NewLoader(&EnvExpander{}).Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if settings.AuthToken != "expanded-token" {
		t.Errorf("AuthToken = %q, expansion did not apply", settings.AuthToken)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: https://api.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	settings, err := NewLoader(nil).Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.API != "https://api.example.com" {
		t.Errorf("API = %q", settings.API)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(nil).Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
