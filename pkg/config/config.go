package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds the client configuration for the orchestration service.
type Settings struct {
	// API is the base URL for REST-style calls. Required to build a client.
	API string `yaml:"api"`

	// GraphQL is the base URL for GraphQL calls. Defaults to API when empty.
	GraphQL string `yaml:"graphql"`

	// AuthToken is a default bearer token used when no explicit token is given.
	AuthToken string `yaml:"auth_token"`

	// Email and Password are default login credentials.
	Email    string `yaml:"email"`
	Password string `yaml:"password"`

	// UseLocalSecrets toggles local secret resolution over the GraphQL API.
	UseLocalSecrets bool `yaml:"use_local_secrets"`
}

// VariableExpander defines the interface for expanding variables
type VariableExpander interface {
	Expand(data []byte) []byte
}

// EnvExpander implements VariableExpander using environment variables
type EnvExpander struct{}

// Expand expands environment variables with the given data
func (e *EnvExpander) Expand(data []byte) []byte {
	expanded := os.Expand(string(data), os.Getenv)
	return []byte(expanded)
}

// Loader reads Settings from YAML files.
type Loader struct {
	expander VariableExpander
}

// NewLoader creates a Loader. A nil expander disables variable expansion.
func NewLoader(expander VariableExpander) *Loader {
	return &Loader{expander: expander}
}

// Load reads and parses a settings file.
func (l *Loader) Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return l.Parse(data)
}

// Parse parses a yaml settings document.
func (l *Loader) Parse(data []byte) (*Settings, error) {
	if l.expander != nil {
		data = l.expander.Expand(data)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &settings, nil
}

// DefaultPath returns the settings file location under the user home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".driftline", "config.yaml")
}

// LoadDefault loads settings from DefaultPath with environment expansion.
// A missing file yields empty Settings, not an error; whether empty settings
// are usable is decided where they are consumed.
func LoadDefault() (*Settings, error) {
	path := DefaultPath()
	if path == "" {
		return &Settings{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Settings{}, nil
	}
	return NewLoader(&EnvExpander{}).Load(path)
}
