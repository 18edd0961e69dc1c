// Package secrets resolves named secrets either from an injected local
// store or from the orchestration service over GraphQL.
package secrets

import (
	"context"

	"github.com/driftline/cloudclient/pkg/client"
	"github.com/driftline/cloudclient/pkg/config"
)

const secretQuery = `
	query($name: String!) {
		secret(name: $name) {
			value
		}
	}`

// Resolver resolves secret values. When the settings enable local
// secrets, lookups go against the Local map and never touch the network;
// otherwise each lookup runs a fresh GraphQL query.
type Resolver struct {
	settings *config.Settings

	// Local is the process-local secret store, name to value. Supplied
	// by the caller rather than read from ambient state.
	Local map[string]string

	// newClient is swappable for tests.
	newClient func() (*client.Client, error)
}

// NewResolver creates a Resolver over the given settings and local store.
func NewResolver(settings *config.Settings, local map[string]string) *Resolver {
	return &Resolver{
		settings: settings,
		Local:    local,
		newClient: func() (*client.Client, error) {
			return client.New(settings)
		},
	}
}

// Get resolves a secret by name. In local mode an unknown name yields
// ("", false), not an error. In remote mode GraphQL and HTTP failures
// propagate unchanged.
func (r *Resolver) Get(ctx context.Context, name string) (string, bool, error) {
	if r.settings != nil && r.settings.UseLocalSecrets {
		value, ok := r.Local[name]
		return value, ok, nil
	}

	c, err := r.newClient()
	if err != nil {
		return "", false, err
	}

	res, err := c.GraphQL(ctx, secretQuery, map[string]interface{}{"name": name})
	if err != nil {
		return "", false, err
	}

	value, err := res.Fields("secret", "value")
	if err != nil {
		return "", false, err
	}
	s, ok := value.AsString()
	return s, ok, nil
}

// Secret is a named secret whose value is resolved on demand and never
// cached; every Get re-resolves.
type Secret struct {
	Name string

	resolver *Resolver
}

// NewSecret binds a name to a resolver.
func NewSecret(name string, resolver *Resolver) *Secret {
	return &Secret{Name: name, resolver: resolver}
}

// Get resolves the secret value.
func (s *Secret) Get(ctx context.Context) (string, bool, error) {
	return s.resolver.Get(ctx, s.Name)
}
