package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (integrity secret, events key, private key)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretSource resolves Wompi credentials from a secret backend.
// Read-only: creating and rotating secrets is done out of band.
// Path format depends on implementation:
//   - local: file path relative to the base directory
//   - AWS: secret name or ARN, e.g. "wompi/prod/events-secret"
//   - Vault: KV path under the mount, e.g. "wompi/prod"
type SecretSource interface {
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
