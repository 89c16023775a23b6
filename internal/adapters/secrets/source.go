package secrets

import (
	"context"
	"fmt"
	"os"

	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	"go.uber.org/zap"
)

// Supported secret backends
const (
	BackendEnv   = "env"
	BackendLocal = "local"
	BackendAWS   = "aws"
	BackendVault = "vault"
)

// SourceConfig selects and configures a secret backend
type SourceConfig struct {
	Backend   string
	LocalPath string
	AWS       *AWSConfig
	Vault     *VaultConfig
}

// NewSecretSource builds the source for cfg.Backend
func NewSecretSource(ctx context.Context, cfg SourceConfig, logger *zap.Logger) (ports.SecretSource, error) {
	switch cfg.Backend {
	case "", BackendEnv:
		return NewEnvSecretSource(), nil
	case BackendLocal:
		return NewLocalSecretSource(cfg.LocalPath, logger), nil
	case BackendAWS:
		if cfg.AWS == nil {
			return nil, fmt.Errorf("aws backend selected without AWS configuration")
		}
		return NewAWSSecretSource(ctx, cfg.AWS, logger)
	case BackendVault:
		if cfg.Vault == nil {
			return nil, fmt.Errorf("vault backend selected without Vault configuration")
		}
		return NewVaultSecretSource(ctx, cfg.Vault, logger)
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", cfg.Backend)
	}
}

type envSecretSource struct {
	lookup func(string) (string, bool)
}

// NewEnvSecretSource treats the path as an environment variable name
func NewEnvSecretSource() ports.SecretSource {
	return &envSecretSource{lookup: os.LookupEnv}
}

func (e *envSecretSource) GetSecret(_ context.Context, path string) (*ports.Secret, error) {
	value, ok := e.lookup(path)
	if !ok || value == "" {
		return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, path)
	}
	return &ports.Secret{Value: value, Version: "env"}, nil
}
