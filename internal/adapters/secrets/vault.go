package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	"go.uber.org/zap"
)

// VaultConfig contains configuration for the HashiCorp Vault source
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Authentication method: "token" or "approle"
	AuthMethod string

	// Token for token authentication
	Token string

	// AppRole credentials (if using AppRole auth)
	RoleID   string
	SecretID string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV secrets engine mount path (default: "secret")
	MountPath string

	// KV version: "v1" or "v2" (default: "v2")
	KVVersion string

	// Cache TTL; zero disables caching
	CacheTTL time.Duration
}

// DefaultVaultConfig returns default configuration for token auth against KV v2
func DefaultVaultConfig(address, token string) *VaultConfig {
	return &VaultConfig{
		Address:    address,
		AuthMethod: "token",
		Token:      token,
		MountPath:  "secret",
		KVVersion:  "v2",
		CacheTTL:   DefaultCacheTTL,
	}
}

type vaultSecretSource struct {
	client *vault.Client
	config *VaultConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultSecretSource creates a Vault KV backed secret source and authenticates it
func NewVaultSecretSource(ctx context.Context, cfg *VaultConfig, logger *zap.Logger) (ports.SecretSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if err := authenticateVault(ctx, client, cfg); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	logger.Info("Vault source initialized",
		zap.String("address", cfg.Address),
		zap.String("auth_method", cfg.AuthMethod),
		zap.String("mount_path", cfg.MountPath),
		zap.String("kv_version", cfg.KVVersion),
	)

	return &vaultSecretSource{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.CacheTTL),
	}, nil
}

func authenticateVault(ctx context.Context, client *vault.Client, cfg *VaultConfig) error {
	switch cfg.AuthMethod {
	case "", "token":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}

		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

// GetSecret reads a KV entry. Path format: "wompi/prod#events_secret";
// without a field the entry's "value" key (or its only string) is used.
func (v *vaultSecretSource) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := v.cache.get(path); cached != nil {
		v.logger.Debug("Secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	rel, field := splitField(path)

	var fullPath string
	if v.config.KVVersion == "v1" {
		fullPath = fmt.Sprintf("%s/%s", v.config.MountPath, rel)
	} else {
		fullPath = fmt.Sprintf("%s/data/%s", v.config.MountPath, rel)
	}

	startTime := time.Now()
	secret, err := v.client.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		v.logger.Error("Failed to retrieve secret from Vault",
			zap.String("path", rel),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to read secret from Vault: %w", err)
	}
	if secret == nil {
		return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, rel)
	}

	v.logger.Info("Secret retrieved",
		zap.String("path", rel),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	data := secret.Data
	version := "1"
	var createdTime string

	if v.config.KVVersion != "v1" {
		inner, ok := secret.Data["data"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid secret format from Vault")
		}
		data = inner

		if metadata, ok := secret.Data["metadata"].(map[string]interface{}); ok {
			if n, ok := metadata["version"].(json.Number); ok {
				version = n.String()
			}
			if ct, ok := metadata["created_time"].(string); ok {
				createdTime = ct
			}
		}
	}

	value, ok := pickValue(data, field)
	if !ok {
		return nil, fmt.Errorf("secret %s has no usable value", path)
	}

	result := &ports.Secret{
		Value:     value,
		Version:   version,
		CreatedAt: createdTime,
		Metadata:  stringMetadata(data, field),
	}

	v.cache.set(path, result)
	return result, nil
}
