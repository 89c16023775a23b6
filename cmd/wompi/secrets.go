package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	"github.com/kevin07696/wompi-go/internal/adapters/secrets"
	"github.com/kevin07696/wompi-go/internal/config"
	"go.uber.org/zap"
)

// resolveSecrets fills the integrity and events secrets from the configured
// backend when they were not given directly. Missing secrets are left empty;
// each action reports the ones it needs.
func resolveSecrets(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Wompi.IntegritySecret != "" && cfg.Wompi.EventsSecret != "" {
		return nil
	}

	source, err := secrets.NewSecretSource(ctx, sourceConfig(cfg.Secrets), logger)
	if err != nil {
		return err
	}

	if cfg.Wompi.IntegritySecret == "" {
		value, err := lookupSecret(ctx, source, cfg.Secrets.IntegritySecretPath)
		if err != nil {
			return fmt.Errorf("integrity secret: %w", err)
		}
		cfg.Wompi.IntegritySecret = value
	}

	if cfg.Wompi.EventsSecret == "" {
		value, err := lookupSecret(ctx, source, cfg.Secrets.EventsSecretPath)
		if err != nil {
			return fmt.Errorf("events secret: %w", err)
		}
		cfg.Wompi.EventsSecret = value
	}

	logger.Debug("Wompi secrets resolved",
		zap.String("backend", cfg.Secrets.Backend),
		zap.Bool("integrity_secret", cfg.Wompi.IntegritySecret != ""),
		zap.Bool("events_secret", cfg.Wompi.EventsSecret != ""),
	)
	return nil
}

func lookupSecret(ctx context.Context, source ports.SecretSource, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	secret, err := source.GetSecret(ctx, path)
	if errors.Is(err, secrets.ErrSecretNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return secret.Value, nil
}

func sourceConfig(cfg config.SecretsConfig) secrets.SourceConfig {
	aws := secrets.DefaultAWSConfig(cfg.AWSRegion)
	aws.Endpoint = cfg.AWSEndpoint

	vault := secrets.DefaultVaultConfig(cfg.VaultAddr, cfg.VaultToken)
	vault.MountPath = cfg.VaultMount

	return secrets.SourceConfig{
		Backend:   cfg.Backend,
		LocalPath: cfg.LocalPath,
		AWS:       aws,
		Vault:     vault,
	}
}
