package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	secretsmanagertypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	"go.uber.org/zap"
)

// AWSConfig contains configuration for the AWS Secrets Manager source
type AWSConfig struct {
	// AWS Region (e.g., "us-east-1")
	Region string

	// Optional: AWS profile name (for local development)
	Profile string

	// Optional: Custom endpoint (for LocalStack testing)
	Endpoint string

	// Cache TTL for secrets; zero disables caching
	CacheTTL time.Duration
}

// DefaultAWSConfig returns default configuration
func DefaultAWSConfig(region string) *AWSConfig {
	return &AWSConfig{
		Region:   region,
		CacheTTL: DefaultCacheTTL,
	}
}

// secretsManagerAPI is the subset of the Secrets Manager client used here
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type awsSecretSource struct {
	client secretsManagerAPI
	logger *zap.Logger
	cache  *secretCache
}

// NewAWSSecretSource creates a Secrets Manager backed source using the default credential chain
func NewAWSSecretSource(ctx context.Context, cfg *AWSConfig, logger *zap.Logger) (ports.SecretSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOptions []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("AWS Secrets Manager source initialized",
		zap.String("region", cfg.Region),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	return newAWSSecretSource(secretsmanager.NewFromConfig(awsConfig, clientOptions...), cfg.CacheTTL, logger), nil
}

func newAWSSecretSource(client secretsManagerAPI, ttl time.Duration, logger *zap.Logger) *awsSecretSource {
	return &awsSecretSource{
		client: client,
		logger: logger,
		cache:  newSecretCache(ttl),
	}
}

// GetSecret resolves a secret name or ARN. A "#field" suffix selects one key
// from a JSON secret string, e.g. "wompi/prod#integrity_secret".
func (a *awsSecretSource) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		a.logger.Debug("Secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	name, field := splitField(path)

	startTime := time.Now()
	result, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *secretsmanagertypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		a.logger.Error("Failed to retrieve secret",
			zap.String("path", name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get secret %s: %w", name, err)
	}

	a.logger.Info("Secret retrieved",
		zap.String("path", name),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	raw := aws.ToString(result.SecretString)
	secret := &ports.Secret{
		Value:   raw,
		Version: aws.ToString(result.VersionId),
	}
	if result.CreatedDate != nil {
		secret.CreatedAt = result.CreatedDate.UTC().Format(time.RFC3339)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err == nil {
		value, ok := pickValue(doc, field)
		if !ok {
			return nil, fmt.Errorf("secret %s has no usable value", path)
		}
		secret.Value = value
		secret.Metadata = stringMetadata(doc, field)
	} else if field != "" {
		return nil, fmt.Errorf("secret %s is not a JSON document, cannot select field %q", name, field)
	}

	if secret.Value == "" {
		return nil, fmt.Errorf("secret %s is empty", name)
	}

	a.cache.set(path, secret)
	return secret, nil
}
