package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	"go.uber.org/zap"
)

// ErrSecretNotFound is returned when a backend has no secret at the requested path
var ErrSecretNotFound = errors.New("secret not found")

// localSecretSource reads secrets from files under a base directory.
// WARNING: This is for development only. Use AWS Secrets Manager or Vault in production.
type localSecretSource struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalSecretSource creates a filesystem-backed secret source rooted at basePath
func NewLocalSecretSource(basePath string, logger *zap.Logger) ports.SecretSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &localSecretSource{
		basePath: basePath,
		logger:   logger,
	}
}

// GetSecret reads basePath/path. Files may hold the bare value or a JSON document
// with a "value" key (or a key chosen with a "#field" suffix).
func (s *localSecretSource) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, field := splitField(path)
	filePath := filepath.Join(s.basePath, filepath.Clean("/"+rel))

	s.logger.Debug("Reading secret from filesystem", zap.String("path", rel))

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, rel)
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err == nil {
		value, ok := pickValue(doc, field)
		if !ok {
			return nil, fmt.Errorf("secret %s has no usable value", path)
		}
		created, _ := doc["created_at"].(string)
		return &ports.Secret{
			Value:     value,
			Version:   "v1",
			Metadata:  stringMetadata(doc, field),
			CreatedAt: created,
		}, nil
	}

	if field != "" {
		return nil, fmt.Errorf("secret %s is not a JSON document, cannot select field %q", rel, field)
	}

	value := strings.TrimRight(string(data), "\r\n")
	if value == "" {
		return nil, fmt.Errorf("secret %s is empty", rel)
	}

	return &ports.Secret{
		Value:   value,
		Version: "v1",
	}, nil
}
