package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeSecretFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLocalSecretSource_GetSecret(t *testing.T) {
	dir := t.TempDir()
	writeSecretFile(t, dir, "sandbox/integrity", "test_integrity_abc\n")
	writeSecretFile(t, dir, "sandbox/events.json", `{"value":"test_events_xyz","created_at":"2024-01-01T00:00:00Z","owner":"payments"}`)
	writeSecretFile(t, dir, "sandbox/bundle.json", `{"integrity_secret":"i-123","events_secret":"e-456"}`)
	writeSecretFile(t, dir, "sandbox/empty", "\n")

	source := NewLocalSecretSource(dir, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name      string
		path      string
		wantValue string
		wantErr   bool
	}{
		{name: "plain text trims trailing newline", path: "sandbox/integrity", wantValue: "test_integrity_abc"},
		{name: "json value key", path: "sandbox/events.json", wantValue: "test_events_xyz"},
		{name: "json field selector", path: "sandbox/bundle.json#events_secret", wantValue: "e-456"},
		{name: "ambiguous json without selector", path: "sandbox/bundle.json", wantErr: true},
		{name: "missing field", path: "sandbox/bundle.json#private_key", wantErr: true},
		{name: "field selector on plain text", path: "sandbox/integrity#value", wantErr: true},
		{name: "empty file", path: "sandbox/empty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := source.GetSecret(ctx, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, secret.Value)
		})
	}
}

func TestLocalSecretSource_Metadata(t *testing.T) {
	dir := t.TempDir()
	writeSecretFile(t, dir, "events.json", `{"value":"ev","created_at":"2024-01-01T00:00:00Z","owner":"payments"}`)

	secret, err := NewLocalSecretSource(dir, nil).GetSecret(context.Background(), "events.json")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01T00:00:00Z", secret.CreatedAt)
	assert.Equal(t, "payments", secret.Metadata["owner"])
	assert.NotContains(t, secret.Metadata, "value")
}

func TestLocalSecretSource_NotFound(t *testing.T) {
	source := NewLocalSecretSource(t.TempDir(), nil)

	_, err := source.GetSecret(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestLocalSecretSource_StaysInsideBasePath(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "secrets")
	writeSecretFile(t, root, "outside", "leaked")
	require.NoError(t, os.MkdirAll(base, 0o700))

	_, err := NewLocalSecretSource(base, nil).GetSecret(context.Background(), "../outside")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestLocalSecretSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalSecretSource(t.TempDir(), nil).GetSecret(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnvSecretSource(t *testing.T) {
	t.Setenv("WOMPI_TEST_EVENTS_SECRET", "from-env")
	source := NewEnvSecretSource()

	secret, err := source.GetSecret(context.Background(), "WOMPI_TEST_EVENTS_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", secret.Value)

	_, err = source.GetSecret(context.Background(), "WOMPI_TEST_UNSET_SECRET")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestNewSecretSource_Backends(t *testing.T) {
	ctx := context.Background()

	src, err := NewSecretSource(ctx, SourceConfig{Backend: BackendEnv}, nil)
	require.NoError(t, err)
	assert.IsType(t, &envSecretSource{}, src)

	src, err = NewSecretSource(ctx, SourceConfig{Backend: BackendLocal, LocalPath: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &localSecretSource{}, src)

	_, err = NewSecretSource(ctx, SourceConfig{Backend: BackendAWS}, nil)
	assert.Error(t, err)

	_, err = NewSecretSource(ctx, SourceConfig{Backend: BackendVault}, nil)
	assert.Error(t, err)

	_, err = NewSecretSource(ctx, SourceConfig{Backend: "gcp"}, nil)
	assert.Error(t, err)
}
