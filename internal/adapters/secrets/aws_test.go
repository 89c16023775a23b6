package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	secretsmanagertypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSecretsManager struct {
	values map[string]string
	calls  int
	err    error
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	value, ok := f.values[aws.ToString(in.SecretId)]
	if !ok {
		return nil, &secretsmanagertypes.ResourceNotFoundException{Message: aws.String("not found")}
	}
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(value),
		VersionId:    aws.String("v-1"),
		CreatedDate:  &created,
	}, nil
}

func TestAWSSecretSource_GetSecret(t *testing.T) {
	fake := &fakeSecretsManager{values: map[string]string{
		"wompi/sandbox/private-key": "prv_test_123",
		"wompi/sandbox":             `{"integrity_secret":"test_integrity","events_secret":"test_events"}`,
	}}
	source := newAWSSecretSource(fake, time.Minute, zap.NewNop())
	ctx := context.Background()

	secret, err := source.GetSecret(ctx, "wompi/sandbox/private-key")
	require.NoError(t, err)
	assert.Equal(t, "prv_test_123", secret.Value)
	assert.Equal(t, "v-1", secret.Version)
	assert.Equal(t, "2024-03-01T12:00:00Z", secret.CreatedAt)

	secret, err = source.GetSecret(ctx, "wompi/sandbox#events_secret")
	require.NoError(t, err)
	assert.Equal(t, "test_events", secret.Value)
	assert.Equal(t, "test_integrity", secret.Metadata["integrity_secret"])

	_, err = source.GetSecret(ctx, "wompi/sandbox#missing")
	assert.Error(t, err)

	_, err = source.GetSecret(ctx, "wompi/sandbox/private-key#field")
	assert.Error(t, err)
}

func TestAWSSecretSource_Cache(t *testing.T) {
	fake := &fakeSecretsManager{values: map[string]string{"k": "v"}}
	source := newAWSSecretSource(fake, time.Minute, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := source.GetSecret(context.Background(), "k")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fake.calls)

	source.cache.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err := source.GetSecret(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
}

func TestAWSSecretSource_Errors(t *testing.T) {
	source := newAWSSecretSource(&fakeSecretsManager{values: map[string]string{}}, 0, zap.NewNop())
	_, err := source.GetSecret(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	boom := errors.New("throttled")
	source = newAWSSecretSource(&fakeSecretsManager{err: boom}, 0, zap.NewNop())
	_, err = source.GetSecret(context.Background(), "any")
	assert.ErrorIs(t, err, boom)
}
