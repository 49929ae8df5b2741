package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/config"
)

func TestResolveEndpoint(t *testing.T) {
	host, ssl, err := resolveEndpoint("https://s3.example.com", false)
	require.NoError(t, err)
	assert.Equal(t, "s3.example.com", host)
	assert.True(t, ssl)

	host, ssl, err = resolveEndpoint("http://minio:9000", true)
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", host)
	assert.False(t, ssl)

	host, ssl, err = resolveEndpoint("minio:9000", true)
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", host)
	assert.True(t, ssl)

	_, _, err = resolveEndpoint("", false)
	assert.Error(t, err)
}

func TestNewObjectStore(t *testing.T) {
	store, err := NewObjectStore(config.StorageConfig{
		Endpoint:      "http://127.0.0.1:9000",
		AccessKey:     "access",
		SecretKey:     "secret",
		BucketExports: "reviewhub-exports",
		Region:        "us-east-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", store.client.EndpointURL().Host)
}
