//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadforge/internal/testutil"
)

func TestS3Store_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRustFSContainer(ctx, t)
	defer rc.Terminate(ctx)

	store, err := NewS3Store(ctx, S3Config{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "leadforge-test",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, store.EnsureBucket(ctx))

	content := []byte("Enterprise pricing starts at $500 per month.")
	path, err := store.Put(ctx, "doc-123/pricing.txt", content)
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	got, err := store.Get(ctx, "doc-123/pricing.txt")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, store.Delete(ctx, "doc-123/pricing.txt"))

	_, err = store.Get(ctx, "doc-123/pricing.txt")
	assert.Error(t, err)
}
