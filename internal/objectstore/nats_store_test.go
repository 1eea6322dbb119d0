package objectstore_test

import (
	"context"
	"testing"

	"github.com/book-expert/broadcast-service/internal/core"
	"github.com/book-expert/broadcast-service/internal/objectstore"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestServer starts an in-memory NATS server with JetStream enabled.
func startTestServer(t *testing.T) (*server.Server, nats.JetStreamContext) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	require.NoError(t, err)

	t.Cleanup(func() {
		natsConnection.Close()
		natsServer.Shutdown()
	})

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	return natsServer, jetstreamContext
}

func TestNatsObjectStore_UploadDownload(t *testing.T) {
	t.Parallel()

	_, jetstreamContext := startTestServer(t)

	store, err := objectstore.New(jetstreamContext, "audio-cache")
	require.NoError(t, err)
	assert.Equal(t, "audio-cache", store.Bucket())

	ctx := context.Background()
	key := "taGk.mZW4tVVMtU3RhbmRhcmQtRg.wav"
	uploadData := []byte("RIFF test payload")

	require.NoError(t, store.Upload(ctx, key, uploadData))

	downloadData, err := store.Download(ctx, key)
	require.NoError(t, err)
	require.Equal(t, uploadData, downloadData)
}

func TestNatsObjectStore_MissingObject(t *testing.T) {
	t.Parallel()

	_, jetstreamContext := startTestServer(t)

	store, err := objectstore.New(jetstreamContext, "audio-cache")
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "absent.wav")
	require.ErrorIs(t, err, core.ErrObjectNotFound)
}

func TestNatsObjectStore_BindsExistingBucket(t *testing.T) {
	t.Parallel()

	_, jetstreamContext := startTestServer(t)
	ctx := context.Background()

	first, err := objectstore.New(jetstreamContext, "shared")
	require.NoError(t, err)
	require.NoError(t, first.Upload(ctx, "entry.wav", []byte("x")))

	second, err := objectstore.New(jetstreamContext, "shared")
	require.NoError(t, err)

	data, err := second.Download(ctx, "entry.wav")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}
