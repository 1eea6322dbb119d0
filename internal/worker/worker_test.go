package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/book-expert/broadcast-service/internal/clip"
	"github.com/book-expert/broadcast-service/internal/core"
	"github.com/book-expert/broadcast-service/internal/objectstore"
	"github.com/book-expert/broadcast-service/internal/worker"
	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSubject   = "test.render"
	replyTimeout  = 5 * time.Second
	noReplyWindow = 300 * time.Millisecond
	testScriptKey = "script.json"
	testScript    = `[{"type":"speak","text":"hello"},{"type":"pause","duration_ms":250}]`
)

var (
	errMockDownload = errors.New("mock download error")
	errMockUpload   = errors.New("mock upload error")
	errMockRender   = errors.New("mock render error")
)

// mockObjectStore is a mock implementation of the ObjectStore interface.
type mockObjectStore struct {
	downloadShouldFail bool
	uploadShouldFail   bool
	downloadData       []byte
	downloadedKey      string
	uploadedKey        string
	uploadedData       []byte
}

func (m *mockObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	if m.downloadShouldFail {
		return nil, errMockDownload
	}

	m.downloadedKey = key

	return m.downloadData, nil
}

func (m *mockObjectStore) Upload(_ context.Context, key string, data []byte) error {
	if m.uploadShouldFail {
		return errMockUpload
	}

	m.uploadedKey = key
	m.uploadedData = data

	return nil
}

// mockRenderer is a mock implementation of the BroadcastRenderer interface.
type mockRenderer struct {
	renderShouldFail bool
	renderedClips    []clip.Clip
	renderedOpts     core.RenderOptions
}

func (m *mockRenderer) RenderWAV(_ context.Context, clips []clip.Clip, opts core.RenderOptions) ([]byte, error) {
	if m.renderShouldFail {
		return nil, errMockRender
	}

	m.renderedClips = clips
	m.renderedOpts = opts

	return []byte("RIFF sample audio"), nil
}

type testHarness struct {
	conn     *nats.Conn
	scripts  *mockObjectStore
	audio    *mockObjectStore
	renderer *mockRenderer
	errChan  chan error
	cancel   context.CancelFunc
}

func createTestNatsClient(t *testing.T) *nats.Conn {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	server := test.RunServer(&opts)

	natsConnection, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)

	t.Cleanup(func() {
		natsConnection.Close()
		server.Shutdown()
	})

	return natsConnection
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "worker-test.log")
	require.NoError(t, err)

	t.Cleanup(func() { _ = testLogger.Close() })

	return testLogger
}

func startWorker(t *testing.T, conn *nats.Conn, scripts, audio core.ObjectStore, renderer core.BroadcastRenderer) (chan error, context.CancelFunc) {
	t.Helper()

	workerInstance := worker.NewNatsWorker(conn, testSubject, scripts, audio, renderer, newTestLogger(t), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- workerInstance.Run(ctx)
	}()

	// Wait for the subscription to reach the server before publishing.
	require.Eventually(t, func() bool {
		return conn.NumSubscriptions() > 0 && conn.Flush() == nil
	}, replyTimeout, 10*time.Millisecond)

	t.Cleanup(cancel)

	return errChan, cancel
}

func setupTest(t *testing.T) *testHarness {
	t.Helper()

	harness := &testHarness{
		conn:     createTestNatsClient(t),
		scripts:  &mockObjectStore{downloadData: []byte(testScript)},
		audio:    &mockObjectStore{},
		renderer: &mockRenderer{},
	}

	harness.errChan, harness.cancel = startWorker(t, harness.conn, harness.scripts, harness.audio, harness.renderer)

	return harness
}

func newEvent(voice string, seed int) *events.TextProcessedEvent {
	return &events.TextProcessedEvent{
		Header: events.EventHeader{
			Timestamp:  time.Now(),
			WorkflowID: uuid.NewString(),
			EventID:    uuid.NewString(),
			UserID:     "",
			TenantID:   "",
		},
		TextKey:           testScriptKey,
		PNGKey:            "",
		PageNumber:        2,
		TotalPages:        5,
		Voice:             voice,
		Seed:              seed,
		NGL:               0,
		TopP:              0,
		RepetitionPenalty: 0,
		Temperature:       0,
	}
}

func request(t *testing.T, conn *nats.Conn, event *events.TextProcessedEvent, timeout time.Duration) (*nats.Msg, error) {
	t.Helper()

	eventData, err := json.Marshal(event)
	require.NoError(t, err)

	return conn.Request(testSubject, eventData, timeout)
}

func TestMessageHandler_Success(t *testing.T) {
	t.Parallel()

	harness := setupTest(t)
	testEvent := newEvent("c", 42)

	replyMsg, err := request(t, harness.conn, testEvent, replyTimeout)
	require.NoError(t, err, "Request should succeed and receive a reply")

	var replyEvent events.AudioChunkCreatedEvent

	require.NoError(t, json.Unmarshal(replyMsg.Data, &replyEvent))

	assert.Equal(t, testScriptKey, harness.scripts.downloadedKey)
	assert.Equal(t, []clip.Clip{clip.NewSpeak("hello"), clip.NewPause(250)}, harness.renderer.renderedClips)
	assert.Equal(t, core.RenderOptions{Seed: 42, DefaultVoice: clip.VoiceC}, harness.renderer.renderedOpts)
	assert.NotEmpty(t, harness.audio.uploadedKey, "An audio key should have been generated and uploaded")
	assert.Equal(t, []byte("RIFF sample audio"), harness.audio.uploadedData)

	assert.Equal(t, harness.audio.uploadedKey, replyEvent.AudioKey)
	assert.Equal(t, testEvent.Header.WorkflowID, replyEvent.Header.WorkflowID)
	assert.Equal(t, 2, replyEvent.PageNumber)
	assert.Equal(t, 5, replyEvent.TotalPages)

	harness.cancel()

	assert.NoError(t, <-harness.errChan, "worker.Run should not error on graceful shutdown")
}

func TestMessageHandler_NoReplyOnFailure(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		prepare func(*testHarness)
		event   *events.TextProcessedEvent
	}{
		"unknown voice":    {event: newEvent("Z", 0)},
		"negative seed":    {event: newEvent("", -1)},
		"download fails":   {prepare: func(h *testHarness) { h.scripts.downloadShouldFail = true }, event: newEvent("", 0)},
		"invalid script":   {prepare: func(h *testHarness) { h.scripts.downloadData = []byte("[]") }, event: newEvent("", 0)},
		"render fails":     {prepare: func(h *testHarness) { h.renderer.renderShouldFail = true }, event: newEvent("", 0)},
		"upload fails":     {prepare: func(h *testHarness) { h.audio.uploadShouldFail = true }, event: newEvent("", 0)},
		"missing text key": {event: &events.TextProcessedEvent{}},
	}

	for name, testCase := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			harness := setupTest(t)
			if testCase.prepare != nil {
				testCase.prepare(harness)
			}

			_, err := request(t, harness.conn, testCase.event, noReplyWindow)
			require.ErrorIs(t, err, nats.ErrTimeout)
			assert.Empty(t, harness.audio.uploadedKey)
		})
	}
}

func TestMessageHandler_WithJetStreamBuckets(t *testing.T) {
	t.Parallel()

	conn := createTestNatsClient(t)

	jetstreamContext, err := conn.JetStream()
	require.NoError(t, err)

	scripts, err := objectstore.New(jetstreamContext, "SCRIPTS")
	require.NoError(t, err)

	audio, err := objectstore.New(jetstreamContext, "AUDIO")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, scripts.Upload(ctx, testScriptKey, []byte(testScript)))

	startWorker(t, conn, scripts, audio, &mockRenderer{})

	replyMsg, err := request(t, conn, newEvent("", 0), replyTimeout)
	require.NoError(t, err)

	var replyEvent events.AudioChunkCreatedEvent

	require.NoError(t, json.Unmarshal(replyMsg.Data, &replyEvent))

	data, err := audio.Download(ctx, replyEvent.AudioKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF sample audio"), data)
}
