// Package worker provides a NATS worker that renders broadcast scripts.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/broadcast-service/internal/clip"
	"github.com/book-expert/broadcast-service/internal/core"
	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// DefaultJobTimeout bounds one render job when no timeout is configured.
const DefaultJobTimeout = 5 * time.Minute

// Log messages.
const (
	logParseFailed   = "Failed to parse and validate event: %v"
	logJobFailed     = "Failed to render broadcast for workflow %s: %v"
	logReplyFailed   = "Failed to publish reply event for workflow %s: %v"
	logJobRendered   = "Rendered broadcast for workflow %s to %s"
	logWorkerStarted = "Render worker listening on subject: %s"
)

var (
	// ErrTextKeyEmpty indicates that the event does not name a script.
	ErrTextKeyEmpty = errors.New("text key cannot be empty")
	// ErrSeedNegative indicates that the seed override is negative.
	ErrSeedNegative = errors.New("seed must be non-negative")
)

// NatsWorker listens for render jobs on a NATS subject and processes them.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	scripts        core.ObjectStore
	audio          core.ObjectStore
	renderer       core.BroadcastRenderer
	log            *logger.Logger
	jobTimeout     time.Duration
}

// NewNatsWorker creates a new instance of a NATS worker. Scripts are read
// from scripts and finished WAV files are written to audio.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	scripts core.ObjectStore,
	audio core.ObjectStore,
	renderer core.BroadcastRenderer,
	log *logger.Logger,
	jobTimeout time.Duration,
) *NatsWorker {
	if jobTimeout <= 0 {
		jobTimeout = DefaultJobTimeout
	}

	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		scripts:        scripts,
		audio:          audio,
		renderer:       renderer,
		log:            log,
		jobTimeout:     jobTimeout,
	}
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	w.log.System(logWorkerStarted, w.subject)

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	event, opts, err := w.parseAndValidateEvent(msg)
	if err != nil {
		w.log.Error(logParseFailed, err)

		return
	}

	audioKey, processErr := w.processRenderJob(ctx, event, opts)
	if processErr != nil {
		w.log.Error(logJobFailed, event.Header.WorkflowID, processErr)

		return
	}

	w.log.Info(logJobRendered, event.Header.WorkflowID, audioKey)

	replyEvent := &events.AudioChunkCreatedEvent{
		Header:     event.Header,
		AudioKey:   audioKey,
		PageNumber: event.PageNumber,
		TotalPages: event.TotalPages,
	}

	err = w.publishReplyEvent(msg, replyEvent)
	if err != nil {
		w.log.Error(logReplyFailed, event.Header.WorkflowID, err)
	}
}

// processRenderJob downloads the script, renders it and uploads the WAV file.
func (w *NatsWorker) processRenderJob(
	ctx context.Context,
	event *events.TextProcessedEvent,
	opts core.RenderOptions,
) (string, error) {
	scriptData, err := w.scripts.Download(ctx, event.TextKey)
	if err != nil {
		return "", fmt.Errorf("failed to download script for key '%s': %w", event.TextKey, err)
	}

	clips, err := clip.ParseScript(scriptData)
	if err != nil {
		return "", fmt.Errorf("failed to parse script '%s': %w", event.TextKey, err)
	}

	audioData, err := w.renderer.RenderWAV(ctx, clips, opts)
	if err != nil {
		return "", fmt.Errorf("failed to render script '%s': %w", event.TextKey, err)
	}

	audioKey := uuid.NewString() + ".wav"

	err = w.audio.Upload(ctx, audioKey, audioData)
	if err != nil {
		return "", fmt.Errorf("failed to upload audio data for key '%s': %w", audioKey, err)
	}

	return audioKey, nil
}

// publishReplyEvent marshals and responds with the AudioChunkCreatedEvent.
func (w *NatsWorker) publishReplyEvent(msg *nats.Msg, replyEvent *events.AudioChunkCreatedEvent) error {
	replyData, err := json.Marshal(replyEvent)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}

// parseAndValidateEvent decodes the request and turns its voice and seed
// fields into render options.
func (w *NatsWorker) parseAndValidateEvent(msg *nats.Msg) (*events.TextProcessedEvent, core.RenderOptions, error) {
	var event events.TextProcessedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, core.RenderOptions{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.TextKey == "" {
		return nil, core.RenderOptions{}, ErrTextKeyEmpty
	}

	voice, err := clip.ParseVoice(event.Voice)
	if err != nil {
		return nil, core.RenderOptions{}, err
	}

	if event.Seed < 0 {
		return nil, core.RenderOptions{}, fmt.Errorf("%w: got %d", ErrSeedNegative, event.Seed)
	}

	return &event, core.RenderOptions{
		Seed:         uint64(event.Seed),
		DefaultVoice: voice,
	}, nil
}
