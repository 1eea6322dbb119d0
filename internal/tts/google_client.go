// Package tts resolves text and a voice model into decoded audio samples,
// fetching from a synthesis backend or the audio cache.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Google Text-to-Speech API details.
const (
	DefaultGoogleEndpoint = "https://texttospeech.googleapis.com/v1beta1/text:synthesize"
	googleLanguageCode    = "en-us"
	googleAudioEncoding   = "LINEAR16"
	googleVoicePrefix     = "en-US-Standard-"
	googleBackendName     = "google"
)

// HTTP headers.
const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerUserProject   = "x-goog-user-project"
	contentTypeJSON     = "application/json"
	bearerPrefix        = "Bearer "
)

// Error messages.
const (
	errFmtServiceErrorWithCode = "google tts error (%s): %s (code: %d)"
	errFmtServiceNonOKStatus   = "google tts returned non-OK status: %s, body: %s"
)

var (
	// ErrMissingBearer is returned when no bearer credential is configured.
	ErrMissingBearer = errors.New("missing bearer credential for google tts")
	// ErrEmptyAudioContent is returned when the response carries no audio.
	ErrEmptyAudioContent = errors.New("google tts returned empty audio content")
)

// GoogleConfig configures the Google Text-to-Speech backend.
type GoogleConfig struct {
	Endpoint string
	Bearer   string
	Project  string
}

// GoogleClient implements core.Synthesizer against Google Text-to-Speech.
type GoogleClient struct {
	httpClient *http.Client
	config     GoogleConfig
}

type googleRequest struct {
	Input       googleInput       `json:"input"`
	Voice       googleVoice       `json:"voice"`
	AudioConfig googleAudioConfig `json:"audioConfig"`
}

type googleInput struct {
	Text string `json:"text"`
}

type googleVoice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type googleAudioConfig struct {
	AudioEncoding string `json:"audioEncoding"`
}

type googleResponse struct {
	AudioContent string `json:"audioContent"`
}

type googleErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGoogleClient creates a Google backend. A nil httpClient uses http.DefaultClient;
// an empty endpoint uses DefaultGoogleEndpoint.
func NewGoogleClient(cfg GoogleConfig, httpClient *http.Client) (*GoogleClient, error) {
	if cfg.Bearer == "" {
		return nil, ErrMissingBearer
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultGoogleEndpoint
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &GoogleClient{httpClient: httpClient, config: cfg}, nil
}

// Name returns the backend name.
func (c *GoogleClient) Name() string {
	return googleBackendName
}

// VoiceName formats a voice model letter as a Google voice name.
func (c *GoogleClient) VoiceName(model string) string {
	return googleVoicePrefix + model
}

// Synthesize requests LINEAR16 audio for text and returns the decoded payload.
// Network failures, 429 and 5xx responses are retryable.
func (c *GoogleClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	requestBody, err := json.Marshal(googleRequest{
		Input:       googleInput{Text: text},
		Voice:       googleVoice{LanguageCode: googleLanguageCode, Name: voice},
		AudioConfig: googleAudioConfig{AudioEncoding: googleAudioEncoding},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAuthorization, bearerPrefix+c.config.Bearer)

	if c.config.Project != "" {
		httpReq.Header.Set(headerUserProject, c.config.Project)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, Retryable(fmt.Errorf("failed to send request to %s: %w", c.config.Endpoint, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Retryable(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := parseErrorResponse(resp.Status, body)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, Retryable(statusErr)
		}

		return nil, statusErr
	}

	var payload googleResponse

	err = parseJSON(body, &payload)
	if err != nil {
		return nil, err
	}

	if payload.AudioContent == "" {
		return nil, ErrEmptyAudioContent
	}

	audio, err := base64.StdEncoding.DecodeString(payload.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %w", err)
	}

	return audio, nil
}

// parseErrorResponse decodes the structured Google error, falling back to the raw body.
func parseErrorResponse(status string, body []byte) error {
	var errorResp googleErrorResponse

	err := parseJSON(body, &errorResp)
	if err == nil && errorResp.Error.Message != "" {
		return fmt.Errorf(errFmtServiceErrorWithCode, status, errorResp.Error.Message, errorResp.Error.Code)
	}

	return fmt.Errorf(errFmtServiceNonOKStatus, status, string(body))
}
