// Package backend implements the HTTP client for the translation service.
//
// The service contract: GET /api/v1/health answers 2xx when the service is up;
// POST /api/v1/translate takes {text, source_language, target_language} and
// answers {translated_text}; error bodies carry {detail} with a human-readable
// reason. The text-to-speech and language-listing endpoints follow the same
// shape.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anuvadml/anuvad/internal/core"
)

// API endpoints and paths.
const (
	apiHealth       = "/api/v1/health"
	apiTranslate    = "/api/v1/translate"
	apiLanguages    = "/api/v1/languages"
	apiTextToSpeech = "/api/v1/text-to-speech"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
)

// DefaultTimeout bounds every backend call when the host supplies no value.
const DefaultTimeout = 10 * time.Second

// Static errors.
var (
	// ErrEmptyTranslation indicates a 2xx translate response without text.
	ErrEmptyTranslation = errors.New("service returned empty translation")
	// ErrEmptyAudioURL indicates a 2xx synthesis response without an audio URL.
	ErrEmptyAudioURL = errors.New("service returned empty audio URL")
)

// APIError is a non-2xx response from the service. Detail carries the
// service's reason verbatim when the body held one.
type APIError struct {
	StatusCode int
	Detail     string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("service returned status %d", e.StatusCode)
	}

	return fmt.Sprintf("service returned status %d: %s", e.StatusCode, e.Detail)
}

// Reason returns the service-provided reason, empty when the error body
// carried none.
func (e *APIError) Reason() string {
	return e.Detail
}

// Client is an HTTP client for the translation service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// translateRequest is the JSON payload for POST /api/v1/translate.
type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// translateResponse is the JSON body of a successful translate call.
type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// errorResponse is the JSON body the service sends with non-2xx statuses.
type errorResponse struct {
	Detail string `json:"detail"`
}

// LanguageInfo is one entry of GET /api/v1/languages.
type LanguageInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SynthesisRequest is the JSON payload for POST /api/v1/text-to-speech.
type SynthesisRequest struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	VoiceSpeed float64 `json:"voice_speed"`
}

// SynthesisResult is the JSON body of a successful synthesis call. AudioURL is
// relative to the service base URL.
type SynthesisResult struct {
	AudioURL string  `json:"audio_url"`
	Duration float64 `json:"duration"`
}

// New creates a client for the service at baseURL (protocol and port included,
// e.g. "http://localhost:8000"). The timeout applies to every request; zero or
// negative values fall back to DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Health verifies the service is running. Any non-2xx status or transport
// failure is returned as an error; callers map it to a disconnected state.
func (c *Client) Health(ctx context.Context) error {
	url := c.baseURL + apiHealth

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed for service at %s: %w", c.baseURL, err)
	}

	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}

	return nil
}

// Translate submits one translation request and returns the translated text
// wrapped in a Result. Non-2xx responses come back as *APIError with the
// service's {detail} reason when present.
func (c *Client) Translate(ctx context.Context, req core.Request) (core.Result, error) {
	payload := translateRequest{
		Text:           req.Text,
		SourceLanguage: req.Source,
		TargetLanguage: req.Target,
	}

	var response translateResponse

	err := c.postJSON(ctx, apiTranslate, payload, &response)
	if err != nil {
		return core.Result{}, fmt.Errorf("translate request failed: %w", err)
	}

	if response.TranslatedText == "" {
		return core.Result{}, ErrEmptyTranslation
	}

	return core.Result{
		OriginalText:   req.Text,
		TranslatedText: response.TranslatedText,
		Source:         req.Source,
		Target:         req.Target,
	}, nil
}

// Languages fetches the full set of languages the service supports.
func (c *Client) Languages(ctx context.Context) ([]LanguageInfo, error) {
	url := c.baseURL + apiLanguages

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create languages request: %w", err)
	}

	req.Header.Set(headerAccept, contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languages request failed for service at %s: %w", c.baseURL, err)
	}

	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, c.parseErrorResponse(resp)
	}

	var languages []LanguageInfo

	err = json.NewDecoder(resp.Body).Decode(&languages)
	if err != nil {
		return nil, fmt.Errorf("failed to decode languages response: %w", err)
	}

	return languages, nil
}

// Synthesize asks the service to render text as speech audio and returns the
// URL of the generated file.
func (c *Client) Synthesize(ctx context.Context, req SynthesisRequest) (SynthesisResult, error) {
	var result SynthesisResult

	err := c.postJSON(ctx, apiTextToSpeech, req, &result)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("synthesis request failed: %w", err)
	}

	if result.AudioURL == "" {
		return SynthesisResult{}, ErrEmptyAudioURL
	}

	return result, nil
}

// FetchAudio downloads a generated audio file by the relative URL returned
// from Synthesize.
func (c *Client) FetchAudio(ctx context.Context, audioURL string) ([]byte, error) {
	url := c.baseURL + audioURL

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio fetch failed for %s: %w", audioURL, err)
	}

	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, c.parseErrorResponse(resp)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	return audioData, nil
}

// postJSON sends a JSON POST to the given path and decodes a JSON response
// into out. Non-2xx responses are returned as *APIError.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + path

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeJSON)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf(
			"failed to send request to service at %s: %w",
			c.baseURL,
			err,
		)
	}

	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return c.parseErrorResponse(resp)
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// parseErrorResponse attempts to decode a structured {detail} error from the
// service. If structured parsing fails, the status alone is reported; the
// caller then falls back to a generic user-facing reason.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errorResp errorResponse

	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Detail: ""}
	}

	return &APIError{StatusCode: resp.StatusCode, Detail: errorResp.Detail}
}

func isSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
