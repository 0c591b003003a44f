package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"promptforge/internal/providers"
	"promptforge/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultBaseURL is where the backend listens out of the box
const DefaultBaseURL = "http://localhost:5000"

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 8 << 20

// Backend endpoints
const (
	pathModels       = "/get_models"
	pathTestLocal    = "/test_llama"
	pathTestRemote   = "/test_chatgpt"
	pathConfigs      = "/ai_configs"
	pathSaveConfig   = "/save_ai_config"
	pathDeleteConfig = "/delete_ai_config"
	pathPrompts      = "/saved_prompts"
	pathSavePrompt   = "/save"
	pathDeletePrompt = "/delete_prompt"
	pathGenerate     = "/generate"
)

// Client talks to the prompt-generation backend
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
	newID   func() string
}

// Option is a functional option for configuring a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestIDs overrides the request id generator
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) {
		c.newID = fn
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !utils.ValidateURL(baseURL) {
		return nil, fmt.Errorf("invalid backend URL: %s", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  zerolog.Nop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListModels lists the models available for a provider/credential pair.
// A message classified as a failure is returned as a KindBackend error.
func (c *Client) ListModels(ctx context.Context, provider providers.Choice, credential string) (ModelList, error) {
	body, err := encode(
		"llmOption", string(provider),
		"apiKey", providers.EffectiveCredential(provider, credential),
	)
	if err != nil {
		return ModelList{}, err
	}
	c.logger.Debug().
		Str("provider", string(provider)).
		Str("api_key", utils.MaskAPIKey(providers.EffectiveCredential(provider, credential))).
		Msg("listing models")

	res, reqID, err := c.do(ctx, http.MethodPost, pathModels, body)
	if err != nil {
		return ModelList{}, err
	}

	list := ModelList{
		Models:  stringArray(res.Get("models")),
		Message: res.Get("message").String(),
	}
	list.Status = Classify(list.Message)
	if list.Status == StatusFailure {
		return list, &Error{Kind: KindBackend, Message: list.Message, RequestID: reqID}
	}
	if list.Status == StatusUnknown {
		list.Status = StatusSuccess
	}
	return list, nil
}

// TestConnection checks that the provider is reachable with the credential.
// Only a message classified as success counts as a passed test.
func (c *Client) TestConnection(ctx context.Context, provider providers.Choice, credential string) (string, error) {
	var (
		res   gjson.Result
		reqID string
		err   error
	)
	if providers.RequiresCredential(provider) {
		body, encErr := encode("api_key", providers.EffectiveCredential(provider, credential))
		if encErr != nil {
			return "", encErr
		}
		res, reqID, err = c.do(ctx, http.MethodPost, pathTestRemote, body)
	} else {
		res, reqID, err = c.do(ctx, http.MethodGet, pathTestLocal, nil)
	}
	if err != nil {
		return "", err
	}

	message := res.Get("message").String()
	if Classify(message) != StatusSuccess {
		if message == "" {
			message = "Test failed: empty response"
		}
		return message, &Error{Kind: KindBackend, Message: message, RequestID: reqID}
	}
	return message, nil
}

// ListConfigs returns the saved configurations
func (c *Client) ListConfigs(ctx context.Context) ([]SavedConfig, error) {
	res, _, err := c.do(ctx, http.MethodGet, pathConfigs, nil)
	if err != nil {
		return nil, err
	}

	configs := []SavedConfig{}
	res.Get("configs").ForEach(func(_, value gjson.Result) bool {
		configs = append(configs, SavedConfig{
			ID:         value.Get("id").Int(),
			Provider:   providers.Choice(value.Get("llm_type").String()),
			Model:      value.Get("model").String(),
			Credential: value.Get("api_key").String(),
		})
		return true
	})
	return configs, nil
}

// SaveConfig persists a configuration. The credential is dropped for
// providers that do not use one.
func (c *Client) SaveConfig(ctx context.Context, req SaveConfigRequest) (string, error) {
	body, err := encode(
		"llmOption", string(req.Provider),
		"model", req.Model,
		"apiKey", providers.EffectiveCredential(req.Provider, req.Credential),
	)
	if err != nil {
		return "", err
	}
	return c.expectSuccess(ctx, pathSaveConfig, body)
}

// DeleteConfig removes a saved configuration
func (c *Client) DeleteConfig(ctx context.Context, id int64) (string, error) {
	body, err := encode("id", id)
	if err != nil {
		return "", err
	}
	return c.expectSuccess(ctx, pathDeleteConfig, body)
}

// ListPrompts returns the saved prompts
func (c *Client) ListPrompts(ctx context.Context) ([]SavedPrompt, error) {
	res, _, err := c.do(ctx, http.MethodGet, pathPrompts, nil)
	if err != nil {
		return nil, err
	}

	prompts := []SavedPrompt{}
	res.Get("prompts").ForEach(func(_, value gjson.Result) bool {
		prompts = append(prompts, SavedPrompt{
			ID:   value.Get("id").Int(),
			Text: value.Get("prompt").String(),
		})
		return true
	})
	return prompts, nil
}

// SavePrompt persists a generated prompt
func (c *Client) SavePrompt(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", NewValidationError("nothing to save: prompt is empty")
	}
	body, err := encode("prompt", prompt)
	if err != nil {
		return "", err
	}
	return c.expectSuccess(ctx, pathSavePrompt, body)
}

// DeletePrompt removes a saved prompt
func (c *Client) DeletePrompt(ctx context.Context, id int64) (string, error) {
	body, err := encode("id", id)
	if err != nil {
		return "", err
	}
	return c.expectSuccess(ctx, pathDeletePrompt, body)
}

// Generate submits the form payload and returns the generated prompt.
// The caller bounds the call through ctx.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	body, err := encode(
		"role", req.Role,
		"task", req.Task,
		"example", req.Example,
		"reasoning", req.Reasoning,
		"externalSource", req.ExternalSource,
		"outputFormat", req.OutputFormat,
		"promptFormat", req.PromptFormat,
		"ragContext", req.RAGContext,
		"llmOption", string(req.Provider),
		"apiKey", providers.EffectiveCredential(req.Provider, req.Credential),
		"selectedModel", req.Model,
	)
	if err != nil {
		return "", err
	}

	res, reqID, err := c.do(ctx, http.MethodPost, pathGenerate, body)
	if err != nil {
		return "", err
	}

	if prompt := res.Get("prompt").String(); prompt != "" {
		return prompt, nil
	}
	message := res.Get("error").String()
	if message == "" {
		message = "No response from server"
	}
	return "", &Error{Kind: KindBackend, Message: message, RequestID: reqID}
}

// expectSuccess posts body and requires a message classified as success
func (c *Client) expectSuccess(ctx context.Context, path string, body []byte) (string, error) {
	res, reqID, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return "", err
	}
	message := res.Get("message").String()
	if Classify(message) != StatusSuccess {
		if message == "" {
			message = "empty response from " + path
		}
		return message, &Error{Kind: KindBackend, Message: message, RequestID: reqID}
	}
	return message, nil
}

// do performs a request and returns the parsed JSON body
func (c *Client) do(ctx context.Context, method, path string, body []byte) (gjson.Result, string, error) {
	reqID := c.newID()
	log := c.logger.With().Str("request_id", reqID).Str("method", method).Str("path", path).Logger()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, utils.JoinURL(c.baseURL, path), reader)
	if err != nil {
		return gjson.Result{}, reqID, &Error{Kind: KindNetwork, Message: err.Error(), RequestID: reqID, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		e := transportError(ctx, err, reqID)
		log.Warn().Err(err).Str("kind", string(e.Kind)).Dur("elapsed", time.Since(start)).Msg("backend request failed")
		return gjson.Result{}, reqID, e
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		e := transportError(ctx, err, reqID)
		log.Warn().Err(err).Msg("reading backend response failed")
		return gjson.Result{}, reqID, e
	}

	log.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Int("bytes", len(data)).Msg("backend response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := http.StatusText(resp.StatusCode)
		if gjson.ValidBytes(data) {
			parsed := gjson.ParseBytes(data)
			if m := parsed.Get("error").String(); m != "" {
				message = m
			} else if m := parsed.Get("message").String(); m != "" {
				message = m
			}
		}
		return gjson.Result{}, reqID, &Error{Kind: KindNetwork, StatusCode: resp.StatusCode, Message: message, RequestID: reqID}
	}

	if !gjson.ValidBytes(data) {
		return gjson.Result{}, reqID, &Error{Kind: KindDecode, Message: "response is not valid JSON", RequestID: reqID}
	}
	return gjson.ParseBytes(data), reqID, nil
}

// transportError classifies an error returned by the HTTP client
func transportError(ctx context.Context, err error, reqID string) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "deadline exceeded", RequestID: reqID, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "deadline exceeded", RequestID: reqID, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindNetwork, Message: "request cancelled", RequestID: reqID, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: err.Error(), RequestID: reqID, Err: err}
}

// encode builds a JSON object from alternating key/value pairs
func encode(pairs ...any) ([]byte, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("encode: odd number of arguments")
	}
	body := []byte("{}")
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("encode: key %v is not a string", pairs[i])
		}
		var err error
		body, err = sjson.SetBytes(body, key, pairs[i+1])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
	}
	return body, nil
}

// stringArray returns the string elements of a JSON array
func stringArray(res gjson.Result) []string {
	out := []string{}
	res.ForEach(func(_, value gjson.Result) bool {
		if value.Type == gjson.String && value.Str != "" {
			out = append(out, value.Str)
		}
		return true
	})
	return out
}
