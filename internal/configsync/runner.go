package configsync

import (
	"context"
	"fmt"
	"time"

	"promptforge/internal/backend"
	"promptforge/internal/providers"

	"github.com/rs/zerolog"
)

// DefaultGenerateTimeout bounds a generation request
const DefaultGenerateTimeout = 5 * time.Minute

// DefaultRequestTimeout bounds model listing and connection tests
const DefaultRequestTimeout = 30 * time.Second

// Backend is the part of the backend client the runner needs.
type Backend interface {
	ListModels(ctx context.Context, provider providers.Choice, credential string) (backend.ModelList, error)
	TestConnection(ctx context.Context, provider providers.Choice, credential string) (string, error)
	Generate(ctx context.Context, req backend.GenerateRequest) (string, error)
}

// Runner executes tickets against a Backend. It holds no state of its own and
// may be used from any goroutine.
type Runner struct {
	backend         Backend
	logger          zerolog.Logger
	generateTimeout time.Duration
	requestTimeout  time.Duration
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithGenerateTimeout overrides DefaultGenerateTimeout
func WithGenerateTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.generateTimeout = d
		}
	}
}

// WithRequestTimeout overrides DefaultRequestTimeout
func WithRequestTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.requestTimeout = d
		}
	}
}

// WithRunnerLogger sets the logger
func WithRunnerLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner for b
func NewRunner(b Backend, opts ...RunnerOption) *Runner {
	r := &Runner{
		backend:         b,
		logger:          zerolog.Nop(),
		generateTimeout: DefaultGenerateTimeout,
		requestTimeout:  DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GenerateTimeout returns the deadline applied to generations
func (r *Runner) GenerateTimeout() time.Duration {
	return r.generateTimeout
}

// FetchModels runs a model refresh
func (r *Runner) FetchModels(ctx context.Context, t RefreshTicket) ModelsResult {
	ctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	list, err := r.backend.ListModels(ctx, t.Provider, t.Credential)
	if err != nil {
		r.logger.Warn().Err(err).Uint64("generation", t.Generation).Str("provider", string(t.Provider)).Msg("model refresh failed")
		return ModelsResult{Err: err}
	}
	r.logger.Debug().Uint64("generation", t.Generation).Int("models", len(list.Models)).Msg("models loaded")
	return ModelsResult{Models: list.Models}
}

// Test runs a connection test. Failures become failure-tagged results.
func (r *Runner) Test(ctx context.Context, t TestTicket) TestResult {
	ctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	message, err := r.backend.TestConnection(ctx, t.Provider, t.Credential)
	if err != nil {
		r.logger.Info().Err(err).Str("provider", string(t.Provider)).Msg("connection test failed")
		return failure(backend.UserMessage(err))
	}
	return TestResult{Status: backend.StatusSuccess, Message: message}
}

// Generate runs a generation bounded by the generation timeout. Expiry cancels
// the request and yields a KindTimeout error.
func (r *Runner) Generate(ctx context.Context, t GenerationTicket) GenerationResult {
	ctx, cancel := context.WithTimeout(ctx, r.generateTimeout)
	defer cancel()

	start := time.Now()
	output, err := r.backend.Generate(ctx, t.Request)
	if err != nil {
		if backend.IsTimeout(err) {
			err = &backend.Error{
				Kind:    backend.KindTimeout,
				Message: fmt.Sprintf("no response within %s, try a simpler prompt or check your LLM instance", r.generateTimeout),
				Err:     err,
			}
		}
		r.logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Str("model", t.Request.Model).Msg("generation failed")
		return GenerationResult{Err: err}
	}
	r.logger.Info().Dur("elapsed", time.Since(start)).Str("model", t.Request.Model).Msg("prompt generated")
	return GenerationResult{Output: output}
}
