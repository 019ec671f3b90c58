package videogen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/videorelay/sora-video-api/internal/replicate"
	"github.com/videorelay/sora-video-api/internal/uploader"
)

// DefaultModel is the generation model identifier submitted to the provider.
const DefaultModel = "openai/sora-2-pro"

// ClientFactory builds a generation client scoped to a caller credential.
// Credentials are supplied per request and never shared or cached, so the
// service constructs a fresh client for every call.
type ClientFactory func(token string) (replicate.Client, error)

// Result is the outcome of a successful generation pipeline run.
type Result struct {
	// VideoURL is the permanent hosted URL of the re-uploaded video.
	VideoURL string
	// Model is the generation model identifier used.
	Model string
}

// Service orchestrates one generation request: credential check, input
// normalization, provider submission, output coercion, and re-upload.
type Service struct {
	newClient ClientFactory
	uploader  uploader.Uploader
	model     string
	logger    *slog.Logger
}

// Option is a function that configures a Service.
type Option func(*Service)

// WithModel overrides the generation model identifier.
func WithModel(model string) Option {
	return func(s *Service) {
		if model != "" {
			s.model = model
		}
	}
}

// NewService creates a new generation pipeline service.
func NewService(newClient ClientFactory, up uploader.Uploader, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		newClient: newClient,
		uploader:  up,
		model:     DefaultModel,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the generation model identifier the service submits to.
func (s *Service) Model() string {
	return s.model
}

// Generate runs the full pipeline for one request and blocks until the
// permanent hosted URL is available. Generation can take minutes; the call
// is bounded only by ctx. There are no retries and no partial results: a
// failure at any stage discards all earlier progress.
func (s *Service) Generate(ctx context.Context, token string, in GenerateInput) (Result, error) {
	state := StateReceived

	if token == "" {
		s.fail(&state, replicate.ErrTokenRequired)
		return Result{}, replicate.ErrTokenRequired
	}
	state = s.advance(state, StateCredentialChecked)

	input, err := NormalizeInput(in)
	if err != nil {
		s.fail(&state, err)
		return Result{}, err
	}
	state = s.advance(state, StateInputValidated)

	client, err := s.newClient(token)
	if err != nil {
		s.fail(&state, err)
		return Result{}, fmt.Errorf("create generation client: %w", err)
	}

	state = s.advance(state, StateGenerating)
	s.logger.Info("submitting generation",
		slog.String("model", s.model),
		slog.Int("prompt_len", len(input.Prompt)),
		slog.Float64("seconds", input.Seconds),
		slog.String("aspect_ratio", input.AspectRatio),
		slog.Int("reference_images", len(input.InputReference)),
	)

	prediction, err := client.Run(ctx, s.model, input)
	if err != nil {
		s.fail(&state, err)
		return Result{}, fmt.Errorf("generate video: %w", err)
	}

	// The provider may return a URL-like object rather than a string; the
	// upload stage requires a plain string.
	videoURL, err := replicate.ResolveOutputURL(prediction.Output)
	if err != nil {
		s.fail(&state, err)
		return Result{}, fmt.Errorf("resolve generation output: %w", err)
	}

	state = s.advance(state, StateUploading)
	s.logger.Info("re-uploading generated video",
		slog.String("prediction_id", prediction.ID),
	)

	hostedURL, err := s.uploader.UploadVideo(ctx, videoURL)
	if err != nil {
		s.fail(&state, err)
		return Result{}, fmt.Errorf("upload video: %w", err)
	}

	state = s.advance(state, StateCompleted)
	s.logger.Info("generation completed",
		slog.String("prediction_id", prediction.ID),
		slog.String("state", string(state)),
	)

	return Result{
		VideoURL: hostedURL,
		Model:    s.model,
	}, nil
}

// advance moves the pipeline to the next state, logging the transition.
// Stage ordering is fixed, so an illegal transition is a programming error;
// it is logged rather than surfaced to the caller.
func (s *Service) advance(from State, to State) State {
	next, err := from.Transition(to)
	if err != nil {
		s.logger.Error("illegal pipeline transition",
			slog.String("from", string(from)),
			slog.String("to", string(to)),
		)
		return from
	}
	s.logger.Debug("pipeline state",
		slog.String("state", string(next)),
	)
	return next
}

// fail moves the pipeline to the Failed terminal state and logs the cause.
func (s *Service) fail(state *State, cause error) {
	if next, err := state.Transition(StateFailed); err == nil {
		*state = next
	}
	s.logger.Warn("generation failed",
		slog.String("state", string(*state)),
		slog.String("error", cause.Error()),
	)
}
