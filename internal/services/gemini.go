package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

// GeminiConfig is built once at startup and never modified afterwards.
type GeminiConfig struct {
	APIKey         string
	TextModel      string
	VisionModel    string
	Temperature    float32
	TopP           float32
	ConcurrentReqs int
}

// Backend is one generative model deployment with a text-only and a
// text+image variant.
type Backend interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, pngImage []byte) (string, error)
}

// BackendFactory creates the backend on first use.
type BackendFactory func(ctx context.Context, cfg GeminiConfig) (Backend, error)

// Gateway sends prompts to the model. The credential is only checked when the
// first request is made, so the server can start without one.
type Gateway struct {
	cfg     GeminiConfig
	factory BackendFactory

	mu      sync.Mutex
	backend Backend
	closer  func() error

	rateChan chan struct{} // Token bucket
}

type GatewayOption func(*Gateway)

// WithBackendFactory replaces the genai client, mainly for tests.
func WithBackendFactory(f BackendFactory) GatewayOption {
	return func(g *Gateway) { g.factory = f }
}

func NewGateway(cfg GeminiConfig, opts ...GatewayOption) *Gateway {
	if cfg.ConcurrentReqs <= 0 {
		cfg.ConcurrentReqs = 1
	}

	rateChan := make(chan struct{}, cfg.ConcurrentReqs)
	for i := 0; i < cfg.ConcurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	g := &Gateway{
		cfg:      cfg,
		factory:  newGenaiBackend,
		rateChan: rateChan,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Close releases the underlying client if one was ever created.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closer != nil {
		return g.closer()
	}
	return nil
}

// Dispatch sends prompt to the vision variant when image is non-empty and to
// the text variant otherwise. It makes exactly one outbound call and never
// retries.
func (g *Gateway) Dispatch(ctx context.Context, prompt string, image []byte) (string, error) {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return "", &Error{Kind: BackendUnavailable, Message: "The AI service is not configured"}
	}

	backend, err := g.backendFor(ctx)
	if err != nil {
		return "", &Error{Kind: BackendUnavailable, Message: "The AI service is unavailable", Err: err}
	}

	if err := g.acquireRate(ctx); err != nil {
		return "", &Error{Kind: RequestFailed, Message: "The AI request was cancelled", Err: err}
	}
	defer g.releaseRate()

	variant, model := "text", g.cfg.TextModel
	start := time.Now()

	var text string
	if len(image) > 0 {
		variant, model = "vision", g.cfg.VisionModel
		text, err = backend.GenerateWithImage(ctx, prompt, image)
	} else {
		text, err = backend.GenerateText(ctx, prompt)
	}

	logger := log.With().
		Str("variant", variant).
		Str("model", model).
		Int("prompt_len", len(prompt)).
		Dur("duration", time.Since(start)).
		Logger()

	if err != nil {
		classified := classifyBackendError(err)
		logger.Warn().Err(err).Stringer("kind", classified.Kind).Msg("gemini request failed")
		return "", classified
	}

	if strings.TrimSpace(text) == "" {
		logger.Warn().Msg("gemini returned empty text")
		return "", &Error{Kind: EmptyResponse, Message: "The AI returned an empty response"}
	}

	logger.Info().Int("reply_len", len(text)).Msg("gemini request completed")
	return text, nil
}

func (g *Gateway) backendFor(ctx context.Context) (Backend, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.backend != nil {
		return g.backend, nil
	}

	b, err := g.factory(ctx, g.cfg)
	if err != nil {
		return nil, err
	}
	g.backend = b
	if c, ok := b.(interface{ Close() error }); ok {
		g.closer = c.Close
	}
	return b, nil
}

// acquireRate blocks until a rate slot is available
func (g *Gateway) acquireRate(ctx context.Context) error {
	select {
	case <-g.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gateway) releaseRate() {
	g.rateChan <- struct{}{}
}

func classifyBackendError(err error) *Error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &Error{Kind: EmptyResponse, Message: "The AI returned no usable text", Err: err}
	}

	if isCredentialError(err) {
		return &Error{Kind: BackendUnavailable, Message: "The AI service rejected its credentials", Err: err}
	}

	return &Error{Kind: RequestFailed, Message: "The AI request failed", Err: err}
}

func isCredentialError(err error) bool {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code == http.StatusUnauthorized || code == http.StatusForbidden {
			return true
		}
		if apiErr.Reason() == "API_KEY_INVALID" {
			return true
		}
		if st := apiErr.GRPCStatus(); st != nil {
			switch st.Code() {
			case codes.Unauthenticated, codes.PermissionDenied:
				return true
			}
		}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusUnauthorized || gErr.Code == http.StatusForbidden
	}
	return false
}

// genaiBackend talks to Gemini through the official client.
type genaiBackend struct {
	client *genai.Client
	text   *genai.GenerativeModel
	vision *genai.GenerativeModel
}

func newGenaiBackend(ctx context.Context, cfg GeminiConfig) (Backend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	text := client.GenerativeModel(cfg.TextModel)
	text.SetTemperature(cfg.Temperature)
	text.SetTopP(cfg.TopP)

	vision := client.GenerativeModel(cfg.VisionModel)
	vision.SetTemperature(cfg.Temperature)
	vision.SetTopP(cfg.TopP)

	log.Info().Str("text_model", cfg.TextModel).Str("vision_model", cfg.VisionModel).Msg("gemini client initialized")

	return &genaiBackend{client: client, text: text, vision: vision}, nil
}

func (b *genaiBackend) Close() error {
	return b.client.Close()
}

func (b *genaiBackend) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := b.text.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	logFinishReasons(resp)
	return extractText(resp), nil
}

func (b *genaiBackend) GenerateWithImage(ctx context.Context, prompt string, pngImage []byte) (string, error) {
	resp, err := b.vision.GenerateContent(ctx, genai.Text(prompt), genai.ImageData("png", pngImage))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	logFinishReasons(resp)
	return extractText(resp), nil
}

func logFinishReasons(resp *genai.GenerateContentResponse) {
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Warn().Int("candidate", i).Str("finish_reason", fmt.Sprint(cand.FinishReason)).Msg("gemini stopped early")
		}
	}
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
