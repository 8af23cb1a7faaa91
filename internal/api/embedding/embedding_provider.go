package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-itinerary-planner/app/observability/metrics"
)

// DefaultDimensions matches the vector(384) column of the pois table.
const DefaultDimensions = 384

var ErrEmptyEmbedding = errors.New("embedding provider returned no vector")

// Provider maps text to a fixed-length, L2-normalized vector.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

var (
	_ Provider = (*GeminiProvider)(nil)
	_ Provider = (*OpenAIProvider)(nil)
)

type GeminiProvider struct {
	client     *genai.Client
	model      string
	dimensions int
	logger     *slog.Logger
}

func NewGeminiProvider(ctx context.Context, apiKey, model string, dimensions int, logger *slog.Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &GeminiProvider{client: client, model: model, dimensions: dimensions, logger: logger}, nil
}

func (g *GeminiProvider) Dimensions() int { return g.dimensions }

func (g *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer("EmbeddingProvider").Start(ctx, "GeminiEmbed", trace.WithAttributes(
		attribute.String("model", g.model),
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	start := time.Now()
	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr[int32](int32(g.dimensions)),
	})
	recordDuration(ctx, "gemini", start)
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini embedding failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "EmbedContent failed")
		return nil, fmt.Errorf("failed to embed text with gemini: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		span.SetStatus(codes.Error, "empty embedding")
		return nil, ErrEmptyEmbedding
	}

	span.SetStatus(codes.Ok, "embedded")
	return Normalize(resp.Embeddings[0].Values), nil
}

type OpenAIProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *slog.Logger
}

func NewOpenAIProvider(apiKey, model string, dimensions int, logger *slog.Logger) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable is not set")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &OpenAIProvider{
		client:     openai.NewClient(apiKey),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
		logger:     logger,
	}, nil
}

func (o *OpenAIProvider) Dimensions() int { return o.dimensions }

func (o *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer("EmbeddingProvider").Start(ctx, "OpenAIEmbed", trace.WithAttributes(
		attribute.String("model", string(o.model)),
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	start := time.Now()
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      o.model,
		Dimensions: o.dimensions,
	})
	recordDuration(ctx, "openai", start)
	if err != nil {
		o.logger.ErrorContext(ctx, "OpenAI embedding failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "CreateEmbeddings failed")
		return nil, fmt.Errorf("failed to embed text with openai: %w", err)
	}
	if len(resp.Data) == 0 {
		span.SetStatus(codes.Error, "empty embedding")
		return nil, ErrEmptyEmbedding
	}

	span.SetStatus(codes.Ok, "embedded")
	return Normalize(resp.Data[0].Embedding), nil
}

// Normalize scales v to unit length. A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func recordDuration(ctx context.Context, provider string, start time.Time) {
	metrics.Get().EmbeddingDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("provider", provider)))
}
