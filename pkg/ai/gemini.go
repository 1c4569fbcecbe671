package ai

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/generative-ai-go/genai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

var (
	ocrDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mathai",
		Subsystem: "ai",
		Name:      "ocr_duration_seconds",
		Help:      "Duration of OCR model requests",
	}, []string{"model"})

	ocrFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mathai",
		Subsystem: "ai",
		Name:      "ocr_failures_total",
		Help:      "Number of failed OCR model requests",
	}, []string{"model"})
)

// GeminiConfig defines configuration options for the Gemini OCR extractor.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Instruction string
	Logger      zerolog.Logger
}

// GeminiExtractor implements TextExtractor against Google's Gemini vision
// models.
type GeminiExtractor struct {
	client *genai.Client
	cfg    GeminiConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGeminiExtractor builds a new extractor and its underlying API client.
// Callers own the Close call.
func NewGeminiExtractor(ctx context.Context, cfg GeminiConfig) (*GeminiExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	if cfg.Instruction == "" {
		return nil, fmt.Errorf("ocr instruction prompt is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &GeminiExtractor{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/ILM-AI-LTD/ilm-mathAI/pkg/ai/gemini"),
		logger: logger,
	}, nil
}

// Close releases the underlying API client.
func (g *GeminiExtractor) Close() error {
	return g.client.Close()
}

// ExtractText sends the image and the fixed transcription instruction to the
// model and returns the extracted text. One synchronous request, no retry,
// whole-response only.
func (g *GeminiExtractor) ExtractText(parent context.Context, image ImageInput) (string, error) {
	ctx, span := g.tracer.Start(parent, "gemini.extract_text", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	payload, mime, err := resolveImage(image)
	if err != nil {
		ocrFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(
		attribute.String("image.mime_type", mime),
		attribute.Int("image.size_bytes", len(payload)),
	)

	model := g.client.GenerativeModel(g.cfg.Model)

	start := time.Now()
	resp, err := model.GenerateContent(ctx,
		&genai.Blob{MIMEType: mime, Data: payload},
		genai.Text(g.cfg.Instruction),
	)
	duration := time.Since(start)
	ocrDuration.WithLabelValues(g.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		ocrFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("gemini extract: %w", err)
	}

	text := firstText(resp)
	if text == "" {
		err := fmt.Errorf("gemini extract: empty response")
		ocrFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	g.logger.Info().
		Str("snippet", snippet(text, 100)).
		Dur("duration", duration).
		Msg("text extracted from image")

	return text, nil
}

// resolveImage loads path-based inputs from disk and fills in a missing MIME
// type from the payload's magic bytes.
func resolveImage(image ImageInput) ([]byte, string, error) {
	data := image.Data
	if len(data) == 0 {
		if image.Path == "" {
			return nil, "", errors.New("image data is required")
		}
		raw, err := os.ReadFile(image.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, "", &ImageNotFoundError{Path: image.Path}
			}
			return nil, "", fmt.Errorf("read image: %w", err)
		}
		data = raw
	}

	mime := strings.TrimSpace(image.MIMEType)
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}

	return data, mime, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	builder := strings.Builder{}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
		if builder.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(builder.String())
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
