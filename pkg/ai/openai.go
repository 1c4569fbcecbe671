package ai

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	evalDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mathai",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of evaluation model requests",
	}, []string{"model"})

	evalFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mathai",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of failed evaluation model requests",
	}, []string{"model"})
)

//go:embed verdict_schema.json
var verdictSchemaJSON string

var (
	verdictSchemaOnce sync.Once
	verdictSchemaVal  *jsonschema.Schema
)

// verdictSchema compiles the embedded envelope schema once. The schema checks
// presence and types only; verdict values are case-normalized afterwards.
func verdictSchema() *jsonschema.Schema {
	verdictSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("verdict.schema.json", strings.NewReader(verdictSchemaJSON)); err != nil {
			panic(fmt.Sprintf("ai: add verdict schema resource: %v", err))
		}
		verdictSchemaVal = compiler.MustCompile("verdict.schema.json")
	})
	return verdictSchemaVal
}

// OpenAIConfig defines configuration options for the OpenAI evaluator.
type OpenAIConfig struct {
	APIKey       string
	Model        string
	MaxTokens    int
	Temperature  float32
	SystemPrompt string
	Logger       zerolog.Logger
}

// OpenAIEvaluator implements SolutionEvaluator against the OpenAI chat
// completion API.
type OpenAIEvaluator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIEvaluator builds a new evaluator using the provided configuration.
func NewOpenAIEvaluator(cfg OpenAIConfig) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.SystemPrompt == "" {
		return nil, fmt.Errorf("tutoring policy prompt is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/ILM-AI-LTD/ilm-mathAI/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIEvaluator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Evaluate sends one student step to the model and parses the structured
// judgment. A single synchronous request is made; failures are never retried
// here, the caller owns the retry decision.
func (e *OpenAIEvaluator) Evaluate(parent context.Context, input EvaluationInput) (EvaluationVerdict, error) {
	ctx, span := e.tracer.Start(parent, "openai.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: e.cfg.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(input),
			},
		},
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	evalDuration.WithLabelValues(e.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		evalFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationVerdict{}, fmt.Errorf("openai evaluate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		evalFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationVerdict{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	verdict, err := ParseVerdict(content)
	if err != nil {
		evalFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationVerdict{}, err
	}

	e.logger.Info().
		Str("verdict", string(verdict.Verdict)).
		Dur("duration", duration).
		Msg("solution evaluated")

	return verdict, nil
}

func buildUserPrompt(input EvaluationInput) string {
	builder := strings.Builder{}
	builder.WriteString("Question: ")
	builder.WriteString(input.Question)
	builder.WriteString("\nCorrect Answer: ")
	builder.WriteString(input.CorrectAnswer)
	builder.WriteString("\nStudent's previous steps (context only, check this only when necessary, do not judge): ")
	builder.WriteString(input.PriorHistory)
	builder.WriteString("\nStudent's Current Answer: ")
	builder.WriteString(input.StudentWork)
	builder.WriteString("\nEvaluate this step only.")
	return builder.String()
}

// ParseVerdict strips common code-fence wrapping, decodes the JSON envelope
// and validates its shape. A response that survives fence-stripping but is
// not a valid envelope yields a *MalformedResponseError carrying the raw
// text, so callers can distinguish a model contract violation from a
// transport failure.
func ParseVerdict(content string) (EvaluationVerdict, error) {
	cleaned := StripCodeFences(content)

	var decoded interface{}
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return EvaluationVerdict{}, &MalformedResponseError{Raw: content, Cause: err}
	}

	if err := verdictSchema().Validate(decoded); err != nil {
		return EvaluationVerdict{}, &MalformedResponseError{Raw: content, Cause: err}
	}

	var verdict EvaluationVerdict
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		return EvaluationVerdict{}, &MalformedResponseError{Raw: content, Cause: err}
	}

	verdict.Verdict = NormalizeVerdict(string(verdict.Verdict))
	return verdict, nil
}

// StripCodeFences removes triple-backtick wrapping the model sometimes adds
// around its JSON reply. Stripping an unfenced reply is a no-op.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
