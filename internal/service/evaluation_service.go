package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ILM-AI-LTD/ilm-mathAI/internal/dto"
	"github.com/ILM-AI-LTD/ilm-mathAI/pkg/ai"
)

// FullEvaluationInput carries one handwritten step plus the caller-held
// session state round-tripped from the previous response.
type FullEvaluationInput struct {
	Image         ai.ImageInput
	Question      string `validate:"required"`
	CorrectAnswer string `validate:"required"`
	StepCount     int    `validate:"gte=0"`
	ChatHistory   string
}

// EvaluationService orchestrates OCR and judgment for a tutoring session
// step. It holds no state between calls: the step counter and transcript
// live with the caller, so any instance can serve any request.
type EvaluationService interface {
	ExtractText(ctx context.Context, image string) (dto.OCRResponse, error)
	EvaluateText(ctx context.Context, req dto.EvaluateRequest) (dto.EvaluateResponse, error)
	FullEvaluation(ctx context.Context, input FullEvaluationInput) (dto.FullEvaluationResponse, error)
}

type evaluationService struct {
	extractor ai.TextExtractor
	evaluator ai.SolutionEvaluator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEvaluationService constructs the orchestrator over the two AI clients.
func NewEvaluationService(extractor ai.TextExtractor, evaluator ai.SolutionEvaluator, validate *validator.Validate, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		extractor: extractor,
		evaluator: evaluator,
		validator: validate,
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
	}
}

// ExtractText validates the base64 payload and runs the OCR stage alone.
// Validation failures return an error; provider failures are reported inside
// the response so the handler can map them to a 500.
func (s *evaluationService) ExtractText(ctx context.Context, image string) (dto.OCRResponse, error) {
	decoded, mime, err := NormalizeImagePayload(image)
	if err != nil {
		return dto.OCRResponse{}, err
	}

	text, err := s.extractor.ExtractText(ctx, ai.ImageInput{Data: decoded, MIMEType: mime})
	if err != nil {
		s.logger.Error().Err(err).Msg("ocr extraction failed")
		msg := ocrErrorMessage(err)
		return dto.OCRResponse{Success: false, Error: &msg}, nil
	}

	return dto.OCRResponse{Success: true, Text: &text}, nil
}

// EvaluateText judges a typed student step. The step counter advances on
// both success and evaluator failure; only validation failures leave it
// untouched.
func (s *evaluationService) EvaluateText(ctx context.Context, req dto.EvaluateRequest) (dto.EvaluateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EvaluateResponse{}, err
	}

	next := req.StepCount + 1
	verdict, err := s.evaluator.Evaluate(ctx, ai.EvaluationInput{
		Question:      req.Question,
		CorrectAnswer: req.CorrectAnswer,
		StudentWork:   req.StudentAnswer,
		PriorHistory:  req.ChatHistory,
	})
	if err != nil {
		s.logEvaluatorFailure(err)
		msg := evaluationErrorMessage(err)
		return dto.EvaluateResponse{
			Success:       false,
			NextStepCount: next,
			Error:         &msg,
		}, nil
	}

	evaluation := verdict.Evaluation
	hint := verdict.Hint
	return dto.EvaluateResponse{
		Success:       true,
		Evaluation:    &evaluation,
		Hint:          &hint,
		Verdict:       string(verdict.Verdict),
		NextStepCount: next,
	}, nil
}

// FullEvaluation runs the two-stage pipeline: OCR, then judgment of the
// extracted text. The stages are inherently sequential; the second consumes
// the first's output.
//
// An OCR failure short-circuits: no evaluator call, no step advance. An
// evaluator failure still returns the extracted text and an advanced
// transcript, because the student's work was legitimately captured.
func (s *evaluationService) FullEvaluation(ctx context.Context, input FullEvaluationInput) (dto.FullEvaluationResponse, error) {
	tracer := otel.Tracer("github.com/ILM-AI-LTD/ilm-mathAI/internal/service/evaluation")
	ctx, span := tracer.Start(ctx, "evaluation.full")
	span.SetAttributes(attribute.Int("evaluation.step_count", input.StepCount))
	defer span.End()

	if len(input.Image.Data) == 0 && input.Image.Path == "" {
		span.RecordError(ErrImageRequired)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.FullEvaluationResponse{}, ErrImageRequired
	}

	if err := s.validator.Struct(input); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.FullEvaluationResponse{}, err
	}

	ocrStart := time.Now()
	text, err := s.extractor.ExtractText(ctx, input.Image)
	s.logger.Info().Dur("ocr_duration", time.Since(ocrStart)).Bool("ocr_success", err == nil).Msg("ocr stage finished")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ocr_failed")
		msg := fmt.Sprintf("OCR failed: %s", ocrErrorMessage(err))
		return dto.FullEvaluationResponse{Success: false, Error: &msg}, nil
	}

	next := input.StepCount + 1
	history := input.ChatHistory + "\n" + text

	evalStart := time.Now()
	verdict, evalErr := s.evaluator.Evaluate(ctx, ai.EvaluationInput{
		Question:      input.Question,
		CorrectAnswer: input.CorrectAnswer,
		StudentWork:   text,
		PriorHistory:  input.ChatHistory,
	})
	s.logger.Info().Dur("eval_duration", time.Since(evalStart)).Bool("eval_success", evalErr == nil).Msg("evaluation stage finished")
	if evalErr != nil {
		s.logEvaluatorFailure(evalErr)
		span.RecordError(evalErr)
		span.SetStatus(codes.Error, "evaluation_failed")
		msg := fmt.Sprintf("Evaluation failed: %s", evaluationErrorMessage(evalErr))
		return dto.FullEvaluationResponse{
			Success:       false,
			Error:         &msg,
			ExtractedText: &text,
			NextStepCount: &next,
			ChatHistory:   &history,
		}, nil
	}

	finished := verdict.Verdict.IsFinal()
	evaluation := verdict.Evaluation
	hint := verdict.Hint
	span.SetAttributes(
		attribute.String("evaluation.verdict", string(verdict.Verdict)),
		attribute.Bool("evaluation.finished", finished),
	)

	return dto.FullEvaluationResponse{
		Success:       true,
		ExtractedText: &text,
		Evaluation:    &evaluation,
		Hint:          &hint,
		Verdict:       string(verdict.Verdict),
		NextStepCount: &next,
		IsFinished:    &finished,
		ChatHistory:   &history,
	}, nil
}

func (s *evaluationService) logEvaluatorFailure(err error) {
	var malformed *ai.MalformedResponseError
	if errors.As(err, &malformed) {
		// The raw model output stays in the server log for diagnosis and is
		// never part of the API response.
		s.logger.Error().Err(err).Str("raw_response", truncate(malformed.Raw, 500)).Msg("evaluator returned malformed response")
		return
	}
	s.logger.Error().Err(err).Msg("evaluation failed")
}

func ocrErrorMessage(err error) string {
	var notFound *ai.ImageNotFoundError
	if errors.As(err, &notFound) {
		return notFound.Error()
	}
	return fmt.Sprintf("Failed to extract text: %v", err)
}

func evaluationErrorMessage(err error) string {
	var malformed *ai.MalformedResponseError
	if errors.As(err, &malformed) {
		return malformed.Error()
	}
	return fmt.Sprintf("An unexpected evaluation error occurred: %v", err)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
