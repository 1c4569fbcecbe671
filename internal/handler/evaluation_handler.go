package handler

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ILM-AI-LTD/ilm-mathAI/internal/dto"
	"github.com/ILM-AI-LTD/ilm-mathAI/internal/service"
	"github.com/ILM-AI-LTD/ilm-mathAI/internal/utils"
	"github.com/ILM-AI-LTD/ilm-mathAI/pkg/ai"
)

var errInvalidStepCount = errors.New("currentStepCount must be a non-negative integer")

// EvaluationHandler exposes the OCR and evaluation endpoints.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register wires the evaluation routes.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/ocr", h.ocr)
	router.Post("/evaluate", h.evaluate)
	router.Post("/full_evaluation", h.fullEvaluation)
}

func (h *EvaluationHandler) ocr(c *fiber.Ctx) error {
	var req dto.OCRRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "No JSON data provided")
	}

	result, err := h.service.ExtractText(c.UserContext(), req.Image)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, clientErrorMessage(err))
	}

	return c.Status(resultStatus(result.Success)).JSON(result)
}

func (h *EvaluationHandler) evaluate(c *fiber.Ctx) error {
	var req dto.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "No JSON data provided")
	}

	result, err := h.service.EvaluateText(c.UserContext(), req)
	if err != nil {
		if isClientError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, clientErrorMessage(err))
		}
		h.logger.Error().Err(err).Msg("evaluation request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "An internal server error occurred during evaluation.")
	}

	return c.Status(resultStatus(result.Success)).JSON(result)
}

func (h *EvaluationHandler) fullEvaluation(c *fiber.Ctx) error {
	input, cleanup, err := h.parseFullEvaluation(c)
	defer cleanup()
	if err != nil {
		if isClientError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, clientErrorMessage(err))
		}
		h.logger.Error().Err(err).Msg("full evaluation request could not be read")
		return utils.SendError(c, fiber.StatusInternalServerError, "An internal server error occurred.")
	}

	result, err := h.service.FullEvaluation(c.UserContext(), input)
	if err != nil {
		if isClientError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, clientErrorMessage(err))
		}
		h.logger.Error().Err(err).Msg("full evaluation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "An internal server error occurred.")
	}

	return c.Status(resultStatus(result.Success)).JSON(result)
}

// parseFullEvaluation accepts either the multipart form (image file + form
// fields) or the JSON variant with a base64 image. Multipart uploads are
// spooled to a temp file handed to the OCR stage by path; the cleanup
// callback removes it.
func (h *EvaluationHandler) parseFullEvaluation(c *fiber.Ctx) (service.FullEvaluationInput, func(), error) {
	cleanup := func() {}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var req dto.FullEvaluationRequest
		if err := c.BodyParser(&req); err != nil {
			return service.FullEvaluationInput{}, cleanup, service.ErrInvalidBase64
		}

		decoded, mime, err := service.NormalizeImagePayload(req.Image)
		if err != nil {
			return service.FullEvaluationInput{}, cleanup, err
		}

		return service.FullEvaluationInput{
			Image:         ai.ImageInput{Data: decoded, MIMEType: mime},
			Question:      req.Question,
			CorrectAnswer: req.CorrectAnswer,
			StepCount:     req.StepCount,
			ChatHistory:   req.ChatHistory,
		}, cleanup, nil
	}

	file, err := c.FormFile("image")
	if err != nil || file == nil || file.Filename == "" {
		return service.FullEvaluationInput{}, cleanup, service.ErrImageRequired
	}

	stepCount := 0
	if raw := strings.TrimSpace(c.FormValue("currentStepCount")); raw != "" {
		stepCount, err = strconv.Atoi(raw)
		if err != nil || stepCount < 0 {
			return service.FullEvaluationInput{}, cleanup, errInvalidStepCount
		}
	}

	dir, err := os.MkdirTemp("", "mathai-upload-")
	if err != nil {
		return service.FullEvaluationInput{}, cleanup, err
	}
	cleanup = func() {
		if err := os.RemoveAll(dir); err != nil {
			h.logger.Warn().Err(err).Str("dir", dir).Msg("temp upload cleanup failed")
		}
	}

	path := filepath.Join(dir, service.SanitizeFileName(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		return service.FullEvaluationInput{}, cleanup, err
	}

	return service.FullEvaluationInput{
		Image:         ai.ImageInput{Path: path},
		Question:      c.FormValue("question"),
		CorrectAnswer: c.FormValue("correct_answer"),
		StepCount:     stepCount,
		ChatHistory:   c.FormValue("chat_history"),
	}, cleanup, nil
}

// resultStatus mirrors the orchestrator's success flag onto the HTTP status:
// provider and parse failures are server-side errors.
func resultStatus(success bool) int {
	if success {
		return fiber.StatusOK
	}
	return fiber.StatusInternalServerError
}
