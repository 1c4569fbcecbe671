package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ILM-AI-LTD/ilm-mathAI/internal/config"
	"github.com/ILM-AI-LTD/ilm-mathAI/internal/handler"
	"github.com/ILM-AI-LTD/ilm-mathAI/internal/middleware"
	"github.com/ILM-AI-LTD/ilm-mathAI/internal/prompts"
	"github.com/ILM-AI-LTD/ilm-mathAI/internal/router"
	"github.com/ILM-AI-LTD/ilm-mathAI/internal/service"
	"github.com/ILM-AI-LTD/ilm-mathAI/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	extractor, err := ai.NewGeminiExtractor(context.Background(), ai.GeminiConfig{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		Instruction: prompts.OCRInstruction,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("failed to create ocr client: %v", err)
	}
	defer extractor.Close()

	evaluator, err := ai.NewOpenAIEvaluator(ai.OpenAIConfig{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
		MaxTokens:    cfg.EvalMaxTokens,
		Temperature:  cfg.EvalTemperature,
		SystemPrompt: prompts.TutorPolicy,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("failed to create evaluator client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	evaluationService := service.NewEvaluationService(extractor, evaluator, validate, logger)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    cfg.MaxBodyBytes(),
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: handler.ErrorHandler(cfg, logger),
	})

	middleware.Register(app, middleware.Config{
		Logger:      &logger,
		CORSOrigins: cfg.CORSOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: evaluationHandler,
		RateLimiter:       middleware.RateLimit("evaluation", cfg.RateLimitMax, cfg.RateLimitWindow),
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("starting server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
