package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/bootstrap"
	"alfredoptarigan/cv-screener/internal/config"
	"alfredoptarigan/cv-screener/internal/handlers"
	"alfredoptarigan/cv-screener/internal/logger"
	"alfredoptarigan/cv-screener/internal/middleware"
	"alfredoptarigan/cv-screener/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.LogJSON, cfg.Server.LogDebug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("❌ server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer components.Close(log)

	store, err := components.EvaluationStore(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info("✅ evaluation store ready", zap.String("backend", cfg.Evaluation.StoreBackend))

	worker := services.NewWorker(cfg.Worker.Concurrency, cfg.Worker.QueueSize, cfg.Evaluation.Delay, log)
	worker.Start(ctx)

	indexer := services.NewCVIndexer(
		services.NewTextExtractor(log),
		components.Embedder,
		components.VectorStore,
		components.Storage,
		log,
	)
	evaluator := services.NewEvaluatorService(
		store,
		components.VectorStore,
		services.NewCVExtractor(components.TextGenerator(cfg), cfg.Worker.RetryMaxAttempts, log),
		services.NewScorer(),
		worker,
		log,
	)
	search := services.NewSearchService(components.Embedder, components.VectorStore, cfg.Security.MaxResults)

	h := &handlers.Handlers{
		Upload:   handlers.NewUploadHandler(indexer, cfg.Storage.MaxFileSize, log),
		Evaluate: handlers.NewEvaluationHandler(evaluator, log),
		Result:   handlers.NewResultHandler(evaluator, store, log),
		Search:   handlers.NewSearchHandler(search, log),
	}

	app := fiber.New(fiber.Config{
		AppName:      "CV Screener API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: customErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins(),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	api := app.Group("/api", middleware.RateLimit(cfg.Security.RateLimit, cfg.Security.RateLimitWindow))
	h.Register(api, cfg.Security.MaxQueryLen)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/upload-cv",
				"POST /api/evaluate-cv",
				"GET /api/get-results?id=",
				"POST /api/search-cv",
				"GET /api/results/export",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("❌ server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))

	err = app.Listen(addr)
	worker.Stop()
	return err
}

func customErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("❌ unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  code,
		})
	}
}
