package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-screener/internal/middleware"
)

type Handlers struct {
	Upload   *UploadHandler
	Evaluate *EvaluationHandler
	Result   *ResultHandler
	Search   *SearchHandler
}

// Register mounts the API routes on router. The three CV endpoints accept
// any method and answer 405 themselves.
func (h *Handlers) Register(router fiber.Router, maxQueryLen int) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	router.All("/upload-cv", h.Upload.HandleUpload)
	router.All("/evaluate-cv", h.Evaluate.HandleEvaluate)
	router.All("/get-results", h.Result.HandleGetResult)
	router.Get("/results/export", h.Result.HandleExport)
	router.Post("/search-cv", middleware.QueryGuard("query", maxQueryLen), h.Search.HandleSearch)
}
