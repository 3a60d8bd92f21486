package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/models"
	"alfredoptarigan/cv-screener/internal/repositories"
	"alfredoptarigan/cv-screener/internal/services"
)

type ResultHandler struct {
	evaluator services.EvaluatorService
	store     repositories.EvaluationStore
	log       *zap.Logger
}

func NewResultHandler(evaluator services.EvaluatorService, store repositories.EvaluationStore, log *zap.Logger) *ResultHandler {
	return &ResultHandler{
		evaluator: evaluator,
		store:     store,
		log:       log.Named("results"),
	}
}

// HandleGetResult handles GET /api/get-results?id=
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodGet {
		c.Set(fiber.HeaderAllow, fiber.MethodGet)
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "Method not allowed",
		})
	}

	id := c.Query("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Evaluation ID is required",
		})
	}

	evaluation, err := h.evaluator.Result(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrEvaluationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Evaluation not found.",
			})
		}
		h.log.Error("❌ failed to load evaluation", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching evaluation.",
		})
	}

	if evaluation.Status.InFlight() {
		return c.JSON(models.EvaluateResponse{
			EvaluationID: evaluation.EvaluationID,
			Status:       evaluation.Status,
		})
	}

	return c.JSON(evaluation)
}

// HandleExport handles GET /api/results/export and returns every stored
// evaluation as an xlsx workbook.
func (h *ResultHandler) HandleExport(c *fiber.Ctx) error {
	evaluations, err := h.store.List(c.UserContext())
	if err != nil {
		h.log.Error("❌ failed to list evaluations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error listing evaluations.",
		})
	}

	data, err := services.ExportEvaluations(evaluations)
	if err != nil {
		h.log.Error("❌ failed to build export", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error exporting evaluations.",
		})
	}

	filename := fmt.Sprintf("evaluations-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
