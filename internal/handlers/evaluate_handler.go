package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/models"
	"alfredoptarigan/cv-screener/internal/services"
)

var validate = validator.New()

type EvaluationHandler struct {
	evaluator services.EvaluatorService
	log       *zap.Logger
}

func NewEvaluationHandler(evaluator services.EvaluatorService, log *zap.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		evaluator: evaluator,
		log:       log.Named("evaluate"),
	}
}

// HandleEvaluate handles POST /api/evaluate-cv
func (h *EvaluationHandler) HandleEvaluate(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		c.Set(fiber.HeaderAllow, fiber.MethodPost)
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "Method not allowed",
		})
	}

	var req models.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	req.VectorID = strings.TrimSpace(req.VectorID)
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "vectorId and jobDescription are required",
		})
	}

	resp, err := h.evaluator.Submit(c.UserContext(), req.VectorID, req.JobDescription)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCVTextNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "CV text not found in vector store.",
			})
		case errors.Is(err, services.ErrCVFetch):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error fetching CV from vector store.",
			})
		case errors.Is(err, services.ErrQueueFull), errors.Is(err, services.ErrQueueStopped):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Evaluation queue is full.",
			})
		default:
			h.log.Error("❌ evaluate failed", zap.String("vectorId", req.VectorID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error evaluating CV",
			})
		}
	}

	return c.JSON(resp)
}
