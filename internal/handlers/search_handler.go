package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/middleware"
	"alfredoptarigan/cv-screener/internal/models"
	"alfredoptarigan/cv-screener/internal/services"
)

type SearchHandler struct {
	search services.SearchService
	log    *zap.Logger
}

func NewSearchHandler(search services.SearchService, log *zap.Logger) *SearchHandler {
	return &SearchHandler{search: search, log: log.Named("search")}
}

// HandleSearch handles POST /api/search-cv. The query has already been
// cleaned and checked by middleware.QueryGuard.
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	query, _ := c.Locals(middleware.QueryLocal).(string)

	matches, err := h.search.Search(c.UserContext(), query)
	if err != nil {
		h.log.Error("❌ search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error searching CVs.",
		})
	}

	return c.JSON(models.SearchResponse{Query: query, Matches: matches})
}
