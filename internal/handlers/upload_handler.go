package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/models"
	"alfredoptarigan/cv-screener/internal/services"
)

type UploadHandler struct {
	indexer     services.CVIndexer
	maxFileSize int64
	log         *zap.Logger
}

func NewUploadHandler(indexer services.CVIndexer, maxFileSize int64, log *zap.Logger) *UploadHandler {
	return &UploadHandler{
		indexer:     indexer,
		maxFileSize: maxFileSize,
		log:         log.Named("upload"),
	}
}

// HandleUpload handles POST /api/upload-cv with a multipart "cv" file.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		c.Set(fiber.HeaderAllow, fiber.MethodPost)
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": fmt.Sprintf("Method %s Not Allowed", c.Method()),
		})
	}

	cvFile, err := c.FormFile("cv")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No CV file uploaded.",
		})
	}

	contentType := cvFile.Header.Get(fiber.HeaderContentType)
	if !services.IsSupportedMimeType(contentType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only PDF and TXT supported in this example.",
		})
	}

	if h.maxFileSize > 0 && cvFile.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("CV file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	src, err := cvFile.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No CV file uploaded.",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		h.log.Error("❌ failed to read upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error uploading the file.",
		})
	}

	vectorID, err := h.indexer.Index(c.UserContext(), cvFile.Filename, contentType, data)
	if err != nil {
		status, msg := uploadError(err)
		if status >= fiber.StatusInternalServerError {
			h.log.Error("❌ upload failed", zap.String("file", cvFile.Filename), zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	return c.JSON(models.UploadResponse{
		Message:  "CV uploaded and indexed.",
		VectorID: vectorID,
	})
}

func uploadError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnsupportedFileType):
		return fiber.StatusBadRequest, "Only PDF and TXT supported in this example."
	case errors.Is(err, services.ErrEmptyText):
		return fiber.StatusBadRequest, "Extracted text is empty."
	case errors.Is(err, services.ErrEmbeddingFormat):
		return fiber.StatusInternalServerError, "Embedding format invalid."
	case errors.Is(err, services.ErrEmbedding):
		return fiber.StatusInternalServerError, "Error generating embedding."
	case errors.Is(err, services.ErrVectorStoreWrite):
		return fiber.StatusInternalServerError, "Error saving to vector store."
	default:
		return fiber.StatusInternalServerError, "Error uploading the file."
	}
}
