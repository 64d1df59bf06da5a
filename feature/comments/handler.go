package comments

import (
	"errors"
	"strconv"

	"comment-mirror/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the comments mirror.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the comments routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/stats", h.HandleGetStats)
	app.Get("/comments/:id", h.HandleGetComment)
	app.Get("/media/:id/comments", h.HandleGetMediaComments)
}

// HandleGetStats returns the mirror's integrity report.
func (h *Handler) HandleGetStats(c *fiber.Ctx) error {
	return c.JSON(h.service.GetStats())
}

// HandleGetComment returns a single comment by ID.
func (h *Handler) HandleGetComment(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid comment id",
		})
	}

	comment, err := h.service.GetComment(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Comment lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(comment)
}

// HandleGetMediaComments returns all stored comments for a media ID.
func (h *Handler) HandleGetMediaComments(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid media id",
		})
	}

	return c.JSON(fiber.Map{
		"media_id": id,
		"comments": h.service.GetMediaComments(id),
	})
}
