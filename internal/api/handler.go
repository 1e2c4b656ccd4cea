package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/pipeline"
	"weather-dashboard/internal/render"
	"weather-dashboard/internal/services"
)

type Handler struct {
	dashboard *services.Dashboard
	ingest    *services.Ingest
	window    *pipeline.WindowFilter
	radarPath string
	logger    *zap.Logger
}

func NewHandler(dashboard *services.Dashboard, ingest *services.Ingest, window *pipeline.WindowFilter, radarPath string, logger *zap.Logger) *Handler {
	return &Handler{
		dashboard: dashboard,
		ingest:    ingest,
		window:    window,
		radarPath: radarPath,
		logger:    logger,
	}
}

// GetFigures handles GET /api/v1/figures
func (h *Handler) GetFigures(c *fiber.Ctx) error {
	start, end, err := h.window.ParseWindow(c.Query("start"), c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid window",
			"details": err.Error(),
		})
	}

	figures, err := h.dashboard.Figures(start, end)
	if err != nil {
		return h.figureError(c, err)
	}
	return c.JSON(figures)
}

// GetFigurePNG handles GET /api/v1/figures/:name/png
func (h *Handler) GetFigurePNG(c *fiber.Ctx) error {
	start, end, err := h.window.ParseWindow(c.Query("start"), c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid window",
			"details": err.Error(),
		})
	}

	figures, err := h.dashboard.Figures(start, end)
	if err != nil {
		return h.figureError(c, err)
	}

	var fig *models.Figure
	switch c.Params("name") {
	case "temperature":
		fig = figures.Temperature
	case "wind":
		fig = figures.Wind
	case "rain":
		fig = figures.Rain
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown figure",
			"name":  c.Params("name"),
		})
	}

	png, err := render.RenderPNG(fig)
	if err != nil {
		h.logger.Error("Failed to render figure PNG",
			zap.String("figure", fig.Name),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render figure",
		})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// GetCurrent handles GET /api/v1/current
func (h *Handler) GetCurrent(c *fiber.Ctx) error {
	current, err := h.dashboard.Current()
	if err != nil {
		return h.figureError(c, err)
	}
	return c.JSON(current)
}

// GetToday handles GET /api/v1/today
func (h *Handler) GetToday(c *fiber.Ctx) error {
	return c.JSON(h.dashboard.Today())
}

// GetRadar handles GET /api/v1/radar
func (h *Handler) GetRadar(c *fiber.Ctx) error {
	return c.SendFile(h.radarPath)
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"stats":     h.dashboard.GetStats(),
	})
}

// AddObservation handles GET /addWeatherObservation, the path and method
// the station firmware is hardcoded to push to.
func (h *Handler) AddObservation(c *fiber.Ctx) error {
	var input services.ObservationInput
	if err := c.QueryParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Malformed observation",
			"details": err.Error(),
		})
	}

	id, err := h.ingest.Add(input)
	if err != nil {
		h.logger.Error("Failed to store observation", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Failed to store observation",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"id": id, "dateutc": input.DateUTC})
}

func (h *Handler) figureError(c *fiber.Ctx, err error) error {
	if errors.Is(err, pipeline.ErrDataUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "Data not available yet",
			"details": err.Error(),
		})
	}

	h.logger.Error("Dashboard request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal error",
		"details": err.Error(),
	})
}

var startTime = time.Now()
