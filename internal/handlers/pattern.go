package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"patternhub/internal/catalog"
	"patternhub/internal/middleware"
	"patternhub/internal/models"
	"patternhub/internal/services"
)

// Machine-readable error codes returned in failure payloads
const (
	codeValidation        = "validation_error"
	codeNotFound          = "not_found"
	codeInvalidPattern    = "invalid_pattern"
	codeUnsupportedOption = "unsupported_option"
)

// PatternHandler handles catalog search, lookup, and snippet generation
type PatternHandler struct {
	catalog *services.CatalogService
}

// NewPatternHandler creates a new pattern handler
func NewPatternHandler(catalogService *services.CatalogService) *PatternHandler {
	return &PatternHandler{catalog: catalogService}
}

// apiError writes a structured failure payload. The x-trace-id header is
// already set by the trace middleware.
func apiError(c *fiber.Ctx, status int, code, message string) error {
	if m := services.GetMetrics(); m != nil {
		m.RequestErrors.WithLabelValues(code).Inc()
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   message,
		"code":    code,
		"traceId": middleware.Trace(c),
	})
}

// validateSearch checks a search request against its schema. Unknown
// category/difficulty values are not a validation failure: they fall through
// to the engine, which returns an empty result set for them.
func validateSearch(req *models.SearchRequest) error {
	if req.Limit != nil && *req.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", *req.Limit)
	}
	return nil
}

// Search handles POST /api/search
func (h *PatternHandler) Search(c *fiber.Ctx) error {
	var req models.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, codeValidation, "Invalid request body")
	}
	if err := validateSearch(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, codeValidation, err.Error())
	}

	results := h.catalog.Search(c.Context(), req, middleware.Trace(c))

	return c.JSON(models.SearchResponse{
		Patterns: catalog.Summarize(results),
		Count:    len(results),
	})
}

// List handles GET /api/patterns with the same filters as query parameters
func (h *PatternHandler) List(c *fiber.Ctx) error {
	req := models.SearchRequest{
		Query:      c.Query("query"),
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, codeValidation, "limit must be an integer")
		}
		req.Limit = &limit
	}
	if err := validateSearch(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, codeValidation, err.Error())
	}

	results := h.catalog.Search(c.Context(), req, middleware.Trace(c))

	return c.JSON(models.SearchResponse{
		Patterns: catalog.Summarize(results),
		Count:    len(results),
	})
}

// Get handles GET /api/patterns/:id and returns the full pattern record
func (h *PatternHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	p, ok := h.catalog.Get(id)
	if !ok {
		return apiError(c, fiber.StatusNotFound, codeNotFound, fmt.Sprintf("Pattern %q not found", id))
	}

	return c.JSON(p)
}

// Doc handles GET /api/patterns/:id/doc and returns the rendered HTML
// documentation page for the website
func (h *PatternHandler) Doc(c *fiber.Ctx) error {
	id := c.Params("id")

	html, err := h.catalog.RenderDoc(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return apiError(c, fiber.StatusNotFound, codeNotFound, fmt.Sprintf("Pattern %q not found", id))
		}
		return apiError(c, fiber.StatusInternalServerError, "render_failed", "Failed to render documentation")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

// Categories handles GET /api/patterns/categories (enumeration for the frontend)
func (h *PatternHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories":   models.Categories,
		"difficulties": models.Difficulties,
	})
}

// Generate handles POST /api/generate
func (h *PatternHandler) Generate(c *fiber.Ctx) error {
	var req models.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, codeValidation, "Invalid request body")
	}
	if req.PatternID == "" {
		return apiError(c, fiber.StatusBadRequest, codeValidation, "patternId is required")
	}

	traceID := middleware.Trace(c)
	p, snippet, err := h.catalog.Generate(c.Context(), req, traceID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			return apiError(c, fiber.StatusNotFound, codeNotFound, fmt.Sprintf("Pattern %q not found", req.PatternID))
		case errors.Is(err, catalog.ErrUnsupportedModuleType):
			return apiError(c, fiber.StatusBadRequest, codeUnsupportedOption, fmt.Sprintf("Unsupported module type %q", req.ModuleType))
		case errors.Is(err, catalog.ErrInvalidPattern):
			// Catalog data defect, not a caller error
			return apiError(c, fiber.StatusInternalServerError, codeInvalidPattern, fmt.Sprintf("Pattern %q has no examples", req.PatternID))
		default:
			return apiError(c, fiber.StatusInternalServerError, "internal_error", "Snippet generation failed")
		}
	}

	return c.JSON(models.GenerateResponse{
		PatternID:   p.ID,
		Title:       p.Title,
		Snippet:     snippet,
		TraceID:     traceID,
		TemplateURI: fmt.Sprintf("pattern://%s/snippet", p.ID),
	})
}

// Refresh handles POST /api/admin/refresh (API-key guarded)
func (h *PatternHandler) Refresh(c *fiber.Ctx) error {
	if err := h.catalog.Refresh(c.Context()); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "refresh_failed", err.Error())
	}

	snap := h.catalog.Snapshot()
	return c.JSON(fiber.Map{
		"status":   "refreshed",
		"patterns": len(snap.Patterns),
		"version":  snap.Version,
	})
}

// StatsHandler serves aggregated usage analytics
type StatsHandler struct {
	analytics *services.AnalyticsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(analytics *services.AnalyticsService) *StatsHandler {
	return &StatsHandler{analytics: analytics}
}

// Get handles GET /api/stats
func (h *StatsHandler) Get(c *fiber.Ctx) error {
	stats, err := h.analytics.GetStats(c.Context())
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "stats_failed", "Failed to aggregate usage stats")
	}
	return c.JSON(stats)
}
