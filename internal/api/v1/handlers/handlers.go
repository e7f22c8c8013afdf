package handlers

import (
	"errors"
	"math"
	"time"

	"taskhub/internal/config"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler holds the injected dependencies every route needs.
type Handler struct {
	*config.Dependencies
	now func() time.Time
}

func New(deps *config.Dependencies) *Handler {
	return &Handler{Dependencies: deps, now: func() time.Time { return time.Now().UTC() }}
}

// Pagination is returned alongside paged listings.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func newPagination(total int, page repository.Page) Pagination {
	pages := 0
	if page.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(page.Limit)))
	}
	return Pagination{Total: total, Page: page.Page, Limit: page.Limit, Pages: pages}
}

// pageQuery reads page/limit with defaults 1/10 and limit capped at 100.
func pageQuery(c *fiber.Ctx) repository.Page {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return repository.Page{Page: page, Limit: limit}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	details := []string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details = append(details, fe.Field()+" failed on "+fe.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "Validation error",
		"details": details,
	})
}

// internalError logs err and answers 500 without leaking it.
func internalError(c *fiber.Ctx, msg string, err error) error {
	logger.ErrorLogger.Error(msg, zap.String("path", c.Path()), zap.Error(err))
	return fail(c, fiber.StatusInternalServerError, msg)
}

// bind decodes the request body into req and validates it. ok is false
// when a 400 has already been written.
func (h *Handler) bind(c *fiber.Ctx, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		logger.ContextLogger.Debug("Bad request body", zap.String("path", c.Path()), zap.Error(err))
		return false, fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error", zap.String("path", c.Path()), zap.Error(err))
		return false, validationFailed(c, err)
	}
	return true, nil
}

// paramID parses :id. ok is false when a 400 has already been written.
func paramID(c *fiber.Ctx, what string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, false, fail(c, fiber.StatusBadRequest, "Invalid "+what+" ID")
	}
	return id, true, nil
}
