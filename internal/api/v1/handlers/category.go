package handlers

import (
	"errors"
	"fmt"

	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type categoryRequest struct {
	Type  string `json:"type" validate:"omitempty,oneof=status priority"`
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
	Level *int   `json:"level" validate:"omitnil,min=1,max=10"`
}

// categoryType reads ?type=, falling back to fallback. ok is false when a
// 400 has already been written.
func categoryType(c *fiber.Ctx, fallback string) (models.CategoryType, bool, error) {
	typ := c.Query("type", fallback)
	switch models.CategoryType(typ) {
	case models.CategoryStatus, models.CategoryPriority:
		return models.CategoryType(typ), true, nil
	}
	return "", false, fail(c, fiber.StatusBadRequest, "Category type must be status or priority")
}

func categoryLabel(typ models.CategoryType) string {
	if typ == models.CategoryPriority {
		return "Priority"
	}
	return "Status"
}

func (h *Handler) ListCategories(c *fiber.Ctx) error {
	typ, ok, err := categoryType(c, "")
	if !ok {
		return err
	}
	items, err := h.Categories.List(c.UserContext(), typ)
	if err != nil {
		return internalError(c, "Error fetching categories", err)
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

// checkCategory enforces name and level uniqueness. ok is false when a 400
// has already been written.
func (h *Handler) checkCategory(c *fiber.Ctx, typ models.CategoryType, req categoryRequest, exclude uuid.UUID) (bool, error) {
	ctx := c.UserContext()
	taken, err := h.Categories.NameTaken(ctx, typ, req.Name, exclude)
	if err != nil {
		return false, internalError(c, "Error checking category name", err)
	}
	if taken {
		return false, fail(c, fiber.StatusBadRequest, categoryLabel(typ)+" name already exists")
	}

	if typ != models.CategoryPriority {
		return true, nil
	}
	if req.Level == nil {
		return false, fail(c, fiber.StatusBadRequest, "Priority level is required")
	}
	taken, err = h.Categories.LevelTaken(ctx, *req.Level, exclude)
	if err != nil {
		return false, internalError(c, "Error checking priority level", err)
	}
	if taken {
		return false, fail(c, fiber.StatusBadRequest, "Priority level already exists")
	}
	return true, nil
}

func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	typ, ok, err := categoryType(c, req.Type)
	if !ok {
		return err
	}
	if ok, err := h.checkCategory(c, typ, req, uuid.Nil); !ok {
		return err
	}

	now := h.now()
	cat := &models.Category{
		ID:        uuid.New(),
		Type:      typ,
		Name:      req.Name,
		Color:     req.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if typ == models.CategoryPriority {
		cat.Level = req.Level
	}

	if err := h.Categories.Create(c.UserContext(), cat); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, fiber.StatusBadRequest, categoryLabel(typ)+" already exists")
		}
		return internalError(c, "Error creating category", err)
	}

	logger.AuditLogger.Info("Category created",
		zap.String("type", string(typ)), zap.String("category_id", cat.ID.String()))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": categoryLabel(typ) + " created successfully",
		"data":    cat,
	})
}

func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "category")
	if !ok {
		return err
	}
	var req categoryRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	typ, ok, err := categoryType(c, req.Type)
	if !ok {
		return err
	}

	ctx := c.UserContext()
	cat, err := h.Categories.GetByID(ctx, typ, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, categoryLabel(typ)+" not found")
	}
	if err != nil {
		return internalError(c, "Error fetching category", err)
	}

	// default names are the task enum values
	if cat.IsDefault && req.Name != cat.Name {
		return fail(c, fiber.StatusBadRequest, "Cannot rename default "+string(typ))
	}
	if typ == models.CategoryPriority && req.Level == nil {
		req.Level = cat.Level
	}
	if ok, err := h.checkCategory(c, typ, req, id); !ok {
		return err
	}

	cat.Name = req.Name
	if req.Color != "" {
		cat.Color = req.Color
	}
	if typ == models.CategoryPriority {
		cat.Level = req.Level
	}
	cat.UpdatedAt = h.now()

	if err := h.Categories.Update(ctx, cat); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, fiber.StatusBadRequest, categoryLabel(typ)+" already exists")
		}
		return internalError(c, "Error updating category", err)
	}

	logger.AuditLogger.Info("Category updated",
		zap.String("type", string(typ)), zap.String("category_id", id.String()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": categoryLabel(typ) + " updated successfully",
		"data":    cat,
	})
}

func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "category")
	if !ok {
		return err
	}
	typ, ok, err := categoryType(c, "")
	if !ok {
		return err
	}

	ctx := c.UserContext()
	cat, err := h.Categories.GetByID(ctx, typ, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, categoryLabel(typ)+" not found")
	}
	if err != nil {
		return internalError(c, "Error fetching category", err)
	}

	if cat.IsDefault {
		return fail(c, fiber.StatusBadRequest, "Cannot delete default "+string(typ))
	}

	refs, err := h.Categories.CountTaskReferences(ctx, typ, cat.Name)
	if err != nil {
		return internalError(c, "Error counting task references", err)
	}
	if refs > 0 {
		return fail(c, fiber.StatusBadRequest,
			fmt.Sprintf("Cannot delete %s in use by %d task(s)", typ, refs))
	}

	if err := h.Categories.Delete(ctx, typ, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, categoryLabel(typ)+" not found")
		}
		return internalError(c, "Error deleting category", err)
	}

	logger.AuditLogger.Info("Category deleted",
		zap.String("type", string(typ)), zap.String("category_id", id.String()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": categoryLabel(typ) + " deleted successfully",
	})
}
