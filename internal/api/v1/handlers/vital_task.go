package handlers

import (
	"errors"

	"taskhub/internal/cache"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type createVitalTaskRequest struct {
	Title         string   `json:"title" validate:"required,max=255"`
	Description   string   `json:"description" validate:"required"`
	Priority      string   `json:"priority" validate:"omitempty,taskpriority"`
	Status        string   `json:"status" validate:"omitempty,taskstatus"`
	DetailedSteps []string `json:"detailedSteps" validate:"dive,required"`
}

type updateVitalTaskRequest struct {
	Title         *string   `json:"title" validate:"omitnil,min=1,max=255"`
	Description   *string   `json:"description" validate:"omitnil,min=1"`
	Priority      *string   `json:"priority" validate:"omitnil,taskpriority"`
	Status        *string   `json:"status" validate:"omitnil,taskstatus"`
	DetailedSteps *[]string `json:"detailedSteps" validate:"omitnil,dive,required"`
}

func (h *Handler) ListVitalTasks(c *fiber.Ctx) error {
	tasks, err := h.VitalTasks.List(c.UserContext(), filterQuery(c))
	if err != nil {
		return internalError(c, "Error fetching vital tasks", err)
	}
	return c.JSON(fiber.Map{"success": true, "data": tasks})
}

func (h *Handler) CreateVitalTask(c *fiber.Ctx) error {
	var req createVitalTaskRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	defaults(&req.Priority, &req.Status, models.PriorityHigh)
	if req.DetailedSteps == nil {
		req.DetailedSteps = []string{}
	}

	now := h.now()
	task := &models.VitalTask{
		TaskBase: models.TaskBase{
			ID:          uuid.New(),
			Title:       req.Title,
			Description: req.Description,
			Priority:    req.Priority,
			Status:      req.Status,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		DetailedSteps: req.DetailedSteps,
	}
	if err := h.VitalTasks.Create(c.UserContext(), task); err != nil {
		return internalError(c, "Error creating vital task", err)
	}

	h.publish("task.created", models.KindVitalTask, task.ID)
	logger.AuditLogger.Info("Vital task created", zap.String("task_id", task.ID.String()))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Vital task created successfully",
		"data":    task,
	})
}

func (h *Handler) GetVitalTask(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "vital task")
	if !ok {
		return err
	}

	ctx := c.UserContext()
	key := cache.TaskKey(string(models.KindVitalTask), id)
	var cached models.VitalTask
	if h.Cache.Get(ctx, key, &cached) {
		return c.JSON(fiber.Map{"success": true, "data": cached})
	}

	task, err := h.VitalTasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "Vital task not found")
	}
	if err != nil {
		return internalError(c, "Error fetching vital task", err)
	}

	h.Cache.Set(ctx, key, task)
	return c.JSON(fiber.Map{"success": true, "data": task})
}

func (h *Handler) UpdateVitalTask(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "vital task")
	if !ok {
		return err
	}
	var req updateVitalTaskRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	ctx := c.UserContext()
	task, err := h.VitalTasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "Vital task not found")
	}
	if err != nil {
		return internalError(c, "Error fetching vital task", err)
	}

	applyBase(&task.TaskBase, req.Title, req.Description, req.Priority, req.Status)
	if req.DetailedSteps != nil {
		task.DetailedSteps = *req.DetailedSteps
	}
	task.UpdatedAt = h.now()

	if err := h.VitalTasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Vital task not found")
		}
		return internalError(c, "Error updating vital task", err)
	}

	h.Cache.Delete(ctx, cache.TaskKey(string(models.KindVitalTask), id))
	h.publish("task.updated", models.KindVitalTask, id)
	logger.AuditLogger.Info("Vital task updated", zap.String("task_id", id.String()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Vital task updated successfully",
		"data":    task,
	})
}

func (h *Handler) DeleteVitalTask(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "vital task")
	if !ok {
		return err
	}

	ctx := c.UserContext()
	if err := h.VitalTasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Vital task not found")
		}
		return internalError(c, "Error deleting vital task", err)
	}

	h.Cache.Delete(ctx, cache.TaskKey(string(models.KindVitalTask), id))
	h.publish("task.deleted", models.KindVitalTask, id)
	logger.AuditLogger.Info("Vital task deleted", zap.String("task_id", id.String()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Vital task deleted successfully",
	})
}
