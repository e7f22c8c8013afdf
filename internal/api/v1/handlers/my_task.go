package handlers

import (
	"errors"
	"time"

	"taskhub/internal/cache"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type createMyTaskRequest struct {
	Title           string     `json:"title" validate:"required,max=255"`
	Description     string     `json:"description" validate:"required"`
	Priority        string     `json:"priority" validate:"omitempty,taskpriority"`
	Status          string     `json:"status" validate:"omitempty,taskstatus"`
	Objective       string     `json:"objective"`
	TaskDescription string     `json:"taskDescription"`
	AdditionalNotes string     `json:"additionalNotes"`
	Deadline        *time.Time `json:"deadline"`
}

type updateMyTaskRequest struct {
	Title           *string    `json:"title" validate:"omitnil,min=1,max=255"`
	Description     *string    `json:"description" validate:"omitnil,min=1"`
	Priority        *string    `json:"priority" validate:"omitnil,taskpriority"`
	Status          *string    `json:"status" validate:"omitnil,taskstatus"`
	Objective       *string    `json:"objective"`
	TaskDescription *string    `json:"taskDescription"`
	AdditionalNotes *string    `json:"additionalNotes"`
	Deadline        *time.Time `json:"deadline"`
}

func (h *Handler) ListMyTasks(c *fiber.Ctx) error {
	tasks, err := h.MyTasks.List(c.UserContext(), filterQuery(c))
	if err != nil {
		return internalError(c, "Error fetching my tasks", err)
	}
	return c.JSON(fiber.Map{"success": true, "data": tasks})
}

func (h *Handler) CreateMyTask(c *fiber.Ctx) error {
	var req createMyTaskRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	defaults(&req.Priority, &req.Status, models.PriorityModerate)

	now := h.now()
	task := &models.MyTask{
		TaskBase: models.TaskBase{
			ID:          uuid.New(),
			Title:       req.Title,
			Description: req.Description,
			Priority:    req.Priority,
			Status:      req.Status,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Objective:       req.Objective,
		TaskDescription: req.TaskDescription,
		AdditionalNotes: req.AdditionalNotes,
		Deadline:        req.Deadline,
	}
	if err := h.MyTasks.Create(c.UserContext(), task); err != nil {
		return internalError(c, "Error creating my task", err)
	}

	h.publish("task.created", models.KindMyTask, task.ID)
	logger.AuditLogger.Info("My task created", zap.String("task_id", task.ID.String()))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Task created successfully",
		"data":    task,
	})
}

func (h *Handler) GetMyTask(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "task")
	if !ok {
		return err
	}

	ctx := c.UserContext()
	key := cache.TaskKey(string(models.KindMyTask), id)
	var cached models.MyTask
	if h.Cache.Get(ctx, key, &cached) {
		return c.JSON(fiber.Map{"success": true, "data": cached})
	}

	task, err := h.MyTasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "Task not found")
	}
	if err != nil {
		return internalError(c, "Error fetching my task", err)
	}

	h.Cache.Set(ctx, key, task)
	return c.JSON(fiber.Map{"success": true, "data": task})
}

func (h *Handler) UpdateMyTask(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "task")
	if !ok {
		return err
	}
	var req updateMyTaskRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	ctx := c.UserContext()
	task, err := h.MyTasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "Task not found")
	}
	if err != nil {
		return internalError(c, "Error fetching my task", err)
	}

	applyBase(&task.TaskBase, req.Title, req.Description, req.Priority, req.Status)
	if req.Objective != nil {
		task.Objective = *req.Objective
	}
	if req.TaskDescription != nil {
		task.TaskDescription = *req.TaskDescription
	}
	if req.AdditionalNotes != nil {
		task.AdditionalNotes = *req.AdditionalNotes
	}
	if req.Deadline != nil {
		task.Deadline = req.Deadline
	}
	task.UpdatedAt = h.now()

	if err := h.MyTasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Task not found")
		}
		return internalError(c, "Error updating my task", err)
	}

	h.Cache.Delete(ctx, cache.TaskKey(string(models.KindMyTask), id))
	h.publish("task.updated", models.KindMyTask, id)
	logger.AuditLogger.Info("My task updated", zap.String("task_id", id.String()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Task updated successfully",
		"data":    task,
	})
}

func (h *Handler) DeleteMyTask(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "task")
	if !ok {
		return err
	}

	ctx := c.UserContext()
	if err := h.MyTasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Task not found")
		}
		return internalError(c, "Error deleting my task", err)
	}

	h.Cache.Delete(ctx, cache.TaskKey(string(models.KindMyTask), id))
	h.publish("task.deleted", models.KindMyTask, id)
	logger.AuditLogger.Info("My task deleted", zap.String("task_id", id.String()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Task deleted successfully",
	})
}
