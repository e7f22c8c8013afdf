package handlers

import (
	"errors"
	"time"

	"taskhub/internal/cache"
	"taskhub/internal/middleware"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/internal/websocket"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type createTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"required"`
	Priority    string     `json:"priority" validate:"omitempty,taskpriority"`
	Status      string     `json:"status" validate:"omitempty,taskstatus"`
	Category    string     `json:"category" validate:"max=255"`
	DueDate     *time.Time `json:"dueDate"`
}

// pointer fields: nil means "leave unchanged"
type updateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string    `json:"description" validate:"omitnil,min=1"`
	Priority    *string    `json:"priority" validate:"omitnil,taskpriority"`
	Status      *string    `json:"status" validate:"omitnil,taskstatus"`
	Category    *string    `json:"category" validate:"omitnil,max=255"`
	DueDate     *time.Time `json:"dueDate"`
}

// defaults fills the zero priority/status for a new task.
func defaults(priority, status *string, defaultPriority string) {
	if *priority == "" {
		*priority = defaultPriority
	}
	if *status == "" {
		*status = models.StatusNotStarted
	}
}

// applyBase merges the shared optional fields into b.
func applyBase(b *models.TaskBase, title, description, priority, status *string) {
	if title != nil {
		b.Title = *title
	}
	if description != nil {
		b.Description = *description
	}
	if priority != nil {
		b.Priority = *priority
	}
	if status != nil {
		b.Status = *status
	}
}

func filterQuery(c *fiber.Ctx) repository.TaskFilter {
	return repository.TaskFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
	}
}

func (h *Handler) publish(eventType string, kind models.TaskKind, id uuid.UUID) {
	if h.Hub == nil {
		return
	}
	h.Hub.Publish(websocket.Event{Type: eventType, Kind: string(kind), ID: id})
}

func (h *Handler) ListTasks(c *fiber.Ctx) error {
	f := filterQuery(c)
	f.Category = c.Query("category")
	page := pageQuery(c)

	tasks, total, err := h.Tasks.List(c.UserContext(), f, page)
	if err != nil {
		return internalError(c, "Error fetching tasks", err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       tasks,
		"pagination": newPagination(total, page),
	})
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	defaults(&req.Priority, &req.Status, models.PriorityModerate)

	now := h.now()
	owner := middleware.UserID(c)
	task := &models.Task{
		TaskBase: models.TaskBase{
			ID:          uuid.New(),
			Title:       req.Title,
			Description: req.Description,
			Priority:    req.Priority,
			Status:      req.Status,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Category: req.Category,
		DueDate:  req.DueDate,
	}
	if owner != uuid.Nil {
		task.UserID = &owner
	}

	if err := h.Tasks.Create(c.UserContext(), task); err != nil {
		return internalError(c, "Error creating task", err)
	}

	h.publish("task.created", models.KindTask, task.ID)
	logger.AuditLogger.Info("Task created successfully", zap.String("task_id", task.ID.String()))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Task created successfully",
		"data":    task,
	})
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "task")
	if !ok {
		return err
	}

	ctx := c.UserContext()
	key := cache.TaskKey(string(models.KindTask), id)
	var cached models.Task
	if h.Cache.Get(ctx, key, &cached) {
		return c.JSON(fiber.Map{"success": true, "data": cached})
	}

	task, err := h.Tasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "Task not found")
	}
	if err != nil {
		return internalError(c, "Error fetching task", err)
	}

	h.Cache.Set(ctx, key, task)
	return c.JSON(fiber.Map{"success": true, "data": task})
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "task")
	if !ok {
		return err
	}
	var req updateTaskRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	ctx := c.UserContext()
	task, err := h.Tasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "Task not found")
	}
	if err != nil {
		return internalError(c, "Error fetching task", err)
	}

	applyBase(&task.TaskBase, req.Title, req.Description, req.Priority, req.Status)
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	task.UpdatedAt = h.now()

	if err := h.Tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Task not found")
		}
		return internalError(c, "Error updating task", err)
	}

	h.Cache.Delete(ctx, cache.TaskKey(string(models.KindTask), id))
	h.publish("task.updated", models.KindTask, id)
	logger.AuditLogger.Info("Task updated", zap.String("task_id", id.String()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Task updated successfully",
		"data":    task,
	})
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "task")
	if !ok {
		return err
	}

	ctx := c.UserContext()
	if err := h.Tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Task not found")
		}
		return internalError(c, "Error deleting task", err)
	}

	h.Cache.Delete(ctx, cache.TaskKey(string(models.KindTask), id))
	h.publish("task.deleted", models.KindTask, id)
	logger.AuditLogger.Info("Task deleted", zap.String("task_id", id.String()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Task deleted successfully",
	})
}
