package handlers

import (
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/internal/stats"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// Stats loads the three collections concurrently and summarises them.
func (h *Handler) Stats(c *fiber.Ctx) error {
	var (
		tasks []models.Task
		vital []models.VitalTask
		mine  []models.MyTask
	)

	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		var err error
		tasks, _, err = h.Tasks.List(ctx, repository.TaskFilter{}, repository.Page{})
		return err
	})
	g.Go(func() error {
		var err error
		vital, err = h.VitalTasks.List(ctx, repository.TaskFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		mine, err = h.MyTasks.List(ctx, repository.TaskFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return internalError(c, "Error fetching task statistics", err)
	}

	summary := stats.Compute(stats.Merge(tasks, vital, mine), h.now())
	return c.JSON(fiber.Map{"success": true, "data": summary})
}
