package v1

import (
	"taskhub/internal/api/v1/handlers"
	"taskhub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *handlers.Handler) {
	session := middleware.RequireSession([]byte(h.Config.JWTSecret))

	app.Static("/uploads", h.Config.UploadDir)

	api := app.Group("/api")

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Get("/me", session, h.Me)
	auth.Get("/google", h.OAuth("google"))
	auth.Get("/facebook", h.OAuth("facebook"))

	// Task
	taskRoutes := api.Group("/tasks", session)
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Put("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)

	vitalRoutes := api.Group("/vital-tasks", session)
	vitalRoutes.Get("/", h.ListVitalTasks)
	vitalRoutes.Post("/", h.CreateVitalTask)
	vitalRoutes.Get("/:id", h.GetVitalTask)
	vitalRoutes.Put("/:id", h.UpdateVitalTask)
	vitalRoutes.Delete("/:id", h.DeleteVitalTask)

	myTaskRoutes := api.Group("/my-tasks", session)
	myTaskRoutes.Get("/", h.ListMyTasks)
	myTaskRoutes.Post("/", h.CreateMyTask)
	myTaskRoutes.Get("/:id", h.GetMyTask)
	myTaskRoutes.Put("/:id", h.UpdateMyTask)
	myTaskRoutes.Delete("/:id", h.DeleteMyTask)

	// Category (?type=status|priority)
	categoryRoutes := api.Group("/categories", session)
	categoryRoutes.Get("/", h.ListCategories)
	categoryRoutes.Post("/", h.CreateCategory)
	categoryRoutes.Put("/:id", h.UpdateCategory)
	categoryRoutes.Delete("/:id", h.DeleteCategory)

	// Invitation; the token routes are public
	invitationRoutes := api.Group("/invitations")
	invitationRoutes.Post("/", session, h.CreateInvitation)
	invitationRoutes.Get("/", session, h.ListInvitations)
	invitationRoutes.Get("/:token", h.GetInvitation)
	invitationRoutes.Post("/:token", h.AcceptInvitation)
	invitationRoutes.Post("/:token/decline", h.DeclineInvitation)

	// Settings
	settingsRoutes := api.Group("/settings", session)
	settingsRoutes.Put("/profile", h.UpdateProfile)
	settingsRoutes.Put("/password", h.UpdatePassword)
	settingsRoutes.Put("/preferences", h.UpdatePreferences)
	settingsRoutes.Post("/avatar", h.UploadAvatar)

	api.Get("/stats", session, h.Stats)

	app.Get("/ws", session, handlers.UpgradeWS, h.Events())
}
