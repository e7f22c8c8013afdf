package config

import (
	"database/sql"

	"taskhub/configs"
	"taskhub/internal/cache"
	"taskhub/internal/models"
	"taskhub/internal/oauth"
	"taskhub/internal/repository"
	"taskhub/internal/websocket"

	"github.com/go-playground/validator/v10"
)

// Dependencies is built once in main and handed to the handlers.
type Dependencies struct {
	Config      configs.Config
	DB          *sql.DB
	Users       *repository.UserRepository
	Tasks       *repository.TaskRepository
	VitalTasks  *repository.VitalTaskRepository
	MyTasks     *repository.MyTaskRepository
	Categories  *repository.CategoryRepository
	Invitations *repository.InvitationRepository
	Cache       cache.Cache
	Hub         *websocket.Hub
	Validate    *validator.Validate
	Providers   map[string]*oauth.Provider
}

// NewDependencies wires the repositories over db. c may be nil when Redis
// is disabled.
func NewDependencies(cfg configs.Config, db *sql.DB, c cache.Cache, hub *websocket.Hub) *Dependencies {
	if c == nil {
		c = cache.Noop{}
	}
	return &Dependencies{
		Config:      cfg,
		DB:          db,
		Users:       repository.NewUserRepository(db),
		Tasks:       repository.NewTaskRepository(db),
		VitalTasks:  repository.NewVitalTaskRepository(db),
		MyTasks:     repository.NewMyTaskRepository(db),
		Categories:  repository.NewCategoryRepository(db),
		Invitations: repository.NewInvitationRepository(db),
		Cache:       c,
		Hub:         hub,
		Validate:    NewValidator(),
		Providers: map[string]*oauth.Provider{
			"google": oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret,
				cfg.ServerURL+"/api/auth/google"),
			"facebook": oauth.NewFacebook(cfg.FacebookClientID, cfg.FacebookClientSecret,
				cfg.ServerURL+"/api/auth/facebook"),
		},
	}
}

// NewValidator registers the task enum rules on top of the stock tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return models.ValidStatus(fl.Field().String())
	})
	_ = v.RegisterValidation("taskpriority", func(fl validator.FieldLevel) bool {
		return models.ValidPriority(fl.Field().String())
	})
	return v
}
