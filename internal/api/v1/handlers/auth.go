package handlers

import (
	"errors"

	"taskhub/internal/cache"
	"taskhub/internal/middleware"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Username  string `json:"username" validate:"required,min=3,max=50,excludesall=@?/ "`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	// Username accepts a username or an email address.
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Config.BcryptCost)
	return string(hashed), err
}

// startSession issues a token for user and stores it as the cookie.
func (h *Handler) startSession(c *fiber.Ctx, user *models.User) error {
	now := h.now()
	token, err := middleware.IssueToken(user.ID, []byte(h.Config.JWTSecret), now)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(c, token, h.Config.IsProduction(), now)
	return nil
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	ctx := c.UserContext()
	usernameTaken, emailTaken, err := h.Users.Taken(ctx, req.Username, req.Email, uuid.Nil)
	if err != nil {
		return internalError(c, "Error checking existing users", err)
	}
	if usernameTaken || emailTaken {
		logger.SecurityLogger.Warn("Duplicate registration", zap.String("username", req.Username))
		return fail(c, fiber.StatusBadRequest, duplicateIdentityMessage(usernameTaken, emailTaken))
	}

	hashed, err := h.hashPassword(req.Password)
	if err != nil {
		return internalError(c, "Error hashing password", err)
	}

	now := h.now()
	user := &models.User{
		ID:           uuid.New(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: &hashed,
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.Users.Create(ctx, user); err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, fiber.StatusBadRequest, "Username or email already exists")
		}
		return internalError(c, "Error creating user", err)
	}

	if err := h.startSession(c, user); err != nil {
		return internalError(c, "Error generating token", err)
	}

	logger.AuditLogger.Info("User registered successfully", zap.String("user_id", user.ID.String()))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User created successfully",
		"data":    user.Public(),
	})
}

func duplicateIdentityMessage(usernameTaken, emailTaken bool) string {
	switch {
	case usernameTaken && emailTaken:
		return "Username and email already exist"
	case usernameTaken:
		return "Username already exists"
	default:
		return "Email already exists"
	}
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	user, err := h.Users.GetByLogin(c.UserContext(), req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		logger.SecurityLogger.Warn("User not found", zap.String("username", req.Username))
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return internalError(c, "Error fetching user", err)
	}

	// accounts created through OAuth have no password and cannot use it
	if !user.HasPassword() {
		logger.SecurityLogger.Warn("Password login on social account", zap.String("user_id", user.ID.String()))
		return fail(c, fiber.StatusUnauthorized, "This account uses social sign-in")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		logger.SecurityLogger.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	if err := h.startSession(c, user); err != nil {
		return internalError(c, "Error generating token", err)
	}

	logger.AuditLogger.Info("Login success", zap.String("user_id", user.ID.String()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login success",
		"data":    user.Public(),
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	middleware.ClearSessionCookie(c, h.Config.IsProduction())
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)
	key := cache.UserKey(userID)

	var public models.PublicUser
	if h.Cache.Get(ctx, key, &public) {
		return c.JSON(fiber.Map{"success": true, "data": public})
	}

	user, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		// token outlived its account
		return fail(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	if err != nil {
		return internalError(c, "Error fetching user", err)
	}

	public = user.Public()
	h.Cache.Set(ctx, key, public)
	return c.JSON(fiber.Map{"success": true, "data": public})
}
