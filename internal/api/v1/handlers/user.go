package handlers

import (
	"errors"

	"taskhub/internal/cache"
	"taskhub/internal/middleware"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// pointer (*) fields may be omitted
type updateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitnil,max=100"`
	LastName  *string `json:"lastName" validate:"omitnil,max=100"`
	Username  *string `json:"username" validate:"omitnil,min=3,max=50,excludesall=@?/ "`
	Email     *string `json:"email" validate:"omitnil,email"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type updatePreferencesRequest struct {
	EmailNotifications *bool `json:"emailNotifications"`
	PushNotifications  *bool `json:"pushNotifications"`
	TaskReminders      *bool `json:"taskReminders"`
}

// currentUser loads the session's account. ok is false when a response
// has already been written.
func (h *Handler) currentUser(c *fiber.Ctx) (*models.User, bool, error) {
	user, err := h.Users.GetByID(c.UserContext(), middleware.UserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, fail(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	if err != nil {
		return nil, false, internalError(c, "Error fetching user", err)
	}
	return user, true, nil
}

// saveUser stamps, persists and evicts user, then answers with it.
func (h *Handler) saveUser(c *fiber.Ctx, user *models.User, msg string) error {
	ctx := c.UserContext()
	user.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, fiber.StatusBadRequest, "Username or email already exists")
		}
		return internalError(c, "Error updating user", err)
	}
	h.Cache.Delete(ctx, cache.UserKey(user.ID))

	logger.AuditLogger.Info(msg, zap.String("user_id", user.ID.String()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": msg,
		"data":    user.Public(),
	})
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	user, ok, err := h.currentUser(c)
	if !ok {
		return err
	}

	if req.Username != nil || req.Email != nil {
		username, email := user.Username, user.Email
		if req.Username != nil {
			username = *req.Username
		}
		if req.Email != nil {
			email = *req.Email
		}
		usernameTaken, emailTaken, err := h.Users.Taken(c.UserContext(), username, email, user.ID)
		if err != nil {
			return internalError(c, "Error checking existing users", err)
		}
		if usernameTaken || emailTaken {
			return fail(c, fiber.StatusBadRequest, duplicateIdentityMessage(usernameTaken, emailTaken))
		}
		user.Username, user.Email = username, email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	return h.saveUser(c, user, "Profile updated successfully")
}

func (h *Handler) UpdatePassword(c *fiber.Ctx) error {
	var req updatePasswordRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	user, ok, err := h.currentUser(c)
	if !ok {
		return err
	}

	// social-only accounts set their first password without one
	if user.HasPassword() {
		if req.CurrentPassword == "" {
			return fail(c, fiber.StatusBadRequest, "Current password is required")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			logger.SecurityLogger.Warn("Wrong current password", zap.String("user_id", user.ID.String()))
			return fail(c, fiber.StatusBadRequest, "Current password is incorrect")
		}
	}

	hashed, err := h.hashPassword(req.NewPassword)
	if err != nil {
		return internalError(c, "Error hashing password", err)
	}
	user.PasswordHash = &hashed

	return h.saveUser(c, user, "Password updated successfully")
}

func (h *Handler) UpdatePreferences(c *fiber.Ctx) error {
	var req updatePreferencesRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	user, ok, err := h.currentUser(c)
	if !ok {
		return err
	}

	if req.EmailNotifications != nil {
		user.Preferences.EmailNotifications = *req.EmailNotifications
	}
	if req.PushNotifications != nil {
		user.Preferences.PushNotifications = *req.PushNotifications
	}
	if req.TaskReminders != nil {
		user.Preferences.TaskReminders = *req.TaskReminders
	}

	return h.saveUser(c, user, "Preferences updated successfully")
}
