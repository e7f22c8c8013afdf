package handlers

import (
	"context"
	"errors"
	"strings"

	"taskhub/internal/cache"
	"taskhub/internal/models"
	"taskhub/internal/oauth"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OAuth returns the handler for provider. Without a code it redirects to
// the consent screen; with one it signs the user in.
func (h *Handler) OAuth(provider string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := h.Providers[provider]
		if !ok {
			return fail(c, fiber.StatusNotFound, "Unknown provider")
		}
		failure := h.Config.ClientURL + "/login?error=oauth_failed"

		code := c.Query("code")
		if code == "" {
			if c.Query("error") != "" {
				logger.SecurityLogger.Warn("OAuth consent denied", zap.String("provider", provider))
				return c.Redirect(failure, fiber.StatusFound)
			}
			state, err := oauth.NewState(provider, h.Config.EncryptionKey, h.now())
			if err != nil {
				logger.ErrorLogger.Error("Error creating oauth state", zap.Error(err))
				return c.Redirect(failure, fiber.StatusFound)
			}
			return c.Redirect(p.ConsentURL(state), fiber.StatusFound)
		}

		if err := oauth.VerifyState(c.Query("state"), provider, h.Config.EncryptionKey, h.now()); err != nil {
			logger.SecurityLogger.Warn("OAuth state rejected", zap.String("provider", provider))
			return c.Redirect(failure, fiber.StatusFound)
		}

		profile, err := p.Exchange(c.UserContext(), code)
		if err != nil {
			logger.ErrorLogger.Error("OAuth exchange failed", zap.String("provider", provider), zap.Error(err))
			return c.Redirect(failure, fiber.StatusFound)
		}

		user, err := h.upsertOAuthUser(c.UserContext(), provider, profile)
		if err != nil {
			logger.ErrorLogger.Error("OAuth user upsert failed", zap.String("provider", provider), zap.Error(err))
			return c.Redirect(failure, fiber.StatusFound)
		}

		if err := h.startSession(c, user); err != nil {
			logger.ErrorLogger.Error("Error generating token", zap.Error(err))
			return c.Redirect(failure, fiber.StatusFound)
		}

		logger.AuditLogger.Info("OAuth login success",
			zap.String("provider", provider), zap.String("user_id", user.ID.String()))
		return c.Redirect(h.Config.ClientURL+"/dashboard", fiber.StatusFound)
	}
}

// upsertOAuthUser finds the account by provider id, then by email, and
// links it; otherwise it creates a password-less account.
func (h *Handler) upsertOAuthUser(ctx context.Context, provider string, profile oauth.Profile) (*models.User, error) {
	user, err := h.Users.GetByProvider(ctx, provider, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if profile.Email != "" {
		user, err = h.Users.GetByEmail(ctx, profile.Email)
		switch {
		case err == nil:
			linkProvider(user, provider, profile.ID)
			if user.Avatar == "" {
				user.Avatar = profile.Avatar
			}
			user.UpdatedAt = h.now()
			if err := h.Users.Update(ctx, user); err != nil {
				return nil, err
			}
			h.Cache.Delete(ctx, cache.UserKey(user.ID))
			return user, nil
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	if profile.Email == "" {
		// Facebook may withhold the address; keep a unique placeholder
		profile.Email = provider + "_" + profile.ID + "@users.noreply.taskhub"
	}
	base := strings.SplitN(profile.Email, "@", 2)[0]
	username, err := h.Users.AvailableUsername(ctx, base)
	if err != nil {
		return nil, err
	}

	now := h.now()
	user = &models.User{
		ID:          uuid.New(),
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Username:    username,
		Email:       profile.Email,
		Avatar:      profile.Avatar,
		Preferences: models.DefaultPreferences(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	linkProvider(user, provider, profile.ID)
	if err := h.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func linkProvider(u *models.User, provider, id string) {
	switch provider {
	case "google":
		u.GoogleID = &id
	case "facebook":
		u.FacebookID = &id
	}
}
