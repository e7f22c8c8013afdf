package handlers

import (
	"errors"
	"strings"
	"time"

	"taskhub/internal/middleware"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/pkg/crypto"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvitationTTL is how long an invite link stays redeemable.
const InvitationTTL = 7 * 24 * time.Hour

type createInvitationRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"max=500"`
}

type acceptInvitationRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *Handler) inviteLink(token string) string {
	return h.Config.ClientURL + "/invite/" + token
}

func (h *Handler) CreateInvitation(c *fiber.Ctx) error {
	var req createInvitationRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx := c.UserContext()
	inviter, err := h.Users.GetByID(ctx, middleware.UserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	if err != nil {
		return internalError(c, "Error fetching user", err)
	}
	if strings.EqualFold(inviter.Email, email) {
		return fail(c, fiber.StatusBadRequest, "You cannot invite yourself")
	}

	_, err = h.Users.GetByEmail(ctx, email)
	if err == nil {
		return fail(c, fiber.StatusBadRequest, "User with this email already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return internalError(c, "Error checking existing users", err)
	}

	now := h.now()
	pending, err := h.Invitations.HasPending(ctx, email, now)
	if err != nil {
		return internalError(c, "Error checking invitations", err)
	}
	if pending {
		return fail(c, fiber.StatusBadRequest, "An invitation has already been sent to this email")
	}

	token, err := crypto.RandomHex(32)
	if err != nil {
		return internalError(c, "Error generating invitation token", err)
	}

	inv := &models.Invitation{
		ID:        uuid.New(),
		Token:     token,
		Email:     email,
		InviterID: inviter.ID,
		Message:   req.Message,
		Status:    models.InvitationPending,
		ExpiresAt: now.Add(InvitationTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Invitations.Create(ctx, inv); err != nil {
		return internalError(c, "Error creating invitation", err)
	}

	logger.AuditLogger.Info("Invitation sent",
		zap.String("inviter_id", inviter.ID.String()), zap.String("invitation_id", inv.ID.String()))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Invitation sent successfully",
		"data": fiber.Map{
			"invitation": inv,
			"inviteLink": h.inviteLink(token),
		},
	})
}

func (h *Handler) ListInvitations(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && !models.ValidInvitationStatus(status) {
		return fail(c, fiber.StatusBadRequest, "Invalid invitation status")
	}
	page := pageQuery(c)

	now := h.now()
	items, total, err := h.Invitations.ListByInviter(c.UserContext(), middleware.UserID(c), status, now, page)
	if err != nil {
		return internalError(c, "Error fetching invitations", err)
	}

	// the sweep may not have run yet
	for i := range items {
		if items[i].Status == models.InvitationPending && !items[i].Redeemable(now) {
			items[i].Status = models.InvitationExpired
		}
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       items,
		"pagination": newPagination(total, page),
	})
}

// redeemable loads the invitation for :token. ok is false when a 404 has
// already been written.
func (h *Handler) redeemable(c *fiber.Ctx) (*models.Invitation, bool, error) {
	inv, err := h.Invitations.GetByToken(c.UserContext(), c.Params("token"))
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !inv.Redeemable(h.now())) {
		return nil, false, fail(c, fiber.StatusNotFound, "Invitation not found or expired")
	}
	if err != nil {
		return nil, false, internalError(c, "Error fetching invitation", err)
	}
	return inv, true, nil
}

func (h *Handler) GetInvitation(c *fiber.Ctx) error {
	inv, ok, err := h.redeemable(c)
	if !ok {
		return err
	}

	inviterName := ""
	if inviter, err := h.Users.GetByID(c.UserContext(), inv.InviterID); err == nil {
		inviterName = strings.TrimSpace(inviter.FirstName + " " + inviter.LastName)
		if inviterName == "" {
			inviterName = inviter.Username
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"email":     inv.Email,
			"message":   inv.Message,
			"inviter":   inviterName,
			"expiresAt": inv.ExpiresAt,
		},
	})
}

// splitName turns "Ada Lovelace King" into ("Ada", "Lovelace King").
func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func (h *Handler) AcceptInvitation(c *fiber.Ctx) error {
	inv, ok, err := h.redeemable(c)
	if !ok {
		return err
	}
	var req acceptInvitationRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	ctx := c.UserContext()
	_, err = h.Users.GetByEmail(ctx, inv.Email)
	if err == nil {
		return fail(c, fiber.StatusBadRequest, "User with this email already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return internalError(c, "Error checking existing users", err)
	}

	hashed, err := h.hashPassword(req.Password)
	if err != nil {
		return internalError(c, "Error hashing password", err)
	}

	now := h.now()
	first, last := splitName(req.Name)
	user := &models.User{
		ID:           uuid.New(),
		FirstName:    first,
		LastName:     last,
		Username:     strings.SplitN(inv.Email, "@", 2)[0],
		Email:        inv.Email,
		PasswordHash: &hashed,
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Invitations.Accept(ctx, inv, user, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fail(c, fiber.StatusNotFound, "Invitation not found or expired")
		case errors.Is(err, repository.ErrDuplicate):
			return fail(c, fiber.StatusBadRequest, "User with this email already exists")
		}
		return internalError(c, "Error accepting invitation", err)
	}

	if err := h.startSession(c, user); err != nil {
		return internalError(c, "Error generating token", err)
	}

	logger.AuditLogger.Info("Invitation accepted",
		zap.String("invitation_id", inv.ID.String()), zap.String("user_id", user.ID.String()))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Invitation accepted",
		"data":    user.Public(),
	})
}

func (h *Handler) DeclineInvitation(c *fiber.Ctx) error {
	inv, ok, err := h.redeemable(c)
	if !ok {
		return err
	}

	if err := h.Invitations.SetStatus(c.UserContext(), inv.ID, models.InvitationDeclined, h.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Invitation not found or expired")
		}
		return internalError(c, "Error declining invitation", err)
	}

	logger.AuditLogger.Info("Invitation declined", zap.String("invitation_id", inv.ID.String()))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Invitation declined",
	})
}
