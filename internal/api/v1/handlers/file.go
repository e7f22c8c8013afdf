package handlers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxAvatarSize is the upload limit for profile pictures.
const MaxAvatarSize = 5 << 20

var avatarExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// validateAvatar checks size, extension and content type.
func validateAvatar(file *multipart.FileHeader) error {
	if file.Size > MaxAvatarSize {
		return fiber.NewError(fiber.StatusBadRequest, "File size exceeds the limit of 5MB")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExts[ext] {
		return fiber.NewError(fiber.StatusBadRequest, "File type not allowed")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return fiber.NewError(fiber.StatusBadRequest, "File must be an image")
	}
	return nil
}

func (h *Handler) UploadAvatar(c *fiber.Ctx) error {
	uploadDir := h.Config.UploadDir
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return internalError(c, "Error creating upload directory", err)
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		logger.ContextLogger.Debug("Missing avatar file", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Error uploading file")
	}

	if err := validateAvatar(file); err != nil {
		logger.AuditLogger.Warn("Rejected avatar upload", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	user, ok, err := h.currentUser(c)
	if !ok {
		return err
	}

	newFilename := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	if err := c.SaveFile(file, filepath.Join(uploadDir, newFilename)); err != nil {
		return internalError(c, "Error saving file", err)
	}

	previous := user.Avatar
	user.Avatar = fmt.Sprintf("/uploads/%s", newFilename)
	if err := h.saveUser(c, user, "Avatar uploaded successfully"); err != nil || c.Response().StatusCode() != fiber.StatusOK {
		return err
	}

	// only files we stored ourselves; OAuth avatars are remote URLs
	if strings.HasPrefix(previous, "/uploads/") {
		old := filepath.Join(uploadDir, filepath.Base(previous))
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			logger.SystemLogger.Warn("Error removing old avatar", zap.String("file", old), zap.Error(err))
		}
	}
	return nil
}
