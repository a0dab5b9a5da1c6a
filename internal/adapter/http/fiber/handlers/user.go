package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/ports"
	"github.com/arialabs/aria/internal/service/profile"
)

type UserHandler struct {
	profiles  ports.ProfileService
	history   ports.HistoryService
	uploadDir string
	maxUpload int64
	log       *zap.Logger
}

func NewUserHandler(profiles ports.ProfileService, history ports.HistoryService, uploadDir string, maxUpload int64, log *zap.Logger) *UserHandler {
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	return &UserHandler{
		profiles:  profiles,
		history:   history,
		uploadDir: uploadDir,
		maxUpload: maxUpload,
		log:       log,
	}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	user, err := h.profiles.GetCurrentUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(user)
}

type UpdateAssistantRequest struct {
	AssistantName string `json:"assistantName"`
}

func (h *UserHandler) UpdateAssistant(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req UpdateAssistantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.AssistantName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "assistantName is required"})
	}

	user, err := h.profiles.UpdateAssistant(c.Context(), userID, req.AssistantName)
	if err != nil {
		if errors.Is(err, profile.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(user)
}

// UpdateProfile accepts a multipart form with an optional assistantName field
// and an optional avatar image.
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	assistantName := c.FormValue("assistantName")

	imagePath := ""
	file, err := c.FormFile("image")
	if err == nil && file != nil {
		imagePath, err = h.storeAvatar(c, file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	if assistantName == "" && imagePath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
	}

	user, err := h.profiles.UpdateProfile(c.Context(), userID, assistantName, imagePath)
	if err != nil {
		if errors.Is(err, profile.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(user)
}

func (h *UserHandler) storeAvatar(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	if file.Size > h.maxUpload {
		return "", fmt.Errorf("image exceeds the %d byte limit", h.maxUpload)
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", errors.New("only image uploads are allowed")
	}

	ext := filepath.Ext(file.Filename)
	name := uuid.NewString() + ext
	dest := filepath.Join(h.uploadDir, name)
	if err := c.SaveFile(file, dest); err != nil {
		h.log.Error("avatar save failed", zap.Error(err))
		return "", errors.New("failed to store image")
	}
	return "/uploads/" + name, nil
}

func (h *UserHandler) ListCommands(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	limit := c.QueryInt("limit", 0)

	records, err := h.history.List(c.Context(), userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"commands": records})
}

type AddCommandRequest struct {
	Command  string `json:"command"`
	Response string `json:"response"`
}

// AddCommand lets a thin client persist a command it executed locally.
func (h *UserHandler) AddCommand(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req AddCommandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Command == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "command is required"})
	}

	record, err := h.history.Add(c.Context(), userID, req.Command, req.Response)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}
