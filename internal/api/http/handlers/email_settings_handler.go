package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fluxdesk/helpdesk/internal/api/dto"
	"github.com/fluxdesk/helpdesk/internal/auth"
	"github.com/fluxdesk/helpdesk/internal/domain"
	"github.com/fluxdesk/helpdesk/internal/service"
	apperrors "github.com/fluxdesk/helpdesk/pkg/util"
)

// EmailSettingsHandler exposes the admin SMTP configuration endpoints.
type EmailSettingsHandler struct {
	settings *service.EmailSettingsService
}

// NewEmailSettingsHandler constructs handler.
func NewEmailSettingsHandler(settings *service.EmailSettingsService) *EmailSettingsHandler {
	return &EmailSettingsHandler{settings: settings}
}

// Get GET /settings/email. Admin only.
func (h *EmailSettingsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	settings, err := h.settings.Get(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": emailSettingsResponse(settings)})
}

// Update PUT /settings/email. Admin only.
func (h *EmailSettingsHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EmailSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	settings, err := h.settings.Update(c.UserContext(), actor, service.EmailSettingsInput{
		Host:        req.Host,
		Port:        req.Port,
		Username:    req.Username,
		Password:    req.Password,
		FromAddress: req.FromAddress,
		Enabled:     req.Enabled,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": emailSettingsResponse(settings)})
}

// SendTest POST /settings/email/test. Admin only.
func (h *EmailSettingsHandler) SendTest(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TestEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.settings.SendTest(c.UserContext(), actor, req.To); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

func emailSettingsResponse(settings *domain.EmailSettings) dto.EmailSettingsResponse {
	return dto.EmailSettingsResponse{
		Host:        settings.Host,
		Port:        settings.Port,
		Username:    settings.Username,
		FromAddress: settings.FromAddress,
		Enabled:     settings.Enabled,
		UpdatedAt:   settings.UpdatedAt,
	}
}
