// FILE: internal/controller/user_controller.go
package controller

import (
	"wellmate-be/internal/constant"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/serverutils"
	"wellmate-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	GetProfile(ctx *fiber.Ctx) error
	UpdateSettings(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
}

func NewUserController(service service.IUserService) IUserController {
	return &userController{service: service}
}

func (c *userController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	h := r.Group("/users")
	h.Use(authMiddleware)
	h.Get("/profile", c.GetProfile)
	h.Put("/settings", c.UpdateSettings)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetProfile(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User profile", res))
}

// UpdateSettings accepts either {"settings": {...}} or the settings object itself.
func (c *userController) UpdateSettings(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var body map[string]interface{}
	if err := ctx.BodyParser(&body); err != nil {
		return apperror.Validation(constant.ErrCodeInvalidRequest, "invalid request body")
	}
	settings := body
	if nested, ok := body["settings"].(map[string]interface{}); ok {
		settings = nested
	}

	res, err := c.service.UpdateSettings(ctx.UserContext(), userId, settings)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Settings updated", res))
}
