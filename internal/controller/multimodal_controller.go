// FILE: internal/controller/multimodal_controller.go
package controller

import (
	"wellmate-be/internal/dto"
	"wellmate-be/internal/pkg/serverutils"
	"wellmate-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMultimodalController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	Analyze(ctx *fiber.Ctx) error
	Transcribe(ctx *fiber.Ctx) error
}

type multimodalController struct {
	service service.IMultimodalService
}

func NewMultimodalController(service service.IMultimodalService) IMultimodalController {
	return &multimodalController{service: service}
}

func (c *multimodalController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	h := r.Group("/health/multimodal")
	h.Use(authMiddleware)
	h.Post("/analyze", c.Analyze)
	h.Post("/transcribe", c.Transcribe)
}

func (c *multimodalController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Analyze(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Analysis complete", res))
}

func (c *multimodalController) Transcribe(ctx *fiber.Ctx) error {
	var req dto.TranscribeRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Transcribe(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcription complete", res))
}
