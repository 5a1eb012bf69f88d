// FILE: internal/controller/health_data_controller.go
package controller

import (
	"wellmate-be/internal/constant"
	"wellmate-be/internal/dto"
	"wellmate-be/internal/pkg/serverutils"
	"wellmate-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthDataController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	Get(ctx *fiber.Ctx) error
	Add(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Recent(ctx *fiber.Ctx) error
	DeleteRecord(ctx *fiber.Ctx) error
	DeleteByType(ctx *fiber.Ctx) error
}

type healthDataController struct {
	service service.IHealthDataService
}

func NewHealthDataController(service service.IHealthDataService) IHealthDataController {
	return &healthDataController{service: service}
}

func (c *healthDataController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	h := r.Group("/health/data")
	h.Use(authMiddleware)
	h.Get("", c.Get)
	h.Post("", c.Add)
	h.Get("/stats", c.Stats)
	h.Get("/recent", c.Recent)
	h.Delete("", c.DeleteByType)
	h.Delete("/:id", c.DeleteRecord)
}

func (c *healthDataController) Get(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetHealthData(ctx.UserContext(), userId, ctx.Query("type", constant.HealthDataTypeAll))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Health data", res))
}

func (c *healthDataController) Add(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.AddHealthDataRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.AddHealthData(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Health data added", res))
}

func (c *healthDataController) Stats(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetStats(ctx.UserContext(), userId, ctx.Query("period", constant.StatsPeriodWeek))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Health statistics", res))
}

func (c *healthDataController) Recent(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetRecent(ctx.UserContext(), userId, ctx.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Recent health data", res))
}

func (c *healthDataController) DeleteRecord(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	recordId, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.DeleteRecord(ctx.UserContext(), userId, recordId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Health record deleted", res))
}

func (c *healthDataController) DeleteByType(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.DeleteByType(ctx.UserContext(), userId, ctx.Query("type"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Health data deleted", res))
}
