package serverutils

import (
	"errors"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindAuth:
		return fiber.StatusUnauthorized
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a handler as the error envelope.
// Internal details are logged, never sent.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := constant.ErrCodeInvalidRequest
			if fe.Code >= fiber.StatusInternalServerError {
				code = constant.ErrCodeInternal
			}
			return ctx.Status(fe.Code).JSON(ErrorResponse(code, fe.Message))
		}

		appErr := apperror.As(err)
		status := StatusFor(appErr.Kind)
		if status >= fiber.StatusInternalServerError {
			log.Error("HTTP", appErr.Message, map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"code":   appErr.Code,
				"error":  err,
			})
		}
		return ctx.Status(status).JSON(ErrorResponse(appErr.Code, appErr.Message))
	}
}
