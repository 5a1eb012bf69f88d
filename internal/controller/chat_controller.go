// FILE: internal/controller/chat_controller.go
package controller

import (
	"bufio"
	"errors"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/dto"
	"wellmate-be/internal/pkg/serverutils"
	"wellmate-be/internal/service"
	"wellmate-be/pkg/chatagent"

	"github.com/gofiber/fiber/v2"
)

const streamChunkSize = 4096

type IChatController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	PhysicalText(ctx *fiber.Ctx) error
	PhysicalStream(ctx *fiber.Ctx) error
	MentalText(ctx *fiber.Ctx) error
	MentalStream(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{chatService: chatService}
}

func (c *chatController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	physical := r.Group("/health/physical")
	physical.Use(authMiddleware)
	physical.Post("/text", c.PhysicalText)
	physical.Post("/text/stream", c.PhysicalStream)

	mental := r.Group("/health/mental")
	mental.Use(authMiddleware)
	mental.Post("/text", c.MentalText)
	mental.Post("/text/stream", c.MentalStream)
}

func (c *chatController) PhysicalText(ctx *fiber.Ctx) error {
	return c.text(ctx, constant.SessionTypePhysical)
}

func (c *chatController) PhysicalStream(ctx *fiber.Ctx) error {
	return c.stream(ctx, constant.SessionTypePhysical)
}

func (c *chatController) MentalText(ctx *fiber.Ctx) error {
	return c.text(ctx, constant.SessionTypeMental)
}

func (c *chatController) MentalStream(ctx *fiber.Ctx) error {
	return c.stream(ctx, constant.SessionTypeMental)
}

func (c *chatController) text(ctx *fiber.Ctx, sessionType string) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.UserContext(), userId, sessionType, &req)
	if errors.Is(err, chatagent.ErrNoAnswer) {
		return ctx.JSON(serverutils.WarningResponse("The assistant did not produce an answer, please rephrase and try again"))
	}
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat response", res))
}

// stream forwards the agent body unbuffered. The turn is stored only when the
// agent body reaches EOF; a client that leaves early drops it.
func (c *chatController) stream(ctx *fiber.Ctx, sessionType string) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	stream, err := c.chatService.Stream(ctx.UserContext(), userId, sessionType, &req)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Conversation-ID", stream.ConversationID)
	if stream.SessionId != nil {
		ctx.Set("X-Session-ID", stream.SessionId.String())
	}

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer stream.Finish()
		buf := make([]byte, streamChunkSize)
		for {
			n, readErr := stream.Read(buf)
			if n > 0 {
				if _, err := w.Write(buf[:n]); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
			if readErr != nil {
				return
			}
		}
	})
	return nil
}
