package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/documentor/documentor-backend/internal/ai"
	"github.com/documentor/documentor-backend/internal/api/middleware"
	"github.com/documentor/documentor-backend/internal/apperr"
	"github.com/documentor/documentor-backend/internal/services"
)

// Ask answers a question about the selected document. Clients send a
// bounded trailing window of conversation history plus the full document
// text; the server does not re-read stored messages here.
func Ask(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if middleware.CurrentIdentity(c) == nil {
			return apperr.Unauthorized("not authenticated")
		}

		var req struct {
			History     []ai.ChatMessage `json:"history"`
			FileContent string           `json:"fileContent"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}

		answer, err := svc.Assistant.Ask(c.Context(), req.History, req.FileContent)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"response": answer})
	}
}

// GenerateMindMap asks the AI gateway for a hierarchical outline of the
// document and returns the sanitized tree.
func GenerateMindMap(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if middleware.CurrentIdentity(c) == nil {
			return apperr.Unauthorized("not authenticated")
		}

		var req struct {
			DocumentText string `json:"documentText"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}

		root, err := svc.Assistant.GenerateMindMap(c.Context(), req.DocumentText)
		if err != nil {
			return err
		}

		return c.JSON(root)
	}
}
