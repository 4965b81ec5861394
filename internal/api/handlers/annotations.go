package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/documentor/documentor-backend/internal/api/middleware"
	"github.com/documentor/documentor-backend/internal/apperr"
	"github.com/documentor/documentor-backend/internal/services"
)

// SaveHighlights upserts the highlight phrases for a session.
func SaveHighlights(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if middleware.CurrentIdentity(c) == nil {
			return apperr.Unauthorized("not authenticated")
		}

		var req struct {
			SessionID  string    `json:"sessionId"`
			Highlights *[]string `json:"highlights"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}
		if req.SessionID == "" || req.Highlights == nil {
			return apperr.Validation("sessionId and highlights are required")
		}

		record, err := svc.Annotations.SaveHighlights(c.Context(), req.SessionID, *req.Highlights)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": record})
	}
}

// GetHighlights returns a session's highlight phrases, defaulting to an
// empty list so clients never break on a fresh session.
func GetHighlights(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if middleware.CurrentIdentity(c) == nil {
			return apperr.Unauthorized("not authenticated")
		}

		phrases, err := svc.Annotations.Highlights(c.Context(), c.Params("sessionId"))
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"highlights": phrases})
	}
}

// SaveMindMap upserts a session's mind-map document.
func SaveMindMap(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if middleware.CurrentIdentity(c) == nil {
			return apperr.Unauthorized("not authenticated")
		}

		var req struct {
			Data json.RawMessage `json:"data"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}

		if err := svc.Annotations.SaveMindMap(c.Context(), c.Params("sessionId"), req.Data); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true})
	}
}

// GetMindMap returns a session's mind-map document, or JSON null when
// none has been saved.
func GetMindMap(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if middleware.CurrentIdentity(c) == nil {
			return apperr.Unauthorized("not authenticated")
		}

		data, err := svc.Annotations.MindMap(c.Context(), c.Params("sessionId"))
		if err != nil {
			return err
		}
		if data == nil {
			return c.JSON(nil)
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(data)
	}
}
