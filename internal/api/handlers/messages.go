package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/documentor/documentor-backend/internal/api/middleware"
	"github.com/documentor/documentor-backend/internal/apperr"
	"github.com/documentor/documentor-backend/internal/services"
)

// AddMessage appends a message to one of the caller's sessions. The
// message layer itself does not check ownership, so the boundary
// verifies the caller owns the session before appending.
func AddMessage(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.CurrentIdentity(c)
		if caller == nil {
			return apperr.Unauthorized("not authenticated")
		}

		sessionID := c.Params("sessionId")
		if _, err := svc.Sessions.Get(c.Context(), caller.Subject, sessionID); err != nil {
			return err
		}

		var req struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}

		message, err := svc.Messages.Append(c.Context(), sessionID, req.Role, req.Content)
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(message)
	}
}

// GetMessages lists a session's messages, oldest first. A session owned
// by someone else is a 404; a session that no longer exists yields an
// empty list, so a just-deleted session reads as an empty conversation.
func GetMessages(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.CurrentIdentity(c)
		if caller == nil {
			return apperr.Unauthorized("not authenticated")
		}

		sessionID := c.Params("sessionId")
		session, err := svc.Sessions.GetAny(c.Context(), sessionID)
		if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
			return err
		}
		if session != nil && session.OwnerID != caller.Subject {
			return apperr.NotFound("chat session not found")
		}

		messages, err := svc.Messages.ListForSession(c.Context(), sessionID)
		if err != nil {
			return err
		}

		return c.JSON(messages)
	}
}
