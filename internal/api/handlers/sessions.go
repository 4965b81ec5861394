package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/documentor/documentor-backend/internal/api/middleware"
	"github.com/documentor/documentor-backend/internal/apperr"
	"github.com/documentor/documentor-backend/internal/services"
)

// CreateSession creates a new chat session for the caller.
func CreateSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.CurrentIdentity(c)
		if caller == nil {
			return apperr.Unauthorized("not authenticated")
		}

		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
			return apperr.Validation("invalid request body")
		}

		session, err := svc.Sessions.Create(c.Context(), caller.Subject, req.Name)
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(session)
	}
}

// GetSessions returns all of the caller's sessions.
func GetSessions(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.CurrentIdentity(c)
		if caller == nil {
			return apperr.Unauthorized("not authenticated")
		}

		sessions, err := svc.Sessions.ListForOwner(c.Context(), caller.Subject)
		if err != nil {
			return err
		}

		return c.JSON(sessions)
	}
}

// GetSession returns one of the caller's sessions.
func GetSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.CurrentIdentity(c)
		if caller == nil {
			return apperr.Unauthorized("not authenticated")
		}

		session, err := svc.Sessions.Get(c.Context(), caller.Subject, c.Params("sessionId"))
		if err != nil {
			return err
		}

		return c.JSON(session)
	}
}

// RenameSession renames one of the caller's sessions.
func RenameSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.CurrentIdentity(c)
		if caller == nil {
			return apperr.Unauthorized("not authenticated")
		}

		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}

		session, err := svc.Sessions.Rename(c.Context(), caller.Subject, c.Params("sessionId"), req.Name)
		if err != nil {
			return err
		}

		return c.JSON(session)
	}
}

// DeleteSession deletes one of the caller's sessions and its data.
func DeleteSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.CurrentIdentity(c)
		if caller == nil {
			return apperr.Unauthorized("not authenticated")
		}

		if err := svc.Sessions.Delete(c.Context(), caller.Subject, c.Params("sessionId")); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true})
	}
}
