package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/documentor/documentor-backend/internal/api/middleware"
	"github.com/documentor/documentor-backend/internal/apperr"
	"github.com/documentor/documentor-backend/internal/services"
)

// Upload runs the ingestion pipeline for one multipart PDF upload.
func Upload(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.CurrentIdentity(c)
		if caller == nil {
			return apperr.Unauthorized("not authenticated")
		}

		header, err := c.FormFile("file")
		if err != nil {
			return apperr.Validation("no file uploaded")
		}

		src, err := header.Open()
		if err != nil {
			return apperr.Internal(err, "server error during file processing")
		}
		defer src.Close()

		file, err := svc.Ingest.Ingest(c.Context(), services.Upload{
			OwnerID:     caller.Subject,
			SessionID:   c.FormValue("sessionId"),
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        src,
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(file)
	}
}

// GetFiles lists the caller's files for a session.
func GetFiles(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := middleware.CurrentIdentity(c)
		if caller == nil {
			return apperr.Unauthorized("not authenticated")
		}

		files, err := svc.Ingest.ListForSession(c.Context(), caller.Subject, c.Params("sessionId"))
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"files": files})
	}
}
