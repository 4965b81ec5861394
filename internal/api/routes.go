package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/documentor/documentor-backend/internal/api/handlers"
	"github.com/documentor/documentor-backend/internal/api/middleware"
	"github.com/documentor/documentor-backend/internal/apperr"
	"github.com/documentor/documentor-backend/internal/identity"
	"github.com/documentor/documentor-backend/internal/services"
)

// Config wires the HTTP surface.
type Config struct {
	Services *services.Services
	Verifier identity.Verifier
	// CORSOrigins enables CORS when non-empty.
	CORSOrigins string
	// StaticDir serves published files under /uploads when non-empty
	// (local storage backend only).
	StaticDir string
}

// NewApp builds the Fiber application with middleware and all routes.
func NewApp(cfg Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "DocuMentor Backend",
		ErrorHandler: errorHandler,
		BodyLimit:    50 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	if cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
			AllowCredentials: true,
		}))
	}

	// Published file bytes are reachable without auth; paths are
	// collision-resistant, not access-controlled.
	if cfg.StaticDir != "" {
		app.Static("/uploads", cfg.StaticDir)
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("DocuMentor backend is up and running!")
	})

	setupRoutes(app, cfg.Services, cfg.Verifier)
	return app
}

func setupRoutes(app *fiber.App, svc *services.Services, verifier identity.Verifier) {
	api := app.Group("/api", middleware.AuthRequired(verifier))

	// Session management
	api.Post("/chats", handlers.CreateSession(svc))
	api.Get("/chats", handlers.GetSessions(svc))
	api.Get("/chats/:sessionId", handlers.GetSession(svc))
	api.Put("/chats/:sessionId", handlers.RenameSession(svc))
	api.Delete("/chats/:sessionId", handlers.DeleteSession(svc))

	// Messages
	api.Post("/chats/:sessionId/messages", handlers.AddMessage(svc))
	api.Get("/chats/:sessionId/messages", handlers.GetMessages(svc))

	// Files
	api.Post("/upload", handlers.Upload(svc))
	api.Get("/files/:sessionId", handlers.GetFiles(svc))

	// Highlights and mind maps
	api.Post("/highlights", handlers.SaveHighlights(svc))
	api.Get("/highlights/:sessionId", handlers.GetHighlights(svc))
	api.Post("/mindmap/:sessionId", handlers.SaveMindMap(svc))
	api.Get("/mindmap/:sessionId", handlers.GetMindMap(svc))

	// AI gateway
	api.Post("/ask", handlers.Ask(svc))
	api.Post("/generate-mindmap", handlers.GenerateMindMap(svc))
}

// errorHandler converts service errors into the error taxonomy's status
// codes. Nothing below the boundary writes status codes itself.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	status := apperr.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
	}

	return c.Status(status).JSON(fiber.Map{"error": apperr.Message(err)})
}
