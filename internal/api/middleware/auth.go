package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/documentor/documentor-backend/internal/identity"
)

const identityKey = "identity"

// AuthRequired verifies the bearer identity token on every request and
// stores the verified identity in the request context. Business logic
// receives the owner id explicitly; it never reads ambient auth state.
func AuthRequired(verifier identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := identity.ExtractBearer(c.Get("Authorization"))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid Authorization header",
			})
		}

		id, err := verifier.Verify(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized: invalid token",
			})
		}

		c.Locals(identityKey, id)
		return c.Next()
	}
}

// CurrentIdentity retrieves the verified identity stored by AuthRequired.
func CurrentIdentity(c *fiber.Ctx) *identity.Identity {
	if id, ok := c.Locals(identityKey).(*identity.Identity); ok {
		return id
	}
	return nil
}
