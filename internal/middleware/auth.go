package middleware

// ============================================================================
// ROLE GATE - AUTORIZACIÓN POR BEARER TOKEN
// ============================================================================
// Cada endpoint protegido exige exactamente uno de dos checks: "User
// autenticado" o "Municipality autenticada". El gate valida el token, decodifica
// id/email y los deja en Locals para el handler. No re-verifica bloqueo de
// cuenta; eso ocurre en el login (ver handlers.UserLogin).

import (
	"strings"

	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/handlers"
	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/models"
	"github.com/gofiber/fiber/v2"
)

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func requireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "No token, authorization denied"})
		}

		claims, err := handlers.ParseToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
		}

		id, err := claims.GetSubject()
		if err != nil || id == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Message: "Token is not valid"})
		}

		c.Locals("principalID", id)
		c.Locals("email", claims.Email)
		c.Locals("userType", role)
		return c.Next()
	}
}

// RequireUser exige un token de sesión válido y etiqueta el request como user.
func RequireUser() fiber.Handler {
	return requireRole("user")
}

// RequireMunicipality exige un token válido y etiqueta el request como municipality.
func RequireMunicipality() fiber.Handler {
	return requireRole("municipality")
}
