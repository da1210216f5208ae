package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/handlers"
	"github.com/gofiber/fiber/v2"
)

func newGatedApp() *fiber.App {
	handlers.Setup(nil)

	app := fiber.New()
	app.Get("/user-only", RequireUser(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"principalID": c.Locals("principalID"),
			"userType":    c.Locals("userType"),
		})
	})
	app.Get("/municipality-only", RequireMunicipality(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestGateRejectsMissingToken(t *testing.T) {
	app := newGatedApp()

	req := httptest.NewRequest("GET", "/user-only", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestGateRejectsGarbageToken(t *testing.T) {
	app := newGatedApp()

	req := httptest.NewRequest("GET", "/user-only", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestGateAcceptsValidToken(t *testing.T) {
	app := newGatedApp()

	token, _, err := handlers.IssueToken(99, "gate@example.com")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/user-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGateAcceptsTokenOnEitherRole(t *testing.T) {
	// El rol no viaja en el token: cada gate sella el userType de su ruta.
	app := newGatedApp()

	token, _, err := handlers.IssueToken(3, "mun@example.com")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/municipality-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
