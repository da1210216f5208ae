package handlers

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthResponse representa el estado de salud del sistema
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version,omitempty"`
}

// Health proporciona un health check completo del sistema
func Health(c *fiber.Ctx) error {
	services := make(map[string]string)
	overall := "healthy"

	// ============================================================================
	// CHECK: Base de Datos
	// ============================================================================
	db := getDBConn()
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			services["database"] = "unhealthy: " + err.Error()
			overall = "degraded"
		} else {
			services["database"] = "healthy"
		}
	} else {
		services["database"] = "not_initialized"
		overall = "degraded"
	}

	// ============================================================================
	// CHECK: OTP Ledger
	// ============================================================================
	if ledger := getLedger(); ledger != nil {
		services["otp_ledger"] = "healthy"
	} else {
		services["otp_ledger"] = "not_initialized"
		overall = "degraded"
	}

	// ============================================================================
	// CHECK: Directorio de uploads
	// ============================================================================
	if info, err := os.Stat(uploadsDir); err != nil || !info.IsDir() {
		services["uploads"] = "unavailable"
		overall = "degraded"
	} else {
		services["uploads"] = "healthy"
	}

	// ============================================================================
	// Determinar código de estado HTTP
	// ============================================================================
	statusCode := fiber.StatusOK
	if overall == "degraded" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Services:  services,
		Version:   os.Getenv("APP_VERSION"),
	})
}
