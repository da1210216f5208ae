package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	appdb "github.com/Koushikkumar2005a/Clean-City-Reporter/internal/db"
	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/handlers"
	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/middleware"
	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/routes"
)

func main() {
	_ = godotenv.Load()

	app := fiber.New()
	app.Use(logger.New())
	app.Use(middleware.GlobalRateLimiter())

	// ============================================================================
	// DIRECTORIO DE UPLOADS
	// ============================================================================
	if err := os.MkdirAll("./public/uploads", 0o755); err != nil {
		log.Printf("⚠️  No se pudo crear el directorio de uploads: %v", err)
	}

	// ============================================================================
	// DB CONNECTION
	// ============================================================================
	var dbReady bool

	go func() {
		for {
			db, err := appdb.Connect()
			if err != nil {
				log.Printf("db connect error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if err := appdb.EnsureSchema(db); err != nil {
				log.Printf("ensure schema error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			handlers.Setup(db)
			routes.Register(app, db)
			dbReady = true
			log.Printf("✅ Database ready and routes registered")
			return
		}
	}()

	// Wait briefly for DB to be ready
	for i := 0; i < 10 && !dbReady; i++ {
		time.Sleep(500 * time.Millisecond)
	}

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Señal de terminación recibida, cerrando servidor...")

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error cerrando servidor: %v", err)
		}

		log.Println("✅ Servidor cerrado correctamente")
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	log.Printf("🚀 Servidor escuchando en :%s", port)
	log.Println("📍 Endpoints disponibles:")
	log.Println("   POST /api/auth/send-otp              - Enviar OTP (email o SMS)")
	log.Println("   POST /api/auth/verify-otp            - Verificar OTP")
	log.Println("   POST /api/auth/user-signup           - Registro de usuario")
	log.Println("   POST /api/auth/municipality-signup   - Registro de municipalidad")
	log.Println("   POST /api/auth/user-login            - Login de usuario")
	log.Println("   POST /api/auth/municipality-login    - Login de municipalidad")
	log.Println("   POST /api/complaint/register         - Registrar reclamo con imagen")
	log.Println("   GET  /api/complaint/my-complaints    - Reclamos del usuario")
	log.Println("   GET  /api/health                     - Health check")
	log.Println("   WS   /ws/complaints                  - Feed de reclamos en vivo")
	log.Println("💡 Presiona Ctrl+C para detener")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
