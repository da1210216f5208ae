package routes

import (
	"database/sql"

	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/feed"
	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/handlers"
	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func Register(app *fiber.App, db *sql.DB) {
	// ============================================================================
	// API PÚBLICA (Endpoints para el frontend)
	// ============================================================================
	api := app.Group("/api")

	// Health check (sin rate limiting)
	api.Get("/health", handlers.Health)

	// ============================================================================
	// AUTENTICACIÓN (con rate limiting estricto)
	// ============================================================================
	auth := api.Group("/auth")
	auth.Use(middleware.AuthRateLimiter()) // 10 req/min por IP

	auth.Post("/send-otp", handlers.SendOtp)
	auth.Post("/verify-otp", handlers.VerifyOtp)
	auth.Post("/user-signup", handlers.UserSignup)
	auth.Post("/municipality-signup", handlers.MunicipalitySignup)
	auth.Post("/user-login", handlers.UserLogin)
	auth.Post("/municipality-login", handlers.MunicipalityLogin)
	auth.Post("/check-email", handlers.CheckEmail)
	auth.Post("/check-phone", handlers.CheckPhone)

	// Initialize handlers
	complaintHandler := handlers.NewComplaintHandler(db)
	userHandler := handlers.NewUserHandler(db)
	municipalityHandler := handlers.NewMunicipalityHandler(db)

	// ============================================================================
	// COMPLAINTS (Reclamos ciudadanos)
	// ============================================================================
	complaints := api.Group("/complaint")

	// Registro con imagen: requiere sesión de usuario + rate limiting de uploads
	complaints.Post("/register", middleware.RequireUser(), middleware.UploadRateLimiter(), complaintHandler.CreateComplaint)

	// Vistas del usuario
	complaints.Get("/my-complaints", middleware.RequireUser(), complaintHandler.MyComplaints)
	complaints.Get("/status/:id", middleware.RequireUser(), complaintHandler.ComplaintStatus)

	// Detalle público (lo usa la vista de seguimiento sin sesión)
	complaints.Get("/details/:id", complaintHandler.ComplaintDetails)

	// Vistas de la municipalidad
	complaints.Get("/new-complaints", middleware.RequireMunicipality(), complaintHandler.NewComplaints)
	complaints.Get("/unsolved-complaints", middleware.RequireMunicipality(), complaintHandler.UnsolvedComplaints)
	complaints.Get("/processing-complaints", middleware.RequireMunicipality(), complaintHandler.ProcessingComplaints)
	complaints.Get("/history", middleware.RequireMunicipality(), complaintHandler.ComplaintHistory)
	complaints.Put("/update-status/:id", middleware.RequireMunicipality(), complaintHandler.UpdateComplaintStatus)

	// ============================================================================
	// USER (Perfil y cuenta)
	// ============================================================================
	user := api.Group("/user")
	user.Use(middleware.RequireUser())

	user.Get("/profile", userHandler.Profile)
	user.Put("/profile", middleware.UploadRateLimiter(), userHandler.UpdateProfile)
	user.Delete("/delete-account", userHandler.DeleteAccount)

	// ============================================================================
	// MUNICIPALITY (Perfil, bloqueos y cuenta)
	// ============================================================================
	municipality := api.Group("/municipality")
	municipality.Use(middleware.RequireMunicipality())

	municipality.Get("/profile", municipalityHandler.Profile)
	municipality.Put("/profile", middleware.UploadRateLimiter(), municipalityHandler.UpdateProfile)
	municipality.Post("/block-user/:userId", municipalityHandler.BlockUser)
	municipality.Post("/unblock-user/:userId", municipalityHandler.UnblockUser)
	municipality.Get("/blocked-users", municipalityHandler.BlockedUsers)
	municipality.Delete("/delete-account", municipalityHandler.DeleteAccount)

	// ============================================================================
	// LIVE FEED WEBSOCKET (Reclamos en tiempo real para dashboards)
	// ============================================================================
	app.Use("/ws/complaints", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/complaints", websocket.New(func(c *websocket.Conn) {
		feed.HandleConn(c)
	}))

	// ============================================================================
	// STATIC PAGES (Frontend servido desde public/)
	// ============================================================================
	app.Static("/", "./public")
	app.Static("/uploads", "./public/uploads")

	app.Get("/", servePage("index.html"))
	app.Get("/login", servePage("login.html"))
	app.Get("/signup", servePage("signup.html"))
	app.Get("/user-dashboard", servePage("user-dashboard.html"))
	app.Get("/municipality-dashboard", servePage("municipality-dashboard.html"))
}

func servePage(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendFile("./public/" + name)
	}
}
