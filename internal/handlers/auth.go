package handlers

import (
	"database/sql"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/models"
	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/notify"
	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/otp"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"golang.org/x/crypto/bcrypt"
)

// package-level dependencies
var (
	setupOnce   sync.Once    // Garantiza inicialización única
	setupMu     sync.RWMutex // Protege acceso a variables globales
	dbConn      *sql.DB
	jwtSecret   []byte
	tokenTTL    = 24 * time.Hour
	otpLedger   *otp.Ledger
	emailSender notify.Sender
	smsSender   notify.Sender
)

const bcryptCost = 10

// Setup wires shared dependencies for handlers. Call this during app bootstrap.
func Setup(db *sql.DB) {
	setupOnce.Do(func() {
		setupMu.Lock()
		defer setupMu.Unlock()

		dbConn = db
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			// Verificar si estamos en producción
			if os.Getenv("ENV") == "production" || os.Getenv("ENVIRONMENT") == "production" {
				log.Fatal("❌ CRITICAL: JWT_SECRET must be set in production environment")
			}
			log.Println("⚠️ WARNING: Using default JWT secret (development only)")
			secret = "dev-secret-change-me-0123456789abcdef"
		}

		// Validar longitud mínima del secret
		if len(secret) < 32 {
			log.Fatalf("❌ CRITICAL: JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
		}

		jwtSecret = []byte(secret)

		if ttl := os.Getenv("JWT_TTL"); ttl != "" {
			dur, err := time.ParseDuration(ttl)
			if err != nil || dur <= 0 {
				log.Printf("invalid JWT_TTL=%q, using default %s", ttl, tokenTTL)
			} else {
				tokenTTL = dur
			}
		}

		otpTTL := 5 * time.Minute
		if raw := os.Getenv("OTP_TTL"); raw != "" {
			dur, err := time.ParseDuration(raw)
			if err != nil || dur <= 0 {
				log.Printf("invalid OTP_TTL=%q, using default %s", raw, otpTTL)
			} else {
				otpTTL = dur
			}
		}
		otpLedger = otp.NewLedger(otpTTL, 10*time.Minute)

		emailSender = notify.EmailSenderFromEnv()
		smsSender = notify.SMSSenderFromEnv()
	})
}

// getDBConn retorna la conexión de base de datos de forma segura
func getDBConn() *sql.DB {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return dbConn
}

// getJWTSecret retorna el secret JWT de forma segura
func getJWTSecret() []byte {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return jwtSecret
}

func getLedger() *otp.Ledger {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return otpLedger
}

// PrincipalClaims son los claims del token de sesión: id (subject) + email.
// El rol no viaja en el token; cada gate exige el suyo en la ruta.
type PrincipalClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssueToken firma un token HS256 con id de principal, email y expiración.
func IssueToken(principalID int64, email string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(tokenTTL)
	claims := PrincipalClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principalID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(getJWTSecret())
	return signed, expires, err
}

// ParseToken valida firma y expiración de un token y retorna sus claims.
// Lo consume el role gate en internal/middleware.
func ParseToken(tokenString string) (*PrincipalClaims, error) {
	claims := &PrincipalClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return getJWTSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SendOtp handles POST /api/auth/send-otp.
// Emite un código en el ledger y lo despacha por el canal pedido. Si el
// despacho falla la entrada del ledger se conserva: el cliente puede volver a
// pedir sin re-validar nada y el re-issue sobreescribe.
func SendOtp(c *fiber.Ctx) error {
	ledger := getLedger()
	if ledger == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "server not ready"})
	}
	var req models.SendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "invalid json"})
	}
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email is required"})
	}
	if !otp.ValidChannel(req.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: `Type must be either "email" or "phone"`})
	}
	channel := otp.Channel(req.Type)
	if channel == otp.ChannelPhone && req.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Phone number is required"})
	}

	code, err := ledger.Issue(req.Email, channel)
	if err != nil {
		log.Printf("❌ OTP issue error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	if channel == otp.ChannelEmail {
		if err := emailSender.Send(req.Email, code); err != nil {
			log.Printf("❌ Email OTP dispatch failed for %s: %v", req.Email, err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to send email"})
		}
		return c.JSON(models.MessageResponse{Message: "OTP sent to your email"})
	}

	if err := smsSender.Send(req.Phone, code); err != nil {
		log.Printf("❌ SMS OTP dispatch failed for %s: %v", req.Phone, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Failed to send SMS"})
	}
	return c.JSON(models.MessageResponse{Message: "OTP sent to your phone"})
}

// VerifyOtp handles POST /api/auth/verify-otp.
func VerifyOtp(c *fiber.Ctx) error {
	ledger := getLedger()
	if ledger == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "server not ready"})
	}
	var req models.VerifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "invalid json"})
	}
	req.Email = normalizeEmail(req.Email)
	req.Otp = strings.TrimSpace(req.Otp)

	if req.Email == "" || req.Otp == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email and OTP are required"})
	}
	if !otp.ValidChannel(req.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: `Type must be either "email" or "phone"`})
	}
	channel := otp.Channel(req.Type)

	switch err := ledger.Verify(req.Email, channel, req.Otp); {
	case errors.Is(err, otp.ErrNotRequested):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "No " + req.Type + " OTP requested"})
	case errors.Is(err, otp.ErrExpired):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "OTP expired, please request again"})
	case errors.Is(err, otp.ErrMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid OTP"})
	case err != nil:
		log.Printf("❌ OTP verify error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	label := "Email"
	if channel == otp.ChannelPhone {
		label = "Phone"
	}
	return c.JSON(models.MessageResponse{Message: label + " OTP verified successfully"})
}

// UserSignup handles POST /api/auth/user-signup.
//
// Orden de validación: campos requeridos, passwords iguales, duplicados
// (email, luego phone), gate de OTP en ambos canales, hash e insert. Los
// duplicados se reportan antes que el gate de OTP.
func UserSignup(c *fiber.Ctx) error {
	db := getDBConn()
	ledger := getLedger()
	if db == nil || ledger == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "server not ready"})
	}
	var req models.UserSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "invalid json"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	req.Zone = strings.TrimSpace(req.Zone)

	if req.Name == "" || req.Email == "" || req.Phone == "" || req.Password == "" ||
		req.ConfirmPassword == "" || req.Address == "" || req.Zone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "All fields are required"})
	}
	if req.Password != req.ConfirmPassword {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Passwords do not match"})
	}

	// Pre-checks de unicidad (fast path). La constraint UNIQUE de la tabla
	// cierra la carrera si dos registros concurrentes pasan ambos por aquí.
	var existingID int64
	err := db.QueryRow(`SELECT id FROM users WHERE email = ?`, req.Email).Scan(&existingID)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email already exists"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("❌ Error verificando email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	// El namespace de email es global: una municipalidad con ese email también
	// bloquea el registro (UNIQUE no puede cruzar tablas, el pre-check sí)
	err = db.QueryRow(`SELECT id FROM municipalities WHERE email = ?`, req.Email).Scan(&existingID)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email already exists"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("❌ Error verificando email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	err = db.QueryRow(`SELECT id FROM users WHERE phone = ?`, req.Phone).Scan(&existingID)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Phone number already exists"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("❌ Error verificando phone: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	// Gate de verificación: usuario requiere ambos canales verificados
	if !ledger.Requested(req.Email, otp.ChannelEmail) || !ledger.Requested(req.Email, otp.ChannelPhone) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "OTP not setup. Please request OTP for email and phone first."})
	}
	if !ledger.IsVerified(req.Email, otp.ChannelEmail) || !ledger.IsVerified(req.Email, otp.ChannelPhone) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Please verify both email and phone OTP before registering."})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "failed to secure password"})
	}

	res, err := db.Exec(`
		INSERT INTO users (name, email, phone, password_hash, address, zone, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, req.Name, req.Email, req.Phone, string(hash), req.Address, req.Zone, req.Latitude, req.Longitude)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			if strings.Contains(err.Error(), "phone") {
				return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Phone number already exists"})
			}
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email already exists"})
		}
		log.Printf("❌ Error insertando usuario: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	userID, _ := res.LastInsertId()
	ledger.Evict(req.Email)
	log.Printf("✅ Usuario registrado: id=%d, email=%s", userID, req.Email)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"userId":  userID,
	})
}

// validRegNumbers son las diez municipalidades admitidas
var validRegNumbers = map[string]bool{
	"01": true, "02": true, "03": true, "04": true, "05": true,
	"06": true, "07": true, "08": true, "09": true, "10": true,
}

// MunicipalitySignup handles POST /api/auth/municipality-signup.
// Sólo exige el canal email verificado.
func MunicipalitySignup(c *fiber.Ctx) error {
	db := getDBConn()
	ledger := getLedger()
	if db == nil || ledger == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "server not ready"})
	}
	var req models.MunicipalitySignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "invalid json"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.RegNumber = strings.TrimSpace(req.RegNumber)
	req.Location = strings.TrimSpace(req.Location)

	if req.Name == "" || req.Email == "" || req.Password == "" ||
		req.ConfirmPassword == "" || req.RegNumber == "" || req.Location == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "All fields are required"})
	}
	if !validRegNumbers[req.RegNumber] {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid registration number. Valid numbers are 01-10"})
	}
	if req.Password != req.ConfirmPassword {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Passwords do not match"})
	}

	var existingID int64
	err := db.QueryRow(`SELECT id FROM municipalities WHERE email = ?`, req.Email).Scan(&existingID)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email already exists"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("❌ Error verificando email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	err = db.QueryRow(`SELECT id FROM users WHERE email = ?`, req.Email).Scan(&existingID)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email already exists"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("❌ Error verificando email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	err = db.QueryRow(`SELECT id FROM municipalities WHERE reg_number = ?`, req.RegNumber).Scan(&existingID)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Registration number already exists"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("❌ Error verificando reg_number: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	if !ledger.IsVerified(req.Email, otp.ChannelEmail) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email OTP not verified. Please verify your email OTP first."})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "failed to secure password"})
	}

	res, err := db.Exec(`
		INSERT INTO municipalities (name, email, password_hash, reg_number, location)
		VALUES (?, ?, ?, ?, ?)
	`, req.Name, req.Email, string(hash), req.RegNumber, req.Location)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			if strings.Contains(err.Error(), "reg_number") {
				return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Registration number already exists"})
			}
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email already exists"})
		}
		log.Printf("❌ Error insertando municipalidad: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	munID, _ := res.LastInsertId()
	ledger.Evict(req.Email)
	log.Printf("✅ Municipalidad registrada: id=%d, email=%s, zona=%s", munID, req.Email, req.RegNumber)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Municipality registered successfully",
		"munId":   munID,
	})
}

// UserLogin handles POST /api/auth/user-login.
//
// El mensaje de credenciales inválidas no distingue email desconocido de
// password incorrecto (evita enumeración de cuentas). El check de bloqueo va
// ANTES de comparar el password.
func UserLogin(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "server not ready"})
	}
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "invalid json"})
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || strings.TrimSpace(req.Password) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email and password are required"})
	}

	var (
		id           int64
		passwordHash string
		isBlocked    bool
	)
	err := db.QueryRow(`SELECT id, password_hash, is_blocked FROM users WHERE email = ?`, req.Email).
		Scan(&id, &passwordHash, &isBlocked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid email or password"})
		}
		log.Printf("❌ Error consultando usuario: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	if isBlocked {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Message: "Your account has been blocked by municipality. Please contact municipality office."})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid email or password"})
	}

	token, _, err := IssueToken(id, req.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "failed to sign token"})
	}
	c.Set("Cache-Control", "no-store")
	return c.JSON(fiber.Map{
		"message":  "Login successful",
		"token":    token,
		"userId":   id,
		"userType": "user",
	})
}

// MunicipalityLogin handles POST /api/auth/municipality-login.
func MunicipalityLogin(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "server not ready"})
	}
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "invalid json"})
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || strings.TrimSpace(req.Password) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Email and password are required"})
	}

	var (
		id           int64
		passwordHash string
	)
	err := db.QueryRow(`SELECT id, password_hash FROM municipalities WHERE email = ?`, req.Email).
		Scan(&id, &passwordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid email or password"})
		}
		log.Printf("❌ Error consultando municipalidad: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid email or password"})
	}

	token, _, err := IssueToken(id, req.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "failed to sign token"})
	}
	c.Set("Cache-Control", "no-store")
	return c.JSON(fiber.Map{
		"message":        "Login successful",
		"token":          token,
		"municipalityId": id,
		"userType":       "municipality",
	})
}

// CheckEmail handles POST /api/auth/check-email.
// El namespace de email es global: busca en usuarios Y municipalidades.
func CheckEmail(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "server not ready"})
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ExistsResponse{Exists: false})
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ExistsResponse{Exists: false})
	}

	var id int64
	if err := db.QueryRow(`SELECT id FROM users WHERE email = ?`, req.Email).Scan(&id); err == nil {
		return c.JSON(models.ExistsResponse{Exists: true})
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("❌ Error verificando email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}
	if err := db.QueryRow(`SELECT id FROM municipalities WHERE email = ?`, req.Email).Scan(&id); err == nil {
		return c.JSON(models.ExistsResponse{Exists: true})
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("❌ Error verificando email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}
	return c.JSON(models.ExistsResponse{Exists: false})
}

// CheckPhone handles POST /api/auth/check-phone. Sólo usuarios tienen phone.
func CheckPhone(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "server not ready"})
	}
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ExistsResponse{Exists: false})
	}
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ExistsResponse{Exists: false})
	}

	var id int64
	if err := db.QueryRow(`SELECT id FROM users WHERE phone = ?`, req.Phone).Scan(&id); err == nil {
		return c.JSON(models.ExistsResponse{Exists: true})
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("❌ Error verificando phone: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Message: "Server error"})
	}
	return c.JSON(models.ExistsResponse{Exists: false})
}
