package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/otp"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// workflowApp wires the auth handlers against a mock DB and a fresh ledger.
func workflowApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock, *otp.Ledger) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ledger := otp.NewLedger(5*time.Minute, time.Hour)
	t.Cleanup(ledger.Stop)

	setupMu.Lock()
	dbConn = db
	otpLedger = ledger
	jwtSecret = []byte("test-secret-0123456789abcdef0123456789")
	setupMu.Unlock()

	app := fiber.New()
	app.Post("/user-signup", UserSignup)
	app.Post("/user-login", UserLogin)
	return app, mock, ledger
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, payload.Message
}

// issueAndVerify completes a channel's OTP round trip on the ledger.
func issueAndVerify(t *testing.T, ledger *otp.Ledger, email string, ch otp.Channel) {
	t.Helper()
	code, err := ledger.Issue(email, ch)
	if err != nil {
		t.Fatalf("Issue(%s): %v", ch, err)
	}
	if err := ledger.Verify(email, ch, code); err != nil {
		t.Fatalf("Verify(%s): %v", ch, err)
	}
}

const signupBody = `{
	"name": "Ana Rojas",
	"email": "ana@example.com",
	"phone": "9876543210",
	"password": "hunter2secret",
	"confirmPassword": "hunter2secret",
	"address": "Av. Siempre Viva 742",
	"zone": "Zone 3"
}`

func expectNoDuplicates(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT id FROM users WHERE email").
		WithArgs("ana@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id FROM municipalities WHERE email").
		WithArgs("ana@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id FROM users WHERE phone").
		WithArgs("9876543210").WillReturnError(sql.ErrNoRows)
}

func TestUserSignupRequiresBothChannelsRequested(t *testing.T) {
	app, mock, ledger := workflowApp(t)
	expectNoDuplicates(mock)

	// Sólo el canal email fue pedido; el de phone nunca se emitió
	issueAndVerify(t, ledger, "ana@example.com", otp.ChannelEmail)

	resp, msg := postJSON(t, app, "/user-signup", signupBody)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if msg != "OTP not setup. Please request OTP for email and phone first." {
		t.Errorf("message = %q", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserSignupRejectsSingleVerifiedChannel(t *testing.T) {
	app, mock, ledger := workflowApp(t)
	expectNoDuplicates(mock)

	// Ambos canales pedidos, pero sólo email verificado
	issueAndVerify(t, ledger, "ana@example.com", otp.ChannelEmail)
	if _, err := ledger.Issue("ana@example.com", otp.ChannelPhone); err != nil {
		t.Fatalf("Issue(phone): %v", err)
	}

	resp, msg := postJSON(t, app, "/user-signup", signupBody)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if msg != "Please verify both email and phone OTP before registering." {
		t.Errorf("message = %q", msg)
	}
	// Ningún INSERT debe haberse intentado
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserSignupDuplicateEmailWinsOverOtpGate(t *testing.T) {
	app, mock, _ := workflowApp(t)

	// El ledger está vacío: si el gate de OTP corriera primero, el mensaje
	// sería "OTP not setup". El duplicado debe reportarse antes.
	mock.ExpectQuery("SELECT id FROM users WHERE email").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	resp, msg := postJSON(t, app, "/user-signup", signupBody)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if msg != "Email already exists" {
		t.Errorf("message = %q, want duplicate email before OTP gate", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserLoginBlockedBeforePasswordCompare(t *testing.T) {
	app, mock, _ := workflowApp(t)

	// El hash almacenado no corresponde a ningún password: si el compare
	// corriera primero, la respuesta sería 400. El 403 prueba el orden.
	mock.ExpectQuery("SELECT id, password_hash, is_blocked FROM users WHERE email").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "is_blocked"}).
			AddRow(5, "not-a-real-hash", 1))

	resp, msg := postJSON(t, app, "/user-login",
		`{"email": "ana@example.com", "password": "hunter2secret"}`)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
	if msg != "Your account has been blocked by municipality. Please contact municipality office." {
		t.Errorf("message = %q", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserLoginSucceedsOnceUnblocked(t *testing.T) {
	app, mock, _ := workflowApp(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2secret"), bcryptCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	mock.ExpectQuery("SELECT id, password_hash, is_blocked FROM users WHERE email").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "is_blocked"}).
			AddRow(5, string(hash), 0))

	req := httptest.NewRequest("POST", "/user-login",
		strings.NewReader(`{"email": "ana@example.com", "password": "hunter2secret"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var payload struct {
		Message  string `json:"message"`
		Token    string `json:"token"`
		UserID   int64  `json:"userId"`
		UserType string `json:"userType"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Token == "" {
		t.Error("expected a session token")
	}
	if payload.UserID != 5 || payload.UserType != "user" {
		t.Errorf("userId=%d userType=%q, want 5/user", payload.UserID, payload.UserType)
	}
	claims, err := ParseToken(payload.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "5" {
		t.Errorf("subject = %q, want 5", claims.Subject)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
