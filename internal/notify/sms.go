package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// cleanPhone deja los últimos 10 dígitos del número (formato local esperado
// por los providers indios; quita prefijos +91 y separadores).
func cleanPhone(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}

// ============================================================================
// FAST2SMS
// ============================================================================

// Fast2SMSSender envía OTP por la ruta "otp" del bulk API de Fast2SMS.
type Fast2SMSSender struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewFast2SMSSender crea el sender leyendo FAST2SMS_API_KEY desde env.
func NewFast2SMSSender() *Fast2SMSSender {
	baseURL := os.Getenv("FAST2SMS_URL")
	if baseURL == "" {
		baseURL = "https://www.fast2sms.com"
	}
	return &Fast2SMSSender{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  strings.TrimSpace(os.Getenv("FAST2SMS_API_KEY")),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *Fast2SMSSender) configured() bool {
	return s.apiKey != ""
}

// Send dispatches the OTP SMS through Fast2SMS.
func (s *Fast2SMSSender) Send(destination, code string) error {
	if !s.configured() {
		return fmt.Errorf("fast2sms sender: API key not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"route":            "otp",
		"variables_values": code,
		"numbers":          cleanPhone(destination),
	})
	if err != nil {
		return fmt.Errorf("fast2sms sender: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/dev/bulkV2", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("fast2sms sender: %w", err)
	}
	req.Header.Set("authorization", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fast2sms sender: %w", err)
	}
	defer resp.Body.Close()

	// Fast2SMS responde {"return": true, ...} en éxito
	var body struct {
		Return  bool `json:"return"`
		Message any  `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("fast2sms sender: invalid provider response: %w", err)
	}
	if !body.Return {
		return fmt.Errorf("fast2sms sender: provider rejected message: %v", body.Message)
	}
	return nil
}

// ============================================================================
// MSG91
// ============================================================================

// Msg91Sender envía OTP por el endpoint /api/v5/otp de MSG91.
type Msg91Sender struct {
	baseURL    string
	authKey    string
	templateID string
	httpClient *http.Client
}

// NewMsg91Sender crea el sender leyendo MSG91_AUTH_KEY y MSG91_TEMPLATE_ID.
func NewMsg91Sender() *Msg91Sender {
	baseURL := os.Getenv("MSG91_URL")
	if baseURL == "" {
		baseURL = "https://control.msg91.com"
	}
	return &Msg91Sender{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		authKey:    strings.TrimSpace(os.Getenv("MSG91_AUTH_KEY")),
		templateID: strings.TrimSpace(os.Getenv("MSG91_TEMPLATE_ID")),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *Msg91Sender) configured() bool {
	return s.authKey != ""
}

// Send dispatches the OTP SMS through MSG91.
func (s *Msg91Sender) Send(destination, code string) error {
	if !s.configured() {
		return fmt.Errorf("msg91 sender: auth key not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"template_id": s.templateID,
		"mobile":      "91" + cleanPhone(destination),
		"otp":         code,
	})
	if err != nil {
		return fmt.Errorf("msg91 sender: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/api/v5/otp", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("msg91 sender: %w", err)
	}
	req.Header.Set("authkey", s.authKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("msg91 sender: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("msg91 sender: invalid provider response: %w", err)
	}
	if body.Type != "success" {
		return fmt.Errorf("msg91 sender: provider rejected message: %s", body.Message)
	}
	return nil
}
