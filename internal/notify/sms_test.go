package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCleanPhone(t *testing.T) {
	cases := map[string]string{
		"+91 99999 99999": "9999999999",
		"9999999999":      "9999999999",
		"099-9999-9999":   "9999999999",
		"12345":           "12345",
	}
	for input, want := range cases {
		if got := cleanPhone(input); got != want {
			t.Errorf("cleanPhone(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFast2SMSSend(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dev/bulkV2" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"return": true})
	}))
	defer server.Close()

	sender := &Fast2SMSSender{
		baseURL:    server.URL,
		apiKey:     "test-key",
		httpClient: server.Client(),
	}

	if err := sender.Send("+91 99999 99999", "123456"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotAuth != "test-key" {
		t.Errorf("Expected authorization header, got %q", gotAuth)
	}
	if gotBody["numbers"] != "9999999999" {
		t.Errorf("Expected cleaned phone, got %q", gotBody["numbers"])
	}
	if gotBody["variables_values"] != "123456" {
		t.Errorf("Expected OTP in payload, got %q", gotBody["variables_values"])
	}
}

func TestFast2SMSProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"return": false, "message": "invalid number"})
	}))
	defer server.Close()

	sender := &Fast2SMSSender{
		baseURL:    server.URL,
		apiKey:     "test-key",
		httpClient: server.Client(),
	}

	if err := sender.Send("9999999999", "123456"); err == nil {
		t.Error("Expected error when provider rejects the message")
	}
}

func TestSendersReportMissingConfig(t *testing.T) {
	f := &Fast2SMSSender{httpClient: http.DefaultClient}
	if err := f.Send("9999999999", "123456"); err == nil {
		t.Error("Expected error from unconfigured Fast2SMS sender")
	}
	m := &Msg91Sender{httpClient: http.DefaultClient}
	if err := m.Send("9999999999", "123456"); err == nil {
		t.Error("Expected error from unconfigured Msg91 sender")
	}
	s := &SMTPSender{}
	if err := s.Send("a@b.com", "123456"); err == nil {
		t.Error("Expected error from unconfigured SMTP sender")
	}
}
