package notify

// ============================================================================
// NOTIFICATION SENDERS - DESPACHO DE OTP FUERA DE BANDA
// ============================================================================
// Una capability por canal: un Sender recibe un destino y un código y reporta
// el resultado. Los providers concretos (SMTP, Fast2SMS, Msg91, consola) se
// eligen por configuración en los constructores *FromEnv; la lógica de negocio
// sólo ve la interfaz.

import (
	"log"
	"os"
	"strings"
)

// Sender despacha un código OTP a un destino (email o teléfono).
type Sender interface {
	Send(destination, code string) error
}

// EmailSenderFromEnv selecciona el provider de email según EMAIL_PROVIDER.
// "smtp" (default cuando hay credenciales) usa el relay SMTP configurado;
// cualquier otro valor, o credenciales ausentes, cae a la consola.
func EmailSenderFromEnv() Sender {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("EMAIL_PROVIDER")))
	switch provider {
	case "", "smtp":
		s := NewSMTPSender()
		if s.configured() {
			return s
		}
		if provider == "smtp" {
			log.Println("⚠️ EMAIL_PROVIDER=smtp but SMTP credentials missing, falling back to console")
		}
	case "console":
	default:
		log.Printf("⚠️ Unknown EMAIL_PROVIDER=%q, falling back to console", provider)
	}
	return NewConsoleSender("email")
}

// SMSSenderFromEnv selecciona el provider de SMS según SMS_PROVIDER.
// Soportados: "fast2sms" (default cuando hay API key), "msg91", "console".
func SMSSenderFromEnv() Sender {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("SMS_PROVIDER")))
	switch provider {
	case "", "fast2sms":
		s := NewFast2SMSSender()
		if s.configured() {
			return s
		}
		if provider == "fast2sms" {
			log.Println("⚠️ SMS_PROVIDER=fast2sms but FAST2SMS_API_KEY missing, falling back to console")
		}
	case "msg91":
		s := NewMsg91Sender()
		if s.configured() {
			return s
		}
		log.Println("⚠️ SMS_PROVIDER=msg91 but MSG91_AUTH_KEY missing, falling back to console")
	case "console":
	default:
		log.Printf("⚠️ Unknown SMS_PROVIDER=%q, falling back to console", provider)
	}
	return NewConsoleSender("sms")
}
