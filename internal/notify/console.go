package notify

import "log"

// ConsoleSender imprime el código en el log del servidor. Sólo para
// desarrollo: es el fallback cuando un provider real no está configurado.
type ConsoleSender struct {
	channel string
}

// NewConsoleSender crea un sender de consola etiquetado por canal.
func NewConsoleSender(channel string) *ConsoleSender {
	return &ConsoleSender{channel: channel}
}

func (s *ConsoleSender) Send(destination, code string) error {
	log.Printf("📨 [console-%s] OTP for %s: %s", s.channel, destination, code)
	return nil
}
