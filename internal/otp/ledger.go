package otp

// ============================================================================
// OTP LEDGER - IN-MEMORY ONE-TIME-PASSWORD CHALLENGES CON TTL
// ============================================================================
// Almacén thread-safe de desafíos OTP, keyed por email, con un slot por canal
// (email y phone). Cada slot guarda a lo más un desafío vivo; re-emitir
// sobreescribe el anterior. Expiración lazy en Verify + sweep periódico.
//
// Process-local por diseño: los OTP viven 5 minutos y un restart los olvida.
// Para despliegues multi-instancia el mapa debe migrar a un store compartido
// con TTL detrás de esta misma superficie (Issue/Verify/IsVerified/Evict).
//
// Uso:
//   ledger := otp.NewLedger(5*time.Minute, 10*time.Minute)
//   code, _ := ledger.Issue("a@b.com", otp.ChannelEmail)
//   err := ledger.Verify("a@b.com", otp.ChannelEmail, submitted)

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Channel identifica el canal de entrega de un OTP.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// ValidChannel reports whether c is a recognized delivery channel.
func ValidChannel(c string) bool {
	return Channel(c) == ChannelEmail || Channel(c) == ChannelPhone
}

// Verification failures, mapped to user-facing messages by the handlers.
var (
	ErrNotRequested = errors.New("otp: no challenge requested")
	ErrExpired      = errors.New("otp: challenge expired")
	ErrMismatch     = errors.New("otp: code mismatch")
)

// challenge es un desafío vivo en un slot (email, canal)
type challenge struct {
	code      string
	expiresAt time.Time
	verified  bool
}

// entry agrupa los dos slots de canal de un mismo email
type entry struct {
	emailOtp *challenge
	phoneOtp *challenge
}

func (e *entry) slot(c Channel) **challenge {
	if c == ChannelEmail {
		return &e.emailOtp
	}
	return &e.phoneOtp
}

// Ledger es el almacén thread-safe de desafíos OTP
type Ledger struct {
	entries         map[string]*entry
	mu              sync.RWMutex
	ttl             time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan bool
	now             func() time.Time // inyectable para tests
}

// NewLedger crea un ledger con el TTL dado por desafío.
// cleanupInterval ejecuta limpieza periódica de desafíos expirados sin verificar.
func NewLedger(ttl, cleanupInterval time.Duration) *Ledger {
	l := &Ledger{
		entries:         make(map[string]*entry),
		ttl:             ttl,
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan bool),
		now:             time.Now,
	}

	// Iniciar goroutine de limpieza automática
	go l.startCleanupTimer()

	return l
}

// Issue genera un código aleatorio de 6 dígitos (100000-999999), lo almacena
// en el slot (email, channel) con expiración now+ttl y verified=false, y lo
// retorna. Un desafío previo en el mismo slot queda silenciosamente
// reemplazado. El ledger nunca despacha el código; eso es del caller.
func (l *Ledger) Issue(email string, ch Channel) (string, error) {
	if !ValidChannel(string(ch)) {
		return "", fmt.Errorf("otp: unknown channel %q", ch)
	}
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[email]
	if !ok {
		e = &entry{}
		l.entries[email] = e
	}
	*e.slot(ch) = &challenge{
		code:      code,
		expiresAt: l.now().Add(l.ttl),
	}
	return code, nil
}

// Verify valida un código enviado contra el slot (email, channel).
// Retorna ErrNotRequested si no hay desafío, ErrExpired (y evicta el slot) si
// venció, ErrMismatch si el código difiere. En match marca verified=true.
// Repetir Verify sobre un slot ya verificado sigue retornando éxito.
func (l *Ledger) Verify(email string, ch Channel, submitted string) error {
	if !ValidChannel(string(ch)) {
		return ErrNotRequested
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[email]
	if !ok {
		return ErrNotRequested
	}
	slot := e.slot(ch)
	c := *slot
	if c == nil {
		return ErrNotRequested
	}

	// Un slot verificado queda verificado; la expiración ya no aplica.
	if c.verified && c.code == submitted {
		return nil
	}

	if l.now().After(c.expiresAt) {
		*slot = nil
		return ErrExpired
	}

	// Comparación string-exacta; la generación es de ancho fijo
	if c.code != submitted {
		return ErrMismatch
	}

	c.verified = true
	return nil
}

// IsVerified es el check read-only que usa el gate de registro.
func (l *Ledger) IsVerified(email string, ch Channel) bool {
	if !ValidChannel(string(ch)) {
		return false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.entries[email]
	if !ok {
		return false
	}
	c := *e.slot(ch)
	return c != nil && c.verified
}

// Requested reporta si existe un desafío (verificado o no) en el slot.
// El flujo de registro lo usa para distinguir "nunca pedido" de "no verificado".
func (l *Ledger) Requested(email string, ch Channel) bool {
	if !ValidChannel(string(ch)) {
		return false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.entries[email]
	if !ok {
		return false
	}
	return *e.slot(ch) != nil
}

// Evict descarta ambos slots de un email. Se llama tras un registro exitoso
// para acotar el crecimiento del mapa; el estado verificado ya fue consumido.
func (l *Ledger) Evict(email string) {
	l.mu.Lock()
	delete(l.entries, email)
	l.mu.Unlock()
}

// Count retorna el número de emails con desafíos en el ledger.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Stop detiene la limpieza automática.
func (l *Ledger) Stop() {
	l.stopCleanup <- true
}

// startCleanupTimer ejecuta limpieza periódica de desafíos expirados
func (l *Ledger) startCleanupTimer() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.deleteExpired()
		case <-l.stopCleanup:
			return
		}
	}
}

// deleteExpired elimina desafíos expirados NO verificados. Los verificados se
// conservan: el gate de registro depende de ellos aunque su TTL haya pasado.
func (l *Ledger) deleteExpired() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for email, e := range l.entries {
		if c := e.emailOtp; c != nil && !c.verified && now.After(c.expiresAt) {
			e.emailOtp = nil
		}
		if c := e.phoneOtp; c != nil && !c.verified && now.After(c.expiresAt) {
			e.phoneOtp = nil
		}
		if e.emailOtp == nil && e.phoneOtp == nil {
			delete(l.entries, email)
		}
	}
}

// generateCode produce un código uniforme de 6 dígitos en [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
