// Package lockout tracks failed checkout attempts in the client trust domain.
//
// This is the browser-side submission throttle: it smooths the UX by denying
// obviously doomed resubmissions without a network round trip. It is advisory
// only (anyone can clear the backing storage), so nothing on the server may
// ever depend on it. Real abuse prevention belongs to the admission service.
package lockout

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// EmailAttempt is the per-email failure state.
type EmailAttempt struct {
	Count       int       `json:"count"`
	LockedUntil time.Time `json:"lockedUntil,omitempty"`
}

// Ledger is the persisted attempt state. One serialized blob per storage key.
type Ledger struct {
	EmailAttempts   map[string]*EmailAttempt `json:"emailAttempts"`
	SessionAttempts int                      `json:"sessionAttempts"`
	LastReset       time.Time                `json:"lastReset"`
}

func newLedger(now time.Time) *Ledger {
	return &Ledger{
		EmailAttempts: make(map[string]*EmailAttempt),
		LastReset:     now,
	}
}

// Decision is the outcome of a CheckLimit call.
type Decision struct {
	Allowed bool
	Message string
}

// Config holds the lockout thresholds.
type Config struct {
	MaxEmailAttempts int           // failures before an email locks
	LockoutDuration  time.Duration // how long a locked email stays locked
	SessionCap       int           // failed attempts across all emails
	LedgerTTL        time.Duration // full-ledger reset age
}

// DefaultConfig returns the product thresholds: 5 failures lock an email for
// one hour, 10 session-wide failures block everything, and the ledger resets
// after 24 hours.
func DefaultConfig() *Config {
	return &Config{
		MaxEmailAttempts: 5,
		LockoutDuration:  time.Hour,
		SessionCap:       10,
		LedgerTTL:        24 * time.Hour,
	}
}

// Policy applies the lockout rules over a Store holding one serialized Ledger.
// Corrupt or missing stored data is treated as a fresh ledger (fail-open).
type Policy struct {
	mu     sync.Mutex
	store  Store
	config *Config
	clock  func() time.Time
}

// Option configures a Policy instance.
type Option func(*Policy)

// WithConfig overrides the default thresholds.
func WithConfig(cfg *Config) Option {
	return func(p *Policy) {
		p.config = cfg
	}
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(p *Policy) {
		p.clock = clock
	}
}

// NewPolicy creates a lockout policy over the given store.
func NewPolicy(store Store, opts ...Option) (*Policy, error) {
	if store == nil {
		return nil, fmt.Errorf("lockout store is required")
	}

	p := &Policy{
		store:  store,
		config: DefaultConfig(),
		clock:  time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// CheckLimit decides whether a submission for the email may proceed.
//
// Denial order: session-wide cap first (it is email-independent, so one
// browser cycling through addresses still runs out), then the email's active
// lockout, then the failure-count threshold, which sets the lockout lazily on
// the check that observes it.
func (p *Policy) CheckLimit(email string) Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock()
	ledger := p.load(now)
	key := normalizeEmail(email)

	if ledger.SessionAttempts >= p.config.SessionCap {
		return Decision{
			Allowed: false,
			Message: "試行回数が上限に達しました。しばらく時間をおいてから再度お試しください。",
		}
	}

	entry, ok := ledger.EmailAttempts[key]
	if !ok {
		return Decision{Allowed: true}
	}

	if !entry.LockedUntil.IsZero() {
		if now.Before(entry.LockedUntil) {
			minutes := remainingMinutes(entry.LockedUntil.Sub(now))
			return Decision{
				Allowed: false,
				Message: fmt.Sprintf("セキュリティのため、%d分後に再度お試しください。", minutes),
			}
		}
		// Lockout expired: the email starts over.
		entry.Count = 0
		entry.LockedUntil = time.Time{}
		p.save(ledger)
		return Decision{Allowed: true}
	}

	if entry.Count >= p.config.MaxEmailAttempts {
		entry.LockedUntil = now.Add(p.config.LockoutDuration)
		p.save(ledger)
		minutes := remainingMinutes(p.config.LockoutDuration)
		return Decision{
			Allowed: false,
			Message: fmt.Sprintf("セキュリティのため、%d分後に再度お試しください。", minutes),
		}
	}

	return Decision{Allowed: true}
}

// RecordAttempt records one submission outcome. A success clears the email's
// entry and the session counter; a failure increments both. Failures never
// set the lockout here; that happens inside the next CheckLimit that
// observes the threshold.
func (p *Policy) RecordAttempt(email string, success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock()
	ledger := p.load(now)
	key := normalizeEmail(email)

	if success {
		delete(ledger.EmailAttempts, key)
		ledger.SessionAttempts = 0
		p.save(ledger)
		return
	}

	entry, ok := ledger.EmailAttempts[key]
	if !ok {
		entry = &EmailAttempt{}
		ledger.EmailAttempts[key] = entry
	}
	entry.Count++
	ledger.SessionAttempts++
	p.save(ledger)
}

// load reads and decodes the ledger, applying the 24h full reset.
// Any storage or decode failure yields a fresh ledger: this layer must never
// be able to permanently wedge the checkout form.
func (p *Policy) load(now time.Time) *Ledger {
	raw, err := p.store.Load()
	if err != nil || len(raw) == 0 {
		return newLedger(now)
	}

	var ledger Ledger
	if err := json.Unmarshal(raw, &ledger); err != nil {
		return newLedger(now)
	}
	if ledger.EmailAttempts == nil {
		ledger.EmailAttempts = make(map[string]*EmailAttempt)
	}

	if now.Sub(ledger.LastReset) > p.config.LedgerTTL {
		return newLedger(now)
	}
	return &ledger
}

// save persists the ledger. Write failures are swallowed: losing advisory
// state is strictly better than failing a checkout.
func (p *Policy) save(ledger *Ledger) {
	raw, err := json.Marshal(ledger)
	if err != nil {
		return
	}
	_ = p.store.Save(raw)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func remainingMinutes(d time.Duration) int {
	minutes := int((d + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
