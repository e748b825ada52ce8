package translation

import (
	"context"
	"sync"
	"time"

	"github.com/avrentals/backend/internal/metrics"
)

// Credential is one provider credential in the rotation. The secret comes
// from configuration; nothing in this package logs it.
type Credential struct {
	ID     string
	APIKey string
}

// CredentialLimits bounds every credential in the rotation.
type CredentialLimits struct {
	MaxCallsPerWindow int
	WindowDuration    time.Duration
	DefaultCooldown   time.Duration // applied on throttle when the provider gives no hint
}

type credentialState struct {
	callsThisWindow int
	windowStartedAt time.Time
	cooldownUntil   time.Time
}

// CredentialRateLimiter spreads provider load across N independent
// credentials, each with its own fixed call window and cooldown. All state
// is process-local.
type CredentialRateLimiter struct {
	mu     sync.Mutex
	limits CredentialLimits
	creds  []Credential
	states map[string]*credentialState

	now func() time.Time // test hook
}

// NewCredentialRateLimiter creates a limiter over an ordered credential list.
func NewCredentialRateLimiter(creds []Credential, limits CredentialLimits) *CredentialRateLimiter {
	if limits.MaxCallsPerWindow <= 0 {
		limits.MaxCallsPerWindow = 8
	}
	if limits.WindowDuration <= 0 {
		limits.WindowDuration = time.Minute
	}
	if limits.DefaultCooldown <= 0 {
		limits.DefaultCooldown = time.Minute
	}

	l := &CredentialRateLimiter{
		limits: limits,
		creds:  creds,
		states: make(map[string]*credentialState, len(creds)),
		now:    time.Now,
	}
	for _, c := range creds {
		l.states[c.ID] = &credentialState{}
	}
	return l
}

// refresh resets an elapsed window. Must be called with the lock held.
func (l *CredentialRateLimiter) refresh(st *credentialState, now time.Time) {
	if now.Sub(st.windowStartedAt) >= l.limits.WindowDuration {
		st.callsThisWindow = 0
		st.windowStartedAt = now
	}
}

func (l *CredentialRateLimiter) available(st *credentialState, now time.Time) bool {
	l.refresh(st, now)
	if now.Before(st.cooldownUntil) {
		return false
	}
	return st.callsThisWindow < l.limits.MaxCallsPerWindow
}

// ListAvailable returns the credentials that can take a call right now, in
// configuration order.
func (l *CredentialRateLimiter) ListAvailable() []Credential {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	var out []Credential
	for _, c := range l.creds {
		if l.available(l.states[c.ID], now) {
			out = append(out, c)
		}
	}
	return out
}

// Acquire checks one credential's budget and cooldown and, when it can take
// a call right now, counts that call against its window. Check and count are
// one atomic step so concurrent dispatches cannot both spend the last slot.
func (l *CredentialRateLimiter) Acquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.states[id]
	if !ok {
		return false
	}
	now := l.now()
	if !l.available(st, now) {
		return false
	}
	if st.callsThisWindow == 0 {
		st.windowStartedAt = now
	}
	st.callsThisWindow++
	return true
}

// RecordCall counts one provider call against a credential's window.
func (l *CredentialRateLimiter) RecordCall(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.states[id]
	if !ok {
		return
	}
	now := l.now()
	l.refresh(st, now)
	if st.callsThisWindow == 0 {
		st.windowStartedAt = now
	}
	st.callsThisWindow++
}

// RecordThrottled forces a credential out of rotation after the provider
// reported a rate limit or unavailability. A zero retryAfter applies the
// configured default cooldown.
func (l *CredentialRateLimiter) RecordThrottled(id string, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.states[id]
	if !ok {
		return
	}
	if retryAfter <= 0 {
		retryAfter = l.limits.DefaultCooldown
	}
	st.cooldownUntil = l.now().Add(retryAfter)
	metrics.CredentialCooldownsTotal.Inc()
	infoLog("credential %s in cooldown for %s", id, retryAfter)
}

// NextAvailableAt returns the earliest instant at which some credential
// becomes available again. Callers sleep until then instead of spin-polling.
// With no credentials configured it returns the zero time.
func (l *CredentialRateLimiter) NextAvailableAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	var earliest time.Time
	for _, c := range l.creds {
		st := l.states[c.ID]
		if l.available(st, now) {
			return now
		}

		candidate := st.windowStartedAt.Add(l.limits.WindowDuration)
		if st.cooldownUntil.After(candidate) {
			candidate = st.cooldownUntil
		}
		if earliest.IsZero() || candidate.Before(earliest) {
			earliest = candidate
		}
	}
	return earliest
}

// WaitAvailable blocks until at least one credential is available or ctx
// expires.
func (l *CredentialRateLimiter) WaitAvailable(ctx context.Context) ([]Credential, error) {
	for {
		if creds := l.ListAvailable(); len(creds) > 0 {
			return creds, nil
		}

		next := l.NextAvailableAt()
		if next.IsZero() {
			return nil, context.Canceled // no credentials configured at all
		}

		wait := time.Until(next)
		if wait < 50*time.Millisecond {
			wait = 50 * time.Millisecond
		}
		debugLog("all credentials exhausted, waiting %s", wait.Round(time.Millisecond))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}
