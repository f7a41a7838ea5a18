package metrics

import "sync"

// InMemoryRecorder implements Recorder with mutex-guarded counters.
// Used in tests and exposed by the debug metrics endpoint in development.
type InMemoryRecorder struct {
	mu                    sync.Mutex
	usersRegistered       int64
	registrationsRejected map[string]int64
	loginSuccesses        int64
	loginFailures         int64
	tokensRevoked         int64
	tokensRejected        map[string]int64
	usersUpdated          int64
	usersDeleted          int64
}

// NewInMemory returns a Recorder that keeps counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		registrationsRejected: make(map[string]int64),
		tokensRejected:        make(map[string]int64),
	}
}

// IncUserRegistered increments the registration counter.
func (r *InMemoryRecorder) IncUserRegistered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usersRegistered++
}

// IncRegistrationRejected increments the rejection counter for a reason.
func (r *InMemoryRecorder) IncRegistrationRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrationsRejected[reason]++
}

// IncLoginSuccess increments the successful login counter.
func (r *InMemoryRecorder) IncLoginSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loginSuccesses++
}

// IncLoginFailure increments the failed login counter.
func (r *InMemoryRecorder) IncLoginFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loginFailures++
}

// IncTokenRevoked increments the revoked token counter.
func (r *InMemoryRecorder) IncTokenRevoked() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokensRevoked++
}

// IncTokenRejected increments the rejected token counter for a reason.
func (r *InMemoryRecorder) IncTokenRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokensRejected[reason]++
}

// IncUserUpdated increments the user update counter.
func (r *InMemoryRecorder) IncUserUpdated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usersUpdated++
}

// IncUserDeleted increments the user delete counter.
func (r *InMemoryRecorder) IncUserDeleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usersDeleted++
}

// Snapshot returns a copy of the current counters.
func (r *InMemoryRecorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	rejected := make(map[string]int64, len(r.registrationsRejected))
	for k, v := range r.registrationsRejected {
		rejected[k] = v
	}
	tokens := make(map[string]int64, len(r.tokensRejected))
	for k, v := range r.tokensRejected {
		tokens[k] = v
	}

	return Snapshot{
		UsersRegistered:       r.usersRegistered,
		RegistrationsRejected: rejected,
		LoginSuccesses:        r.loginSuccesses,
		LoginFailures:         r.loginFailures,
		TokensRevoked:         r.tokensRevoked,
		TokensRejected:        tokens,
		UsersUpdated:          r.usersUpdated,
		UsersDeleted:          r.usersDeleted,
	}
}
