// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Registration metrics
	IncUserRegistered()
	IncRegistrationRejected(reason string) // reason: validation error class

	// Session metrics
	IncLoginSuccess()
	IncLoginFailure()
	IncTokenRevoked()
	IncTokenRejected(reason string) // reason: "invalid", "expired", "revoked"

	// User management metrics
	IncUserUpdated()
	IncUserDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

// Snapshot is a point-in-time view of the recorded counters.
type Snapshot struct {
	UsersRegistered       int64            `json:"users_registered"`
	RegistrationsRejected map[string]int64 `json:"registrations_rejected"`
	LoginSuccesses        int64            `json:"login_successes"`
	LoginFailures         int64            `json:"login_failures"`
	TokensRevoked         int64            `json:"tokens_revoked"`
	TokensRejected        map[string]int64 `json:"tokens_rejected"`
	UsersUpdated          int64            `json:"users_updated"`
	UsersDeleted          int64            `json:"users_deleted"`
}
