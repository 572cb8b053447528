package governance

import "errors"

var (
	// ErrNotFound indicates no proposal exists with the given id
	ErrNotFound = errors.New("proposal not found")

	// ErrClosed indicates the proposal already reached a terminal state
	ErrClosed = errors.New("proposal is closed")

	// ErrExpired indicates the proposal outlived the 30-day horizon
	ErrExpired = errors.New("proposal expired")

	// ErrForbidden indicates the actor lacks permission for the operation
	ErrForbidden = errors.New("not allowed")

	// ErrCooldown indicates the reminder was requested again within 24 hours
	ErrCooldown = errors.New("reminder cooldown active")

	// ErrRosterUnavailable indicates a transient failure fetching live membership
	ErrRosterUnavailable = errors.New("roster unavailable")

	// ErrStoreUnavailable indicates the persistence backend is down
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsRetryable reports whether err is a transient infrastructure failure.
// Retryable failures abort the operation without mutating state and must
// never be read as "zero voters" or "proposal failed".
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRosterUnavailable) || errors.Is(err, ErrStoreUnavailable)
}
