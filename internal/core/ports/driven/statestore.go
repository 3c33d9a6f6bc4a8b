package driven

import "context"

// Keys of persisted selection state.
const (
	StateCurrentPosition     = "current_position"
	StateReadHistory         = "read_history"
	StatePrimaryCode         = "primary_code"
	StateSecondaryCodes      = "secondary_codes"
	StateSelectedTab         = "selected_tab"
	StateWelcomeAcknowledged = "welcome_acknowledged_at"
)

// StateStore is a small key/value store for UI selection state.
// Each key is read and written independently.
type StateStore interface {
	// Get returns the raw value. The boolean is false when unset.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an unset key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key.
	Clear(ctx context.Context) error
}
