package persistence

import "context"

// SettingRepository stores operator-configured key/value settings
type SettingRepository interface {
	// Get returns a setting's value
	//
	// Possible errors:
	// - ErrNotFound: If the key was never set
	Get(ctx context.Context, key string) (string, error)

	// Set creates or overwrites a setting
	Set(ctx context.Context, key, value string) error
}
