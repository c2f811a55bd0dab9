package repository

import "context"

// SettingRepository exposes host site settings (blog description, site icon)
// to providers that check them.
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
