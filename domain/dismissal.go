package domain

import "time"

// DismissalRecord suppresses re-injection of a dismissed task until it expires.
// Identifier is the provider id, optionally suffixed with a target id, so a
// dismissal of one post's task does not hide the same provider's other tasks.
type DismissalRecord struct {
	ProviderID      string    `json:"provider_id"`
	Identifier      string    `json:"identifier"`
	DismissedPeriod string    `json:"dismissed_period"` // year-week bucket
	DismissedAt     time.Time `json:"dismissed_at"`
}

// Expired reports whether the record has outlived the expiry window and may
// be purged. A record from the current period never expires, regardless of age.
func (d DismissalRecord) Expired(now time.Time, window time.Duration, currentPeriod string) bool {
	if d.DismissedPeriod == currentPeriod {
		return false
	}
	return now.Sub(d.DismissedAt) >= window
}
