// Package taskid encodes and decodes suggested-task identities.
//
// Two formats are in the wild. Simple ids are a bare provider id, optionally
// followed by "-<digits>" (a week bucket, or a remote task id for the remote
// provider). Detailed ids are pipe-delimited "key/value" pairs with keys in
// canonical (sorted) order. Decode never fails: input that cannot be mapped
// to a registered provider degrades to an inert placeholder holding only the
// raw task id.
package taskid

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sitepulse/backend/domain"
)

// KeyRemoteTask is the provider id whose simple-id numeric suffix is a remote
// task id rather than a week bucket.
const RemoteProvider = "remote-task"

// Well-known field keys.
const (
	KeyTaskID       = "task_id"
	KeyProviderID   = "provider_id"
	KeyCategory     = "category"
	KeyDate         = "date"
	KeyRemoteTaskID = "remote_task_id"
	KeyPostID       = "post_id"
	KeyTermID       = "term_id"
	KeyLong         = "long"
)

// Resolver reports the category of a registered provider.
type Resolver func(providerID string) (domain.ActivityCategory, bool)

// Fields is the structured form of a task identity.
type Fields map[string]any

func (f Fields) TaskID() string     { s, _ := f[KeyTaskID].(string); return s }
func (f Fields) ProviderID() string { s, _ := f[KeyProviderID].(string); return s }
func (f Fields) Date() string {
	switch v := f[KeyDate].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

func (f Fields) Category() domain.ActivityCategory {
	s, _ := f[KeyCategory].(string)
	return domain.ActivityCategory(s)
}

// Resolvable reports whether decoding mapped the id to a known provider.
func (f Fields) Resolvable() bool {
	return f.ProviderID() != ""
}

// Encode builds the canonical detailed id for the given fields. The task_id
// and category keys are never encoded: the former is the output itself, the
// latter is always re-derived from the provider on decode.
func Encode(fields Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == KeyTaskID || k == KeyCategory {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"/"+formatValue(fields[k]))
	}
	return strings.Join(parts, "|")
}

// Decode parses a task id into structured fields. The resolver supplies the
// category for the resolved provider; ids that resolve to no provider degrade
// to {task_id} only and must be treated as inert by callers.
func Decode(taskID string, resolve Resolver) Fields {
	if strings.Contains(taskID, "|") {
		return decodeDetailed(taskID, resolve)
	}
	return decodeSimple(taskID, resolve)
}

func decodeDetailed(taskID string, resolve Resolver) Fields {
	fields := Fields{KeyTaskID: taskID}
	for _, segment := range strings.Split(taskID, "|") {
		key, value, ok := strings.Cut(segment, "/")
		if !ok || key == "" {
			continue
		}
		// "type" is the legacy spelling of provider_id.
		if key == "type" {
			key = KeyProviderID
		}
		fields[key] = castValue(key, value)
	}

	// Category is never trusted from the input.
	delete(fields, KeyCategory)
	if pid := fields.ProviderID(); pid != "" {
		if category, ok := resolve(pid); ok {
			fields[KeyCategory] = string(category)
		}
	}
	return fields
}

func decodeSimple(taskID string, resolve Resolver) Fields {
	providerID := taskID
	suffix := ""
	if idx := strings.LastIndex(taskID, "-"); idx > 0 && isDigits(taskID[idx+1:]) {
		providerID = taskID[:idx]
		suffix = taskID[idx+1:]
	}
	providerID = canonicalProviderID(providerID)

	category, ok := resolve(providerID)
	if !ok {
		// Unresolvable: inert placeholder.
		return Fields{KeyTaskID: taskID}
	}

	fields := Fields{
		KeyTaskID:     taskID,
		KeyProviderID: providerID,
		KeyCategory:   string(category),
	}
	if suffix != "" {
		if providerID == RemoteProvider {
			fields[KeyRemoteTaskID], _ = strconv.Atoi(suffix)
		} else {
			fields[KeyDate] = suffix
		}
	}
	return fields
}

func formatValue(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func castValue(key, value string) any {
	if key == KeyLong {
		return value != "" && value != "0" && value != "false"
	}
	if isDigits(value) {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return value
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
