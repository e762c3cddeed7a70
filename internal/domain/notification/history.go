// internal/domain/notification/history.go
package notification

import "time"

// HistoryEntry is an immutable row appended for every dispatched (or
// in-app created) notification. The lookback dedup strategy reads it back;
// nothing ever updates it.
type HistoryEntry struct {
	ID        string
	UserID    string
	AgentName string
	Type      Type
	Title     string
	Body      string
	DeepLink  string
	Metadata  map[string]any
	SentAt    time.Time
}

// ClassID returns the class the entry is scoped to, or "" when unscoped.
func (e *HistoryEntry) ClassID() string {
	return metaString(e.Metadata, MetadataClassID)
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}
