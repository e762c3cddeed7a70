// internal/domain/notification/decision_log.go
package notification

import "time"

// DecisionLogEntry is an audit-only row written for every agent evaluation,
// send or skip. The engine never reads it back.
type DecisionLogEntry struct {
	ID        string
	UserID    string
	AgentName string
	Decision  string // "send" or "skip"
	Reason    string
	Metadata  map[string]any
	CreatedAt time.Time
}
