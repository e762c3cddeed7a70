// internal/agent/agent.go
package agent

import (
	"context"
	"time"

	"recur_notification_service/internal/domain/notification"
	"recur_notification_service/internal/domain/user"
)

// Agent names, in orchestration priority order.
const (
	NameAlert          = "alert"
	NameEngage         = "engage"
	NameGatherMoreInfo = "gather_more_info"
	NameOnboarding     = "onboarding"
	NameNeverTried     = "never_tried"
)

// Action of a Decision.
type Action string

const (
	ActionSend Action = "send"
	ActionSkip Action = "skip"
)

// Message is the user-facing content of a notification.
type Message struct {
	Title string
	Body  string
}

// Decision is the outcome of one agent evaluation. Agents only decide; they
// never deliver.
type Decision struct {
	Action   Action
	Reason   string
	Message  Message
	DeepLink string
	Priority notification.Priority
	Type     notification.Type
	Metadata map[string]any
}

// IsSend reports whether the decision asks for a notification.
func (d Decision) IsSend() bool {
	return d.Action == ActionSend
}

// Skip builds a skip decision with the given reason.
func Skip(reason string) Decision {
	return Decision{Action: ActionSkip, Reason: reason}
}

// DedupChecker decides whether a (user, notification type, optional class)
// combination is already covered and must not be notified again. The lookback
// implementation compares the last sent-log entry against the cooldown; the
// active-record implementation ignores the cooldown and checks for an
// unresolved in-app record. One implementation is injected per deployment.
type DedupChecker interface {
	IsSuppressed(ctx context.Context, userID string, t notification.Type, classID string, cooldown time.Duration, now time.Time) (bool, error)
}

// Agent is a single decision unit evaluated by the orchestrator.
type Agent interface {
	Name() string
	Evaluate(ctx context.Context, u *user.User, now time.Time) (Decision, error)
}

// classWord returns "class" or "classes" for a count.
func classWord(n int) string {
	if n == 1 {
		return "class"
	}
	return "classes"
}
