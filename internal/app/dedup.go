// internal/app/dedup.go
package app

import (
	"context"
	"fmt"
	"time"

	"recur_notification_service/internal/domain/notification"
	idb "recur_notification_service/internal/infra/database"
)

// Dedup strategy names accepted in configuration.
const (
	DedupStrategyLookback     = "lookback"
	DedupStrategyActiveRecord = "active_record"
)

// LookbackDedup suppresses a notification when the most recent sent-log entry
// for the same (user, type, class) is younger than the cooldown.
type LookbackDedup struct {
	history notification.HistoryStore
}

func NewLookbackDedup(history notification.HistoryStore) *LookbackDedup {
	return &LookbackDedup{history: history}
}

func (d *LookbackDedup) IsSuppressed(ctx context.Context, userID string, t notification.Type, classID string, cooldown time.Duration, now time.Time) (bool, error) {
	last, err := d.history.Last(ctx, userID, t, classID)
	if err != nil {
		if err == idb.ErrHistoryNotFound {
			return false, nil
		}
		return false, fmt.Errorf("lookback dedup: %w", err)
	}
	return now.Sub(last.SentAt) < cooldown, nil
}

// ActiveRecordDedup suppresses a notification while an unresolved in-app
// record for the same (user, type, class) exists, regardless of age. The
// cooldown parameter is ignored by this strategy.
type ActiveRecordDedup struct {
	records notification.RecordStore
}

func NewActiveRecordDedup(records notification.RecordStore) *ActiveRecordDedup {
	return &ActiveRecordDedup{records: records}
}

func (d *ActiveRecordDedup) IsSuppressed(ctx context.Context, userID string, t notification.Type, classID string, _ time.Duration, _ time.Time) (bool, error) {
	_, err := d.records.Active(ctx, userID, t, classID)
	if err != nil {
		if err == idb.ErrRecordNotFound {
			return false, nil
		}
		return false, fmt.Errorf("active-record dedup: %w", err)
	}
	return true, nil
}
