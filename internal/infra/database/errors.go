package database

import "fmt"

// Sentinel errors shared by the Postgres repositories.
var (
	ErrHistoryNotFound     = fmt.Errorf("notification history entry not found")
	ErrRecordNotFound      = fmt.Errorf("notification record not found")
	ErrNoActivePushToken   = fmt.Errorf("no active push token for user")
	ErrClassNotFound       = fmt.Errorf("class not found")
	ErrInvalidScheduleJSON = fmt.Errorf("stored class schedule is not valid JSON")
)
