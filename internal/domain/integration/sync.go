package integration

import "time"

// Sync triggers
const (
	SyncReasonConnect  = "connect"
	SyncReasonManual   = "manual"
	SyncReasonMetadata = "post_meta"
	SyncReasonSettings = "settings"
	SyncReasonSchedule = "schedule"
)

// SyncResult summarizes one fetch, merge and publish run
type SyncResult struct {
	TenantKey  string
	Published  bool
	MediaCount int
	// Degraded is set when the account runs on a short-lived credential
	Degraded   bool
	Duration   time.Duration
}
