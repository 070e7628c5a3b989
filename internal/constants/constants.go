package constants

import "time"

const (
	MigrationLock = iota
	PendingSlotLock
	WorkerLock
)

const (
	// BusyStaleAfter is the age after which a busy marker is treated as absent.
	BusyStaleAfter = 300 * time.Second

	PendingFileName = "pushup_cmd.txt"
	BusyFileName    = "pushup_busy.lock"
	HistoryLogName  = "history.log"
	FlagLogName     = "pushup_flag.log"

	// SlotSeparator separates job id and label in the pending slot.
	SlotSeparator = "|"

	DefaultPushups  = 20
	DefaultRestTime = 20
)
