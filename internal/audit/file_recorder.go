package audit

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

const lineTimeLayout = "2006-01-02 15:04:05"

// FileRecorder appends human-readable lines: accepted and completed jobs go
// to the history log, busy marker transitions to the flag log.
type FileRecorder struct {
	historyPath string
	flagPath    string
	mu          sync.Mutex
}

func NewFileRecorder(historyPath, flagPath string) *FileRecorder {
	return &FileRecorder{historyPath: historyPath, flagPath: flagPath}
}

func (f *FileRecorder) Record(_ context.Context, rec types.AuditRecord) error {
	target := f.historyPath
	var line string
	ts := rec.CreatedAt.Format(lineTimeLayout)

	switch rec.Kind {
	case types.AuditAccepted:
		line = fmt.Sprintf("%s → rule_id=%s, name=%s\n", ts, rec.JobID, rec.Label)
	case types.AuditJobCompleted:
		line = fmt.Sprintf("%s ✓ rule_id=%s, name=%s %s\n", ts, rec.JobID, rec.Label, rec.Message)
	case types.AuditMarkerSet:
		target = f.flagPath
		line = fmt.Sprintf("%s → flag set: rule_id=%s, name=%s\n", ts, rec.JobID, rec.Label)
	case types.AuditMarkerCleared, types.AuditMarkerReclaimed:
		target = f.flagPath
		line = fmt.Sprintf("%s → flag %s: %s\n", ts, rec.Kind, rec.Message)
	default:
		line = fmt.Sprintf("%s %s rule_id=%s %s\n", ts, rec.Kind, rec.JobID, rec.Message)
	}
	if target == "" {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log %s: %w", target, err)
	}
	defer file.Close()

	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("append audit log %s: %w", target, err)
	}
	return nil
}
