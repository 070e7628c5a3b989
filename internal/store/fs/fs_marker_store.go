package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/constants"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// MarkerStore keeps the two markers as plain files in a shared directory:
// the pending slot holds "{jobId}|{label}", the busy marker a unix timestamp.
type MarkerStore struct {
	fs          afs.Service
	dir         string
	pendingPath string
	busyPath    string
}

// NewMarkerStore creates the marker directory if needed.
func NewMarkerStore(fs afs.Service, dir string) (*MarkerStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("marker dir cannot be empty")
	}
	ctx := context.Background()
	exists, _ := fs.Exists(ctx, dir)
	if !exists {
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return &MarkerStore{
		fs:          fs,
		dir:         dir,
		pendingPath: path.Join(dir, constants.PendingFileName),
		busyPath:    path.Join(dir, constants.BusyFileName),
	}, nil
}

func (s *MarkerStore) PendingExists(ctx context.Context) (bool, error) {
	return s.exists(ctx, s.pendingPath)
}

// PutPending writes the job to a temp file and hard-links it into place.
// The link fails when the slot file exists, which makes the write a
// check-and-set even across processes.
func (s *MarkerStore) PutPending(ctx context.Context, job types.PendingJob) error {
	tmp, err := s.writeTemp(ctx, job.Encode())
	if err != nil {
		return fmt.Errorf("write pending job: %w", err)
	}
	defer s.remove(ctx, tmp)

	if err := os.Link(tmp, s.pendingPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			return store.ErrSlotOccupied
		}
		return fmt.Errorf("write pending job: %w", err)
	}
	return nil
}

func (s *MarkerStore) PeekPending(ctx context.Context) (*types.PendingJob, error) {
	return s.readPending(ctx, s.pendingPath)
}

// TakePending renames the slot file aside before reading it, so a concurrent
// PutPending either lands before the rename or finds the slot empty.
func (s *MarkerStore) TakePending(ctx context.Context) (*types.PendingJob, error) {
	exists, err := s.exists(ctx, s.pendingPath)
	if err != nil || !exists {
		return nil, err
	}
	taken := path.Join(s.dir, fmt.Sprintf(".%s.%s.taken", constants.PendingFileName, uuid.New().String()))
	if err := os.Rename(s.pendingPath, taken); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("take pending job: %w", err)
	}
	defer s.remove(ctx, taken)
	return s.readPending(ctx, taken)
}

// GetBusy falls back to the file modification time when the marker does not
// hold a timestamp.
func (s *MarkerStore) GetBusy(ctx context.Context) (*types.BusyMarker, error) {
	exists, err := s.exists(ctx, s.busyPath)
	if err != nil || !exists {
		return nil, err
	}
	data, err := s.fs.DownloadWithURL(ctx, s.busyPath)
	if err != nil {
		if exists, _ := s.exists(ctx, s.busyPath); !exists {
			return nil, nil
		}
		return nil, fmt.Errorf("read busy marker: %w", err)
	}
	if unix, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); err == nil {
		return &types.BusyMarker{SetAt: time.Unix(unix, 0)}, nil
	}
	object, err := s.fs.Object(ctx, s.busyPath)
	if err != nil {
		if exists, _ := s.exists(ctx, s.busyPath); !exists {
			return nil, nil
		}
		return nil, fmt.Errorf("stat busy marker: %w", err)
	}
	return &types.BusyMarker{SetAt: object.ModTime()}, nil
}

// SetBusy replaces the marker with a rename, so readers see either the old
// timestamp or the new one.
func (s *MarkerStore) SetBusy(ctx context.Context, at time.Time) error {
	tmp, err := s.writeTemp(ctx, strconv.FormatInt(at.Unix(), 10))
	if err != nil {
		return fmt.Errorf("write busy marker: %w", err)
	}
	if err := os.Rename(tmp, s.busyPath); err != nil {
		s.remove(ctx, tmp)
		return fmt.Errorf("write busy marker: %w", err)
	}
	return nil
}

func (s *MarkerStore) ClearBusy(ctx context.Context) error {
	return s.remove(ctx, s.busyPath)
}

func (s *MarkerStore) Close() error {
	return nil
}

func (s *MarkerStore) exists(ctx context.Context, URL string) (bool, error) {
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", URL, err)
	}
	return exists, nil
}

func (s *MarkerStore) writeTemp(ctx context.Context, content string) (string, error) {
	tmp := path.Join(s.dir, fmt.Sprintf(".marker-%s.tmp", uuid.New().String()))
	if err := s.fs.Upload(ctx, tmp, file.DefaultFileOsMode, bytes.NewBufferString(content)); err != nil {
		return "", err
	}
	return tmp, nil
}

// remove deletes URL; a file that is already gone is not an error.
func (s *MarkerStore) remove(ctx context.Context, URL string) error {
	exists, err := s.exists(ctx, URL)
	if err != nil || !exists {
		return err
	}
	if err := s.fs.Delete(ctx, URL); err != nil {
		if exists, _ := s.exists(ctx, URL); !exists {
			return nil
		}
		return fmt.Errorf("remove %s: %w", URL, err)
	}
	return nil
}

func (s *MarkerStore) readPending(ctx context.Context, URL string) (*types.PendingJob, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		if exists, _ := s.exists(ctx, URL); !exists {
			return nil, nil
		}
		return nil, fmt.Errorf("read pending job: %w", err)
	}
	job, err := types.ParsePendingJob(string(data))
	if err != nil {
		return nil, err
	}
	return &job, nil
}

var _ store.MarkerStore = (*MarkerStore)(nil)
