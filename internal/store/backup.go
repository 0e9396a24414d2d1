package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	appLog "planner-cli/internal/log"
	"planner-cli/internal/model"
)

const (
	backupPrefix = "planner-"
	backupSuffix = ".json"
	// backupStamp sorts lexically in time order.
	backupStamp = "20060102T150405.000Z"
)

// Backups writes timestamped full-document JSON copies into Dir and keeps at
// most Keep of them (0 keeps all).
type Backups struct {
	Dir  string
	Keep int
}

type BackupInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	TakenAt time.Time `json:"takenAt"`
}

// Write stores doc and prunes old backups. It returns the new file path.
func (b Backups) Write(doc *model.Document, now time.Time) (string, error) {
	if strings.TrimSpace(b.Dir) == "" {
		return "", fmt.Errorf("backup: missing dir")
	}
	raw, err := Marshal(doc)
	if err != nil {
		return "", err
	}
	name := backupPrefix + now.UTC().Format(backupStamp) + backupSuffix
	path := filepath.Join(b.Dir, name)
	if err := writeFileAtomic(path, raw); err != nil {
		return "", err
	}
	if err := b.prune(); err != nil {
		return path, err
	}
	return path, nil
}

// List returns the backups, newest first.
func (b Backups) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(b.Dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []BackupInfo{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		ts, err := time.Parse(backupStamp, strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix))
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, BackupInfo{Name: name, Path: filepath.Join(b.Dir, name), Size: info.Size(), TakenAt: ts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (b Backups) prune() error {
	if b.Keep <= 0 {
		return nil
	}
	list, err := b.List()
	if err != nil {
		return err
	}
	for _, old := range list[min(b.Keep, len(list)):] {
		if err := os.Remove(old.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// BackupScheduler takes backups of a workspace on a cron schedule.
type BackupScheduler struct {
	c *cron.Cron
}

// StartBackupScheduler runs a backup of ws on every tick of spec (standard
// five-field cron syntax).
func StartBackupScheduler(spec string, ws *Workspace, b Backups) (*BackupScheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		path, err := b.Write(ws.Doc(), ws.Env().Time())
		if err != nil {
			appLog.Error("scheduled backup failed", err, "dir", b.Dir)
			return
		}
		appLog.Info("backup written", "path", path)
	})
	if err != nil {
		return nil, fmt.Errorf("backup schedule %q: %w", spec, err)
	}
	c.Start()
	return &BackupScheduler{c: c}, nil
}

// ValidateSchedule reports whether spec parses as a five-field cron expression.
func ValidateSchedule(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}

// Next returns the next planned run.
func (s *BackupScheduler) Next() time.Time {
	entries := s.c.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop halts the schedule and waits for a running backup to finish.
func (s *BackupScheduler) Stop() {
	<-s.c.Stop().Done()
}
