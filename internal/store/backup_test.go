package store

import (
	"testing"
	"time"

	"planner-cli/internal/model"
)

func TestBackups_WriteListPrune(t *testing.T) {
	b := Backups{Dir: t.TempDir(), Keep: 2}
	doc := model.NewDocument()
	base := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := b.Write(doc, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("write backup: %v", err)
		}
	}
	list, err := b.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 backups kept; got %d", len(list))
	}
	if !list[0].TakenAt.Equal(base.Add(2*time.Minute)) || !list[1].TakenAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("expected newest first; got %v, %v", list[0].TakenAt, list[1].TakenAt)
	}
}

func TestBackups_ListMissingDir(t *testing.T) {
	list, err := Backups{Dir: t.TempDir() + "/nope"}.List()
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list; got %v %v", list, err)
	}
}

func TestValidateSchedule(t *testing.T) {
	if err := ValidateSchedule("0 * * * *"); err != nil {
		t.Fatalf("expected hourly spec valid: %v", err)
	}
	if err := ValidateSchedule("every hour"); err == nil {
		t.Fatalf("expected invalid spec rejected")
	}
}
