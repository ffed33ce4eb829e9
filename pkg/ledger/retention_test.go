package ledger

import (
	"context"
	"testing"
	"time"
)

func TestPruner(t *testing.T) {
	s := openTempDB(t, DriverModernc)
	seed(t, s)

	p := NewPruner(s, 1)
	p.now = func() time.Time { return base.Add(24*time.Hour + 150*time.Minute) }

	if want := base.Add(150 * time.Minute); !p.Cutoff().Equal(want) {
		t.Errorf("Cutoff = %v, want %v", p.Cutoff(), want)
	}

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 3 {
		t.Errorf("deleted %d, want 3", deleted)
	}
}

func TestPruner_Disabled(t *testing.T) {
	s := openTempDB(t, DriverModernc)
	seed(t, s)

	deleted, err := NewPruner(s, 0).Prune(context.Background())
	if err != nil || deleted != 0 {
		t.Errorf("Prune = %d, %v", deleted, err)
	}
}

func TestScheduler(t *testing.T) {
	s := openTempDB(t, DriverModernc)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := NewScheduler(NewPruner(s, 30), "0 3 * * *")
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !sched.IsRunning() {
		t.Fatal("scheduler should be running")
	}
	next := sched.NextRun()
	if next == nil || next.Hour() != 3 || next.Minute() != 0 {
		t.Errorf("NextRun = %v", next)
	}

	sched.Stop()
	if sched.IsRunning() || sched.NextRun() != nil {
		t.Error("scheduler should be stopped")
	}
	sched.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	sched := NewScheduler(NewPruner(openTempDB(t, DriverModernc), 30), "every day")
	if err := sched.Start(context.Background()); err == nil {
		t.Error("expected invalid schedule error")
	}
}

func TestScheduler_DisabledRetention(t *testing.T) {
	sched := NewScheduler(NewPruner(openTempDB(t, DriverModernc), 0), "0 3 * * *")
	if err := sched.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sched.IsRunning() {
		t.Error("scheduler should not run without retention")
	}
}
