package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"aiden/internal/storage"
)

type fakePruner struct {
	before time.Time
	n      int
	err    error
}

func (f *fakePruner) Prune(_ context.Context, before time.Time) (int, error) {
	f.before = before
	return f.n, f.err
}

func TestPruneJob(t *testing.T) {
	now := time.Date(2025, 6, 30, 3, 0, 0, 0, time.UTC)
	p := &fakePruner{n: 3}
	job := PruneJob(p, func(t time.Time) time.Time { return t.AddDate(0, 0, -30) }, func() time.Time { return now })
	if err := job(context.Background()); err != nil {
		t.Fatalf("job: %v", err)
	}
	if !p.before.Equal(now.AddDate(0, 0, -30)) {
		t.Fatalf("cutoff = %v", p.before)
	}

	disabled := &fakePruner{}
	job = PruneJob(disabled, func(time.Time) time.Time { return time.Time{} }, time.Now)
	if err := job(context.Background()); err != nil || !disabled.before.IsZero() {
		t.Fatal("zero cutoff must not prune")
	}

	failing := &fakePruner{err: errors.New("disk")}
	job = PruneJob(failing, func(t time.Time) time.Time { return t }, time.Now)
	if err := job(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestReportJob(t *testing.T) {
	st, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	_ = st.Save(context.Background(), storage.CollectionConversations, storage.Record{UserInput: "oi", Timestamp: now.AddDate(0, 0, -1)})
	hook := logtest.NewGlobal()
	defer hook.Reset()
	prev := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(prev)

	if err := ReportJob(st, 50, func() time.Time { return now })(context.Background()); err != nil {
		t.Fatalf("report: %v", err)
	}
	last := hook.LastEntry()
	if last == nil || last.Level != log.DebugLevel {
		t.Fatalf("expected debug report entry, got %v", last)
	}
	if js, _ := last.Data["report"].(string); !strings.Contains(js, `"total_turns": 1`) {
		t.Fatalf("report json = %q", js)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New()
	s.Add(Job{Name: "noop", Spec: "", Run: nil})
	if err := s.Start(); err != nil || s.IsRunning() {
		t.Fatal("scheduler without jobs should stay idle")
	}

	s = New()
	s.Add(Job{Name: "retention", Spec: "0 3 * * *", Run: func(context.Context) error { return nil }})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("expected running scheduler")
	}
	s.Stop()

	bad := New()
	bad.Add(Job{Name: "bad", Spec: "not a cron", Run: func(context.Context) error { return nil }})
	if err := bad.Start(); err == nil {
		t.Fatal("expected invalid spec error")
	}
}
