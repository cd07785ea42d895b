package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStore_SaveAndQueryRecent(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	ctx := context.Background()

	day1 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.Local)
	day2 := day1.AddDate(0, 0, 1)
	recs := []Record{
		{Query: "gatos", Result: "r1", Source: SourceWeb, Timestamp: day1},
		{Query: "cães", Result: "r2", Source: SourceWeb, Timestamp: day1.Add(time.Hour)},
		{Query: "pássaros", Result: "r3", Source: SourceWeb, Timestamp: day2},
	}
	for _, r := range recs {
		if err := st.Save(ctx, CollectionSearches, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := st.Save(ctx, CollectionConversations, Record{UserInput: "oi", AssistantResponse: "olá", Timestamp: day2}); err != nil {
		t.Fatalf("save conversation: %v", err)
	}

	got, err := st.QueryRecent(ctx, CollectionSearches, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3, got %d", len(got))
	}
	if got[0].Query != "pássaros" || got[1].Query != "cães" || got[2].Query != "gatos" {
		t.Fatalf("order mismatch: %+v", got)
	}
	if got[0].ID == "" {
		t.Fatalf("id not assigned")
	}

	limited, err := st.QueryRecent(ctx, CollectionSearches, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("limit not applied: %d %v", len(limited), err)
	}

	if _, err := os.Stat(filepath.Join(dir, "searches_"+day1.Format("20060102")+".jsonl")); err != nil {
		t.Fatalf("day file not written: %v", err)
	}
}

func TestFileStore_QueryEmptyCollection(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	got, err := st.QueryRecent(context.Background(), CollectionSearches, 5)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v %v", got, err)
	}
}

func TestFileStore_PruneRemovesOldDays(t *testing.T) {
	dir := t.TempDir()
	st, _ := NewFileStore(dir)
	ctx := context.Background()
	old := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
	recent := time.Date(2025, 2, 1, 9, 0, 0, 0, time.Local)
	_ = st.Save(ctx, CollectionSearches, Record{Query: "old", Timestamp: old})
	_ = st.Save(ctx, CollectionSearches, Record{Query: "new", Timestamp: recent})

	n, err := st.Prune(ctx, time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 removed, got %d", n)
	}
	got, _ := st.QueryRecent(ctx, CollectionSearches, 10)
	if len(got) != 1 || got[0].Query != "new" {
		t.Fatalf("unexpected survivors: %+v", got)
	}
}
