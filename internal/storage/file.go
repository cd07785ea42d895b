package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const dayLayout = "20060102"

// FileStore is the local fallback: one JSONL file per collection per day
// (<dir>/<collection>_YYYYMMDD.jsonl), appended in chronological order.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) dayFile(collection string, ts time.Time) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.jsonl", collection, ts.Format(dayLayout)))
}

func (s *FileStore) Save(_ context.Context, collection string, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.dayFile(collection, rec.Timestamp), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("encode append: %w", err)
	}
	return nil
}

func (s *FileStore) QueryRecent(_ context.Context, collection string, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.dayFiles(collection)
	if err != nil {
		return nil, err
	}
	// newest day first
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	var out []Record
	for _, p := range files {
		recs, err := readRecords(p)
		if err != nil {
			return nil, err
		}
		for i := len(recs) - 1; i >= 0; i-- {
			out = append(out, recs[i])
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// Prune removes whole day files strictly older than the cutoff day.
func (s *FileStore) Prune(_ context.Context, before time.Time) (int, error) {
	if before.IsZero() {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read store dir: %w", err)
	}
	cutoff := before.Format(dayLayout)
	removed := 0
	for _, e := range entries {
		day, ok := fileDay(e.Name())
		if !ok || day >= cutoff {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (s *FileStore) dayFiles(collection string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, collection+"_*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	out := matches[:0]
	for _, m := range matches {
		name := filepath.Base(m)
		if _, ok := fileDay(name); ok && name[:strings.LastIndex(name, "_")] == collection {
			out = append(out, m)
		}
	}
	return out, nil
}

// fileDay extracts YYYYMMDD from "<collection>_YYYYMMDD.jsonl".
func fileDay(name string) (string, bool) {
	if !strings.HasSuffix(name, ".jsonl") {
		return "", false
	}
	base := strings.TrimSuffix(name, ".jsonl")
	i := strings.LastIndex(base, "_")
	if i < 0 {
		return "", false
	}
	day := base[i+1:]
	if _, err := time.Parse(dayLayout, day); err != nil {
		return "", false
	}
	return day, true
}

func readRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open read: %w", err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	buf := make([]byte, 0, 1024*1024)
	s.Buffer(buf, 10*1024*1024)
	var recs []Record
	for s.Scan() {
		line := s.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return recs, nil
}
