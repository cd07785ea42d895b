package voice

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"
)

// Repository stores every profile a user ever had; the current one is the last.
type Repository interface {
	Current(user string) (Profile, error)
	Append(user string, p Profile) error
}

// FileRepository keeps one JSON array file per user.
type FileRepository struct {
	dir string
	mu  sync.Mutex
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) path(user string) string {
	safe := strings.Map(func(c rune) rune {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '-' || c == '_' {
			return unicode.ToLower(c)
		}
		return '_'
	}, user)
	if safe == "" {
		safe = "default"
	}
	return filepath.Join(r.dir, safe+"_voice_profile.json")
}

// Current returns defaults when the user has no history yet.
func (r *FileRepository) Current(user string) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	history, err := r.loadUnlocked(user)
	if err != nil {
		return DefaultProfile(), err
	}
	if len(history) == 0 {
		return DefaultProfile(), nil
	}
	return history[len(history)-1], nil
}

func (r *FileRepository) Append(user string, p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	history, _ := r.loadUnlocked(user)
	history = append(history, p)

	tmp := r.path(user) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create profile file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(history); err != nil {
		f.Close()
		return fmt.Errorf("encode profiles: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, r.path(user))
}

func (r *FileRepository) loadUnlocked(user string) ([]Profile, error) {
	data, err := os.ReadFile(r.path(user))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	var history []Profile
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return history, nil
}
