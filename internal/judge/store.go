package judge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is the durable backend for the judgement log. Writers must treat it as
// append-only: a later write under an existing key is an effective no-op.
type Store interface {
	Load(ctx context.Context) ([]Judgement, error)
	Append(ctx context.Context, judgement Judgement) error
}

// FileStore keeps the log as newline-delimited JSON, one judgement per line.
// Malformed lines are skipped on load rather than aborting; unknown extra fields
// are tolerated by the decoder.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) ([]Judgement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := os.Open(filepath.Clean(s.path))
	if err != nil {
		if os.IsNotExist(err) {
			return []Judgement{}, nil
		}
		return nil, fmt.Errorf("open judgement log: %w", err)
	}
	defer file.Close()

	out := []Judgement{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var judgement Judgement
		if err := json.Unmarshal([]byte(line), &judgement); err != nil {
			continue
		}
		if judgement.ID == "" {
			continue
		}
		out = append(out, judgement)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan judgement log: %w", err)
	}
	return out, nil
}

func (s *FileStore) Append(_ context.Context, judgement Judgement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create judgement log directory: %w", err)
	}
	file, err := os.OpenFile(filepath.Clean(s.path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open judgement log for append: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(judgement)
	if err != nil {
		return fmt.Errorf("encode judgement: %w", err)
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append judgement: %w", err)
	}
	return nil
}
