package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fizzworks/internal/game"
)

// FileStore persists the simulation state as a versioned, indented JSON
// snapshot. Writes go to a temp file first and rename into place so a
// crash mid-write never leaves a half-written save.
type FileStore struct {
	path string
	log  *slog.Logger
}

func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &FileStore{path: path, log: logger}, nil
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".fizzworks", "save.json"), nil
}

func (s *FileStore) Path() string { return s.path }

// Load reads and normalizes the snapshot. A missing file yields a fresh
// default state (fresh=true). A corrupt file is backed up next to the
// save and also yields a fresh state; data loss there is logged, never
// fatal.
func (s *FileStore) Load(cat *game.Catalog) (st *game.State, fresh bool, err error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return game.NewState(cat), true, nil
		}
		return nil, false, fmt.Errorf("read save: %w", err)
	}

	st = &game.State{}
	if err := json.Unmarshal(raw, st); err != nil {
		s.log.Warn("save file corrupt, starting fresh", "path", s.path, "err", err)
		s.backupCorrupt(raw)
		return game.NewState(cat), true, nil
	}
	st.Normalize(cat)
	return st, false, nil
}

// Save writes an indented snapshot atomically.
func (s *FileStore) Save(st *game.State) error {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace save: %w", err)
	}
	return nil
}

// Wipe removes the save file; a missing file is not an error.
func (s *FileStore) Wipe() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) backupCorrupt(raw []byte) {
	backup := s.path + ".corrupt"
	if err := os.WriteFile(backup, raw, 0o600); err != nil {
		s.log.Warn("corrupt save backup failed", "path", backup, "err", err)
		return
	}
	s.log.Info("corrupt save backed up", "path", backup)
}
