package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Spool stages uploaded file bytes on local disk until the session is
// committed. Staged files are throwaway: losing the spool loses only
// uncommitted work.
type Spool struct {
	dir string
}

func NewSpool(dir string) (*Spool, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "kb-ingest-spool")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Spool{dir: dir}, nil
}

// Put streams r to the spool and returns the staged size.
func (s *Spool) Put(sessionID, itemID string, r io.Reader) (int64, error) {
	dir := filepath.Join(s.dir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create session spool dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, itemID))
	if err != nil {
		return 0, fmt.Errorf("create spool file: %w", err)
	}
	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(f.Name())
		return 0, fmt.Errorf("stage file: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(f.Name())
		return 0, fmt.Errorf("close spool file: %w", closeErr)
	}
	return n, nil
}

// Open returns the staged bytes for an item.
func (s *Spool) Open(sessionID, itemID string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, sessionID, itemID))
	if err != nil {
		return nil, fmt.Errorf("open spool file: %w", err)
	}
	return f, nil
}

// Remove drops a single staged item. Missing files are fine.
func (s *Spool) Remove(sessionID, itemID string) error {
	err := os.Remove(filepath.Join(s.dir, sessionID, itemID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove spool file: %w", err)
	}
	return nil
}

// RemoveSession drops everything staged for a session.
func (s *Spool) RemoveSession(sessionID string) error {
	if err := os.RemoveAll(filepath.Join(s.dir, sessionID)); err != nil {
		return fmt.Errorf("remove session spool: %w", err)
	}
	return nil
}
