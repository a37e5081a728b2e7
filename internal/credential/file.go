package credential

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// maxSecretFileSize bounds how much of a token file is read.
const maxSecretFileSize = 64 * 1024

// FileSecret is a fallback secret read from a file and reloaded when the
// file changes. Suited to mounted secrets that are rotated in place.
type FileSecret struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	value string
}

// NewFileSecret reads path once. The file must exist.
func NewFileSecret(path string, logger *slog.Logger) (*FileSecret, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("token file path: %w", err)
	}
	f := &FileSecret{path: abs, logger: logger}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Secret returns the current file contents, trimmed.
func (f *FileSecret) Secret() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// Path returns the absolute path being read.
func (f *FileSecret) Path() string { return f.path }

// Reload re-reads the file. A missing file clears the secret.
func (f *FileSecret) Reload() error {
	value, err := readSecretFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.set("")
		}
		return fmt.Errorf("read token file: %w", err)
	}
	f.set(value)
	return nil
}

func (f *FileSecret) set(v string) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}

func readSecretFile(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fh.Close()

	data, err := io.ReadAll(io.LimitReader(fh, maxSecretFileSize))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Watch reloads the secret whenever its directory changes. The directory is
// watched rather than the file so that atomic replace-by-rename is seen.
// Blocks until ctx is done.
func (f *FileSecret) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(f.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if err := f.Reload(); err != nil {
				f.logger.Warn("token file reload failed", "path", f.path, "error", err)
				continue
			}
			f.logger.Info("token file reloaded", "path", f.path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("token file watch error", "error", err)
		}
	}
}
