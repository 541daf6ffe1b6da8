// Package filesystem provides an object storage adapter over a local
// directory tree. Each watched area maps to a subdirectory of the root, and
// fsnotify events surface changes between polling cycles.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/meridian-labs/docsight/internal/core/domain"
	"github.com/meridian-labs/docsight/internal/core/ports/driven"
	"github.com/meridian-labs/docsight/internal/logger"
)

// Ensure Storage implements the interfaces.
var (
	_ driven.ObjectStorage  = (*Storage)(nil)
	_ driven.ChangeNotifier = (*Storage)(nil)
)

// Storage serves objects from subdirectories of a root directory.
type Storage struct {
	root string
}

// NewStorage creates a filesystem storage adapter rooted at dir.
// The directory must exist.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: root directory is required", domain.ErrInvalidInput)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	return &Storage{root: abs}, nil
}

// List walks an area subdirectory and returns a ref per regular file.
// Hidden files and directories are skipped. A missing area directory is an
// empty area, not an error.
func (s *Storage) List(_ context.Context, area string) ([]domain.ObjectRef, error) {
	areaDir, err := s.areaPath(area)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(areaDir); os.IsNotExist(err) {
		return nil, nil
	}

	var refs []domain.ObjectRef
	err = filepath.WalkDir(areaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(areaDir, path)
		if err != nil {
			return err
		}

		refs = append(refs, domain.ObjectRef{
			Area:      area,
			Path:      filepath.ToSlash(rel),
			CreatedAt: info.ModTime(),
			UpdatedAt: info.ModTime(),
			Metadata: map[string]any{
				"size": info.Size(),
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", area, err)
	}
	return refs, nil
}

// Download reads an object's bytes from disk.
func (s *Storage) Download(_ context.Context, area, path string) ([]byte, error) {
	full, err := s.objectPath(area, path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s/%s: %w", area, path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s/%s: %w", area, path, err)
	}
	return content, nil
}

// PublicURL returns a file:// URL for the object.
func (s *Storage) PublicURL(area, path string) string {
	full, err := s.objectPath(area, path)
	if err != nil {
		return ""
	}
	return "file://" + filepath.ToSlash(full)
}

// Notifications watches the area directories with fsnotify and emits an
// "area/path" identity per change event. New subdirectories are added to
// the watch as they appear. The channel closes when ctx is cancelled.
func (s *Storage) Notifications(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := s.watchTree(watcher, s.root); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				s.handleEvent(ctx, watcher, event, out)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Filesystem watch error: %v", err)
			}
		}
	}()
	return out, nil
}

// handleEvent converts one fsnotify event to an identity on out.
func (s *Storage) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event, out chan<- string) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	// Newly created directories join the watch so files under them are seen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := s.watchTree(watcher, event.Name); err != nil {
				logger.Warn("Failed to watch %s: %v", event.Name, err)
			}
			return
		}
	}

	identity, ok := s.identityFor(event.Name)
	if !ok {
		return
	}
	select {
	case out <- identity:
	case <-ctx.Done():
	default:
		// A full buffer means a cycle is already pending.
	}
}

// watchTree adds dir and every subdirectory beneath it to the watcher.
func (s *Storage) watchTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// identityFor maps an absolute file path back to an "area/path" identity.
func (s *Storage) identityFor(path string) (string, bool) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if !strings.Contains(rel, "/") {
		// Files directly under the root belong to no area.
		return "", false
	}
	return rel, true
}

// areaPath resolves an area subdirectory, rejecting traversal.
func (s *Storage) areaPath(area string) (string, error) {
	if area == "" {
		return "", fmt.Errorf("%w: area is required", domain.ErrInvalidInput)
	}
	full := filepath.Join(s.root, filepath.FromSlash(area))
	if !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: invalid area %q", domain.ErrInvalidInput, area)
	}
	return full, nil
}

// objectPath resolves an object path inside an area, rejecting traversal.
func (s *Storage) objectPath(area, path string) (string, error) {
	areaDir, err := s.areaPath(area)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}
	full := filepath.Join(areaDir, filepath.FromSlash(path))
	if !strings.HasPrefix(full, areaDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: invalid path %q", domain.ErrInvalidInput, path)
	}
	return full, nil
}
