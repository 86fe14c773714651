package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	hclog "github.com/hashicorp/go-hclog"

	sourceout "usagetrail/internal/modules/source/port/out"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/logging"
)

// FileFollower tails an NDJSON file and emits each complete line appended to
// it. The directory is watched rather than the file so the file may be
// created or replaced after Follow starts.
type FileFollower struct {
	logger hclog.Logger
}

func NewFileFollower(logger hclog.Logger) sourceout.Follower {
	return &FileFollower{logger: logging.OrNull(logger).Named("follow")}
}

func (f *FileFollower) Follow(ctx context.Context, path string, fromStart bool) (<-chan event.RawEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve follow path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	t := &tail{path: absPath, logger: f.logger}
	if !fromStart {
		if info, err := os.Stat(absPath); err == nil {
			t.offset = info.Size()
		}
	}

	out := make(chan event.RawEvent, 256)
	go func() {
		defer close(out)
		defer watcher.Close()
		emit := func(ev event.RawEvent) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}
		if !t.drain(emit) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != absPath {
					continue
				}
				switch {
				case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
					t.reset()
				case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
					if !t.drain(emit) {
						return
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn("file watcher error", "path", absPath, "error", err)
			}
		}
	}()
	return out, nil
}

type tail struct {
	path    string
	offset  int64
	partial []byte
	logger  hclog.Logger
}

func (t *tail) reset() {
	t.offset = 0
	t.partial = nil
}

// drain reads everything past the current offset. A trailing line without a
// newline is kept until the rest of it arrives.
func (t *tail) drain(emit func(event.RawEvent) bool) bool {
	file, err := os.Open(t.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			t.logger.Warn("open followed file", "path", t.path, "error", err)
		}
		return true
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil && info.Size() < t.offset {
		t.logger.Info("followed file truncated", "path", t.path)
		t.reset()
	}
	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		t.logger.Warn("seek followed file", "path", t.path, "error", err)
		return true
	}
	chunk, err := io.ReadAll(file)
	if err != nil {
		t.logger.Warn("read followed file", "path", t.path, "error", err)
		return true
	}
	t.offset += int64(len(chunk))
	buf := append(t.partial, chunk...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSpace(buf[:i])
		buf = buf[i+1:]
		if len(line) == 0 {
			continue
		}
		ev, err := event.DecodeLine(line)
		if err != nil {
			t.logger.Debug("skip followed line", "error", err)
			continue
		}
		if !emit(ev) {
			return false
		}
	}
	t.partial = append([]byte(nil), buf...)
	return true
}
