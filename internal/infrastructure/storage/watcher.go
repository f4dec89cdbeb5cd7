package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/utils"
)

// ChangeHandler receives the new content of a watched file
type ChangeHandler func(data []byte)

// Watcher reports external edits of one file. Writes announced through
// Remember are not reported back.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange ChangeHandler
	logger   *zap.Logger

	mu       sync.Mutex
	lastHash string
	timer    *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts watching path
func NewWatcher(path string, debounce time.Duration, onChange ChangeHandler, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// the directory survives atomic renames of the file
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	w := &Watcher{
		watcher:  fw,
		path:     absPath,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	if data, err := os.ReadFile(absPath); err == nil {
		w.lastHash = utils.Fingerprint(data)
	}

	w.wg.Add(1)
	go w.watchLoop()
	return w, nil
}

// Remember marks data as already known so its write is not reported
func (w *Watcher) Remember(data []byte) {
	w.mu.Lock()
	w.lastHash = utils.Fingerprint(data)
	w.mu.Unlock()
}

// Close stops the watcher
func (w *Watcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) watchLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if abs, _ := filepath.Abs(event.Name); abs != w.path {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("Failed to read watched file", zap.String("path", w.path), zap.Error(err))
		return
	}

	hash := utils.Fingerprint(data)
	w.mu.Lock()
	if hash == w.lastHash {
		w.mu.Unlock()
		return
	}
	w.lastHash = hash
	w.mu.Unlock()

	w.logger.Info("External schema edit detected",
		zap.String("path", w.path),
		zap.String("hash", utils.Short(hash)))
	w.onChange(data)
}
