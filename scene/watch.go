package scene

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/edwinsyarief/shirushi"
	"github.com/fsnotify/fsnotify"
)

// Quiet is how long a scene file must stay untouched before it is reported.
// Editors usually write a file in several steps; they collapse into one event.
const Quiet = 100 * time.Millisecond

// Watcher reports scene files that changed on disk. Events carries one path
// per settled change.
type Watcher struct {
	fs      *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	quiet   time.Duration
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			_ = fs.Close()
			return nil, err
		}
	}
	w := &Watcher{
		fs:      fs,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		quiet:   Quiet,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher. Events and Errors are closed once it returns.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fs.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()

	pending := make(map[string]time.Time)
	timer := time.NewTimer(w.quiet)
	timer.Stop()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isSceneFile(ev.Name) {
				continue
			}
			pending[ev.Name] = time.Now()
			timer.Reset(w.quiet)
		case <-timer.C:
			now := time.Now()
			var settled []string
			for name, at := range pending {
				if now.Sub(at) >= w.quiet {
					settled = append(settled, name)
				}
			}
			slices.Sort(settled)
			for _, name := range settled {
				delete(pending, name)
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
			if len(pending) > 0 {
				timer.Reset(w.quiet)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

func isSceneFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Reload loads the scene at path and records its commands on b.
func Reload[M any](path string, r *Registry, b shirushi.Buffer, k shirushi.Marking[M]) error {
	s, err := Load(path)
	if err != nil {
		return err
	}
	return Apply(s, r, b, k)
}

// Drain reloads every scene the watcher has reported so far, without
// blocking, and returns the paths it reloaded. It is meant to run from a
// system once per frame so that scene edits land at the next flush. A file
// that fails to reload does not stop the others; the errors are joined.
func Drain[M any](w *Watcher, r *Registry, b shirushi.Buffer, k shirushi.Marking[M]) ([]string, error) {
	var (
		reloaded []string
		errs     []error
	)
	for {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return reloaded, errors.Join(errs...)
			}
			if err := Reload(path, r, b, k); err != nil {
				errs = append(errs, err)
				continue
			}
			reloaded = append(reloaded, path)
		case err, ok := <-w.Errors:
			if ok {
				errs = append(errs, err)
			}
		default:
			return reloaded, errors.Join(errs...)
		}
	}
}
