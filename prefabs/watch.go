package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Reload is one debounced edit of a watched spec file together with the
// config re-read after it. Err is set when the new files do not load or
// validate; the caller should keep its current config then.
type Reload struct {
	File   string
	Config Config
	Err    error
}

// Watcher re-reads the config whenever a yaml spec it watches changes.
type Watcher struct {
	fs      *fsnotify.Watcher
	load    func() (Config, error)
	only    string
	Reloads chan Reload
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// WatchConfig follows the files a config was loaded from: the prefabs/
// directory for the defaults, or just path when it is set.
func WatchConfig(path string) (*Watcher, error) {
	if path == "" {
		return NewWatcher(LoadConfig, "", "prefabs")
	}
	return NewWatcher(func() (Config, error) { return LoadConfigFile(path) }, filepath.Base(path), filepath.Dir(path))
}

// NewWatcher calls load after each change to a yaml file in dirs. A non-empty
// only restricts reloads to files with that base name.
func NewWatcher(load func() (Config, error), only string, dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:      fw,
		load:    load,
		only:    only,
		Reloads: make(chan Reload, 4),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Reloads)
	defer close(w.Errors)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < watchDebounce {
				continue
			}
			last[event.Name] = now

			cfg, err := w.load()
			select {
			case w.Reloads <- Reload{File: event.Name, Config: cfg, Err: err}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// relevant drops removals, non-yaml files and files other than the one
// being followed.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	if !isSpecFile(event.Name) {
		return false
	}
	return w.only == "" || filepath.Base(event.Name) == w.only
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
