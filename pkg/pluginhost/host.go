package pluginhost

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"plugin"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/opd-ai/ecshost/pkg/ecs"
	"github.com/opd-ai/ecshost/pkg/ecserr"
	"github.com/opd-ai/ecshost/pkg/logging"
)

// debounceWindow is the minimum gap between an fsnotify event and the
// reload it triggers, collapsing the burst of events a single `cp`/editor
// save usually produces.
const debounceWindow = 150 * time.Millisecond

type loadedPlugin struct {
	manifest   Manifest
	instance   Plugin
	sourcePath string
	tempPath   string
	loadedAt   time.Time
}

// Host watches a directory of .so files and keeps a world's plugin set in
// sync with it: new files are loaded, modified files are hot-reloaded,
// removed files are unloaded. The standard library's plugin package
// caches *plugin.Plugin by the path passed to Open and offers no unload,
// so every (re)load copies the source .so to a uniquely named temp path
// first — a fresh path makes a fresh cache entry, which is the only way
// Go lets this host simulate a reloadable plugin.
type Host struct {
	world  *ecs.World
	dir    string
	tmpDir string
	logger *logrus.Entry

	watcher *fsnotify.Watcher
	group   singleflight.Group

	mu       sync.Mutex
	loaded   map[string]*loadedPlugin // keyed by source path
	timers   map[string]*time.Timer   // debounce, keyed by source path
}

// NewHost creates a host watching dir for .so files. tmpDir holds the
// per-load copies; it is created if missing and is the host's own to
// manage (not shared with other hosts).
func NewHost(world *ecs.World, dir, tmpDir string, logger *logrus.Entry) (*Host, error) {
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create plugin temp dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create plugin watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch plugin dir %s: %w", dir, err)
	}

	h := &Host{
		world:   world,
		dir:     dir,
		tmpDir:  tmpDir,
		logger:  logger,
		watcher: watcher,
		loaded:  make(map[string]*loadedPlugin),
		timers:  make(map[string]*time.Timer),
	}
	if err := h.scanExisting(); err != nil {
		watcher.Close()
		return nil, err
	}
	return h, nil
}

// scanExisting loads every .so already present in dir before the watcher
// starts delivering events, so a plugin dropped in before the process
// started isn't stuck waiting for a write event that will never come.
func (h *Host) scanExisting() error {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return fmt.Errorf("scan plugin dir %s: %w", h.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".so" {
			continue
		}
		path := filepath.Join(h.dir, entry.Name())
		if err := h.Load(path); err != nil {
			if h.logger != nil {
				logging.PluginLogger(h.logger, "", path).WithError(err).Warn("initial plugin load failed")
			}
			continue
		}
	}
	return nil
}

// Run processes filesystem events until the watcher is closed. It is
// meant to run in its own goroutine for the lifetime of the embedder.
func (h *Host) Run() {
	for {
		select {
		case ev, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			h.handleEvent(ev)
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			if h.logger != nil {
				h.logger.WithError(err).Warn("plugin watcher error")
			}
		}
	}
}

func (h *Host) handleEvent(ev fsnotify.Event) {
	if filepath.Ext(ev.Name) != ".so" {
		return
	}

	h.mu.Lock()
	if t, ok := h.timers[ev.Name]; ok {
		t.Stop()
	}
	h.timers[ev.Name] = time.AfterFunc(debounceWindow, func() {
		h.dispatch(ev)
	})
	h.mu.Unlock()
}

func (h *Host) dispatch(ev fsnotify.Event) {
	switch {
	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		if err := h.Unload(ev.Name); err != nil && h.logger != nil {
			logging.PluginLogger(h.logger, "", ev.Name).WithError(err).Warn("plugin unload failed")
		}
	case ev.Op&fsnotify.Create != 0, ev.Op&fsnotify.Write != 0:
		if err := h.Reload(ev.Name); err != nil && h.logger != nil {
			logging.PluginLogger(h.logger, "", ev.Name).WithError(err).Warn("plugin load failed")
		}
	}
}

// Close stops watching and unloads every plugin currently loaded.
func (h *Host) Close() error {
	h.mu.Lock()
	paths := make([]string, 0, len(h.loaded))
	for p := range h.loaded {
		paths = append(paths, p)
	}
	h.mu.Unlock()

	for _, p := range paths {
		h.Unload(p)
	}
	return h.watcher.Close()
}

// Load opens the .so at sourcePath and initializes it against the host's
// world. Concurrent Load/Reload calls for the same path are serialized;
// a call that arrives while one is in flight waits for it and shares its
// result rather than racing a second copy-and-open.
func (h *Host) Load(sourcePath string) error {
	_, err, _ := h.group.Do(sourcePath, func() (any, error) {
		return nil, h.load(sourcePath)
	})
	return err
}

func (h *Host) load(sourcePath string) error {
	h.mu.Lock()
	_, already := h.loaded[sourcePath]
	h.mu.Unlock()
	if already {
		return nil
	}

	tempPath, err := h.copyToTemp(sourcePath)
	if err != nil {
		return fmt.Errorf("stage plugin %s: %w", sourcePath, err)
	}

	p, err := plugin.Open(tempPath)
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("open plugin %s: %w", sourcePath, errJoin(ecserr.ErrPluginLoadFailed, err))
	}
	sym, err := p.Lookup("NewPlugin")
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("plugin %s missing NewPlugin symbol: %w", sourcePath, errJoin(ecserr.ErrPluginLoadFailed, err))
	}
	factory, ok := sym.(func() Plugin)
	if !ok {
		os.Remove(tempPath)
		return fmt.Errorf("plugin %s: NewPlugin has wrong signature: %w", sourcePath, ecserr.ErrPluginLoadFailed)
	}

	instance := factory()
	manifest := instance.Manifest()
	owner := ecs.OwnerID(manifest.Prefix)

	if err := instance.Initialize(h.world); err != nil {
		h.world.RemoveByOwner(owner)
		os.Remove(tempPath)
		return fmt.Errorf("initialize plugin %s: %w", manifest.Name, errJoin(ecserr.ErrPluginLoadFailed, err))
	}

	h.mu.Lock()
	h.loaded[sourcePath] = &loadedPlugin{
		manifest:   manifest,
		instance:   instance,
		sourcePath: sourcePath,
		tempPath:   tempPath,
		loadedAt:   time.Now(),
	}
	h.mu.Unlock()

	if h.logger != nil {
		logging.PluginLogger(h.logger, manifest.Prefix, sourcePath).Info("plugin loaded")
	}
	return nil
}

// Unload tears down the plugin loaded from sourcePath, if any. The
// plugin's own Uninitialize runs first; any error it returns is logged
// and swallowed, because unload must always proceed — a plugin's own
// bookkeeping bug can't be allowed to pin it in the world forever. The
// host then runs its own defensive ecs.World.RemoveByOwner sweep in case
// Uninitialize left anything behind.
func (h *Host) Unload(sourcePath string) error {
	h.mu.Lock()
	lp, ok := h.loaded[sourcePath]
	if ok {
		delete(h.loaded, sourcePath)
	}
	h.mu.Unlock()
	if !ok {
		return nil
	}

	if err := lp.instance.Uninitialize(h.world); err != nil && h.logger != nil {
		logging.PluginLogger(h.logger, lp.manifest.Prefix, sourcePath).WithError(err).Warn("plugin uninitialize error, continuing unload")
	}
	h.world.RemoveByOwner(ecs.OwnerID(lp.manifest.Prefix))
	os.Remove(lp.tempPath)

	if h.logger != nil {
		logging.PluginLogger(h.logger, lp.manifest.Prefix, sourcePath).Info("plugin unloaded")
	}
	return nil
}

// Reload unloads then loads sourcePath, simulating hot-reload without
// restarting the embedder. Go's plugin package never frees the previous
// .so's code or globals from the process — that memory is leaked for the
// life of the process, a documented limitation the host cannot work
// around, only contain.
func (h *Host) Reload(sourcePath string) error {
	_, err, _ := h.group.Do(sourcePath, func() (any, error) {
		h.mu.Lock()
		_, already := h.loaded[sourcePath]
		h.mu.Unlock()
		if already {
			if err := h.unloadLocked(sourcePath); err != nil {
				return nil, err
			}
		}
		return nil, h.load(sourcePath)
	})
	return err
}

func (h *Host) unloadLocked(sourcePath string) error {
	h.mu.Lock()
	lp, ok := h.loaded[sourcePath]
	if ok {
		delete(h.loaded, sourcePath)
	}
	h.mu.Unlock()
	if !ok {
		return nil
	}
	if err := lp.instance.Uninitialize(h.world); err != nil && h.logger != nil {
		logging.PluginLogger(h.logger, lp.manifest.Prefix, sourcePath).WithError(err).Warn("plugin uninitialize error, continuing reload")
	}
	h.world.RemoveByOwner(ecs.OwnerID(lp.manifest.Prefix))
	os.Remove(lp.tempPath)
	return nil
}

// Loaded returns the manifests of every currently loaded plugin, keyed by
// source path.
func (h *Host) Loaded() map[string]Manifest {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]Manifest, len(h.loaded))
	for path, lp := range h.loaded {
		out[path] = lp.manifest
	}
	return out
}

func (h *Host) copyToTemp(sourcePath string) (string, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	destPath := filepath.Join(h.tmpDir, uuid.New().String()+".so")
	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o755)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(destPath)
		return "", err
	}
	return destPath, nil
}

func errJoin(sentinel, cause error) error {
	return fmt.Errorf("%w: %v", sentinel, cause)
}
