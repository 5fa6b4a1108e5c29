// Package templates provides the named-fragment store and the built-in
// project template registry consumed by the scaffold materializer.
package templates

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Fragment categories. Lookups outside this set fail.
const (
	CategoryContracts = "contracts"
	CategoryFrontend  = "frontend"
	CategoryProjects  = "projects"
)

var knownCategories = map[string]bool{
	CategoryContracts: true,
	CategoryFrontend:  true,
	CategoryProjects:  true,
}

const defaultCacheSize = 256

// FileStore serves template fragments from <root>/<category>/<name>,
// caching reads in an LRU. When watching is enabled, changes under the
// root invalidate the cache so edited templates are picked up without a
// restart.
type FileStore struct {
	root    string
	cache   *lru.Cache[string, string]
	watcher *fsnotify.Watcher
	done    chan struct{}
	logger  *zap.Logger
}

// FileStoreOptions configures a FileStore.
type FileStoreOptions struct {
	CacheSize int
	Watch     bool
}

// NewFileStore creates a store rooted at root. logger may be nil.
func NewFileStore(root string, logger *zap.Logger, opts FileStoreOptions) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}

	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("templates: failed to create cache: %w", err)
	}

	s := &FileStore{
		root:   root,
		cache:  cache,
		logger: logger,
	}

	if opts.Watch {
		if err := s.startWatcher(); err != nil {
			// Watching is an optimization; a store without it still works.
			logger.Warn("template watcher unavailable, cache will not self-invalidate", zap.Error(err))
		}
	}
	return s, nil
}

// Fragment returns the content of <root>/<category>/<name>.
func (s *FileStore) Fragment(category, name string) (string, error) {
	if !knownCategories[category] {
		return "", fmt.Errorf("templates: unknown category %q", category)
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("templates: invalid fragment name %q", name)
	}

	key := category + "/" + name
	if content, ok := s.cache.Get(key); ok {
		return content, nil
	}

	data, err := os.ReadFile(filepath.Join(s.root, category, name))
	if err != nil {
		return "", fmt.Errorf("templates: fragment %s not found: %w", key, err)
	}
	content := string(data)
	s.cache.Add(key, content)
	return content, nil
}

// Close stops the change watcher if one is running.
func (s *FileStore) Close() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	<-s.done
	return err
}

func (s *FileStore) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.root); err != nil {
		watcher.Close()
		return err
	}
	for category := range knownCategories {
		dir := filepath.Join(s.root, category)
		if _, statErr := os.Stat(dir); statErr == nil {
			if err := watcher.Add(dir); err != nil {
				s.logger.Warn("cannot watch template category", zap.String("dir", dir), zap.Error(err))
			}
		}
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	go s.watch()
	return nil
}

// watch purges the whole cache on any event under the template root. The
// fragment set is small, so rebuilding the cache is cheaper than mapping
// paths back to keys.
func (s *FileStore) watch() {
	defer close(s.done)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.logger.Debug("template change detected, purging cache",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
			s.cache.Purge()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("template watcher error", zap.Error(err))
		}
	}
}
