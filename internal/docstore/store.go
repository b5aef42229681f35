// Package docstore looks up documentation text for grammar declarations in
// the source files they were declared in. Lookups are best effort: any
// failure to read or index a source means "no documentation".
package docstore

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/untillpro/goutils/logger"

	"github.com/jacoelho/xmlassist/pkg/pattern"
)

// DefaultCacheSize is the number of indexed sources kept in memory.
const DefaultCacheSize = 64

// Loader reads the bytes of a source URI.
type Loader func(uri string) ([]byte, error)

// Store caches documentation indexes per source URI.
type Store struct {
	loader Loader
	cache  *lru.Cache[string, *index]

	mu      sync.Mutex
	loading map[string]*loadCall
}

// loadCall is a load in flight; done is closed once idx is set.
type loadCall struct {
	done chan struct{}
	idx  *index
}

// New returns a store reading sources through loader. A nil loader reads
// local files; size <= 0 uses DefaultCacheSize.
func New(loader Loader, size int) (*Store, error) {
	if loader == nil {
		loader = FileLoader
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *index](size)
	if err != nil {
		return nil, fmt.Errorf("docstore: %w", err)
	}
	return &Store{loader: loader, cache: cache, loading: make(map[string]*loadCall)}, nil
}

// Documentation returns the documentation attached to the declaration at pos.
func (s *Store) Documentation(pos pattern.Position) (string, bool) {
	if s == nil || pos.URI == "" || pos.Line <= 0 {
		return "", false
	}
	idx := s.index(pos.URI)
	return idx.lookup(pos.Line, pos.Column)
}

// Invalidate drops the cached index of uri.
func (s *Store) Invalidate(uri string) {
	if s == nil {
		return
	}
	s.cache.Remove(uri)
}

// Len returns the number of cached indexes.
func (s *Store) Len() int {
	return s.cache.Len()
}

// index returns the cached index of uri, loading it at most once per
// eviction even when several callers miss at the same time.
func (s *Store) index(uri string) *index {
	if idx, ok := s.cache.Get(uri); ok {
		return idx
	}
	s.mu.Lock()
	if idx, ok := s.cache.Get(uri); ok {
		s.mu.Unlock()
		return idx
	}
	if c, ok := s.loading[uri]; ok {
		s.mu.Unlock()
		<-c.done
		return c.idx
	}
	c := &loadCall{done: make(chan struct{})}
	s.loading[uri] = c
	s.mu.Unlock()

	idx, err := s.load(uri)
	if err != nil {
		logger.Verbose(fmt.Sprintf("docstore: no documentation for %s: %v", uri, err))
		idx = &index{}
	}
	c.idx = idx
	s.cache.Add(uri, idx)

	s.mu.Lock()
	delete(s.loading, uri)
	s.mu.Unlock()
	close(c.done)
	return idx
}

// inFlight returns the number of loads in progress.
func (s *Store) inFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loading)
}

func (s *Store) load(uri string) (idx *index, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("index %s: %v", uri, r)
		}
	}()
	data, err := s.loader(uri)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	if isCompact(uri) {
		return indexCompact(data), nil
	}
	return indexXML(data)
}

func isCompact(uri string) bool {
	return strings.HasSuffix(strings.ToLower(uri), ".rnc")
}

// FileLoader reads file URIs and plain paths from the local filesystem.
func FileLoader(uri string) ([]byte, error) {
	return os.ReadFile(LocalPath(uri))
}

// FSLoader reads URIs as paths inside fsys.
func FSLoader(fsys fs.FS) Loader {
	return func(uri string) ([]byte, error) {
		return fs.ReadFile(fsys, strings.TrimPrefix(LocalPath(uri), "/"))
	}
}

// LocalPath returns the filesystem path of a file URI; other URIs are
// returned unchanged.
func LocalPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return u.Path
}
