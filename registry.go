package xmlassist

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/untillpro/goutils/logger"

	"github.com/jacoelho/xmlassist/internal/docstore"
	"github.com/jacoelho/xmlassist/internal/watch"
	"github.com/jacoelho/xmlassist/pkg/pattern"
)

// GrammarLoader builds the resolved start pattern of the grammar at uri.
type GrammarLoader func(uri string) (pattern.Pattern, error)

// Registry caches one Document per grammar URI and rebuilds documents
// marked dirty. Documents share one documentation store.
type Registry struct {
	load  GrammarLoader
	opts  resolvedOptions
	docs  *docstore.Store
	cache *lru.Cache[string, *Document]

	mu      sync.Mutex
	paths   map[string]string
	watcher *watch.Watcher
}

// NewRegistry returns a registry building documents with load.
func NewRegistry(load GrammarLoader, opts Options) (*Registry, error) {
	if load == nil {
		return nil, fmt.Errorf("registry: nil grammar loader")
	}
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	docs, err := docstore.New(resolved.docLoader, resolved.docCacheSize)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	cache, err := lru.New[string, *Document](resolved.registrySize)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return &Registry{
		load:  load,
		opts:  resolved,
		docs:  docs,
		cache: cache,
		paths: make(map[string]string),
	}, nil
}

// Get returns the document of uri, building it on first use and again
// after it was marked dirty.
func (r *Registry) Get(uri string) (*Document, error) {
	if doc, ok := r.cache.Get(uri); ok && !doc.IsDirty() {
		return doc, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.cache.Get(uri); ok && !doc.IsDirty() {
		return doc, nil
	}
	root, err := r.load(uri)
	if err != nil {
		return nil, fmt.Errorf("load grammar %s: %w", uri, err)
	}
	doc, err := newDocument(uri, root, r.opts, r.docs)
	if err != nil {
		return nil, err
	}
	r.docs.Invalidate(uri)
	r.cache.Add(uri, doc)
	if err := r.trackLocked(uri); err != nil {
		logger.Verbose(fmt.Sprintf("xmlassist: not watching %s: %v", uri, err))
	}
	return doc, nil
}

// MarkDirty flags the cached document of uri for rebuild and runs the
// WithOnChange callback.
func (r *Registry) MarkDirty(uri string) {
	r.docs.Invalidate(uri)
	if doc, ok := r.cache.Peek(uri); ok {
		doc.MarkDirty()
	}
	if r.opts.onChange != nil {
		r.opts.onChange(uri)
	}
}

// Len returns the number of cached documents.
func (r *Registry) Len() int { return r.cache.Len() }

func (r *Registry) trackLocked(uri string) error {
	path, err := filepath.Abs(docstore.LocalPath(uri))
	if err != nil {
		return err
	}
	r.paths[path] = uri
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Add(path)
}

// Watch marks documents dirty when their grammar files change, until ctx
// is done. Documents loaded before and during the call are watched.
func (r *Registry) Watch(ctx context.Context) error {
	w, err := watch.New(func(path string) {
		r.mu.Lock()
		uri, ok := r.paths[path]
		r.mu.Unlock()
		if ok {
			r.MarkDirty(uri)
		}
	})
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	defer func() { _ = w.Close() }()

	r.mu.Lock()
	r.watcher = w
	for path := range r.paths {
		if err := w.Add(path); err != nil {
			logger.Verbose(fmt.Sprintf("xmlassist: not watching %s: %v", path, err))
		}
	}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.watcher = nil
		r.mu.Unlock()
	}()

	return w.Run(ctx)
}

// Serve runs Watch when the registry was built with WithWatch(true) and
// otherwise waits for ctx.
func (r *Registry) Serve(ctx context.Context) error {
	if !r.opts.watch {
		<-ctx.Done()
		return nil
	}
	return r.Watch(ctx)
}
