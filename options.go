package xmlassist

import (
	"fmt"

	"github.com/jacoelho/xmlassist/internal/derivative"
	"github.com/jacoelho/xmlassist/internal/docstore"
)

const defaultRegistrySize = 32

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved(def int) int {
	if !o.set || o.value == 0 {
		return def
	}
	return o.value
}

// DocLoader reads the bytes of a grammar source for documentation lookup.
type DocLoader func(uri string) ([]byte, error)

// Options configures documents and registries.
type Options struct {
	docLoader          DocLoader
	docCacheSize       intOption
	replayPollInterval intOption
	registrySize       intOption
	watch              bool
	onChange           func(uri string)
}

type resolvedOptions struct {
	docLoader          docstore.Loader
	docCacheSize       int
	replayPollInterval int
	registrySize       int
	watch              bool
	onChange           func(uri string)
}

// NewOptions returns a default, valid options value.
func NewOptions() Options {
	return Options{}
}

// Validate validates option values.
func (o Options) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithDocLoader sets how grammar sources are read for documentation (nil reads local files).
func (o Options) WithDocLoader(loader DocLoader) Options {
	o.docLoader = loader
	return o
}

// WithDocCacheSize sets how many indexed grammar sources are kept (0 uses default).
func (o Options) WithDocCacheSize(value int) Options {
	o.docCacheSize = intOption{value: value, set: true}
	return o
}

// WithReplayPollInterval sets how many siblings are replayed between cancellation checks (0 uses default).
func (o Options) WithReplayPollInterval(value int) Options {
	o.replayPollInterval = intOption{value: value, set: true}
	return o
}

// WithRegistrySize sets how many documents a Registry keeps (0 uses default).
func (o Options) WithRegistrySize(value int) Options {
	o.registrySize = intOption{value: value, set: true}
	return o
}

// WithWatch makes Registry.Serve watch grammar files and mark changed documents dirty.
func (o Options) WithWatch(enabled bool) Options {
	o.watch = enabled
	return o
}

// WithOnChange sets a callback run after a registry marks the document of uri dirty.
func (o Options) WithOnChange(fn func(uri string)) Options {
	o.onChange = fn
	return o
}

func (o Options) withDefaults() (resolvedOptions, error) {
	if o.docCacheSize.value < 0 {
		return resolvedOptions{}, fmt.Errorf("doc cache size must be >= 0, got %d", o.docCacheSize.value)
	}
	if o.replayPollInterval.value < 0 {
		return resolvedOptions{}, fmt.Errorf("replay poll interval must be >= 0, got %d", o.replayPollInterval.value)
	}
	if o.registrySize.value < 0 {
		return resolvedOptions{}, fmt.Errorf("registry size must be >= 0, got %d", o.registrySize.value)
	}
	var loader docstore.Loader
	if o.docLoader != nil {
		loader = docstore.Loader(o.docLoader)
	}
	return resolvedOptions{
		docLoader:          loader,
		docCacheSize:       o.docCacheSize.resolved(docstore.DefaultCacheSize),
		replayPollInterval: o.replayPollInterval.resolved(derivative.DefaultPollInterval),
		registrySize:       o.registrySize.resolved(defaultRegistrySize),
		watch:              o.watch,
		onChange:           o.onChange,
	}, nil
}
