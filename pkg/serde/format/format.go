// Package format converts document trees (see package token) to and from wire
// formats. A Format never sees application types: the mapper lowers values to
// a tree first, so every codec works unchanged on every format.
package format

import (
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

const (
	ContentTypeJSON     = "application/json"
	ContentTypeYAML     = "application/yaml"
	ContentTypeCBOR     = "application/cbor"
	ContentTypeProtobuf = "application/x-protobuf"
)

// Format is a document encoding keyed by content type.
type Format interface {
	ContentType() string
	// Aliases are extra lookup names, such as "json" or "yml".
	Aliases() []string
	Marshal(tree any) ([]byte, error)
	Unmarshal(data []byte) (any, error)
}

// StreamWriter is a token.Writer writing straight into an output stream.
type StreamWriter interface {
	token.Writer
	Flush() error
}

// Streamer is implemented by formats that can be written token by token
// without building a tree.
type Streamer interface {
	NewStreamWriter(out io.Writer) StreamWriter
}

// Registry resolves formats by content type or alias. Lookups ignore case and
// media type parameters, so "application/json; charset=utf-8" finds JSON.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Format
	formats []Format
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Format)}
}

// DefaultRegistry returns a registry holding JSON, YAML, CBOR and protobuf.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	lo.Must0(r.Register(JSON()))
	lo.Must0(r.Register(YAML()))
	lo.Must0(r.Register(lo.Must(CBOR())))
	lo.Must0(r.Register(Protobuf()))
	return r
}

func normalize(name string) string {
	if i := strings.IndexByte(name, ';'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds f under its content type and aliases. A name that is already
// taken is rejected and nothing is registered.
func (r *Registry) Register(f Format) error {
	if f == nil {
		return merr.WrapErrParameterMissing("format", "register format")
	}
	names := append([]string{f.ContentType()}, f.Aliases()...)
	names = lo.Map(names, func(n string, _ int) string { return normalize(n) })

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		if n == "" {
			return merr.WrapErrParameterMissing("content type", "register format")
		}
		if _, ok := r.byName[n]; ok {
			return merr.WrapErrParameterInvalid("unregistered content type", n)
		}
	}
	for _, n := range names {
		r.byName[n] = f
	}
	r.formats = append(r.formats, f)
	return nil
}

// Get resolves name to a format.
func (r *Registry) Get(name string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byName[normalize(name)]
	if !ok {
		return nil, merr.WrapErrUnsupportedFormat(name)
	}
	return f, nil
}

// ContentTypes lists the registered content types, sorted.
func (r *Registry) ContentTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := lo.Map(r.formats, func(f Format, _ int) string { return f.ContentType() })
	sort.Strings(types)
	return types
}

// Lookup returns the format registered for name, if any.
func (r *Registry) Lookup(name string) (Format, bool) {
	f, err := r.Get(name)
	return f, err == nil
}
