// Package mapper is the host engine the codecs plug into. It walks Go values
// with reflection, hands registered types to their codec strategy and moves
// documents through the formats of package format.
//
// A Mapper is immutable after New and safe for concurrent use.
package mapper

import (
	"sync"

	"github.com/lk2023060901/garden-serde/pkg/log"
	"github.com/lk2023060901/garden-serde/pkg/serde/codec"
	"github.com/lk2023060901/garden-serde/pkg/serde/format"
)

// Inclusion controls which struct fields are written.
type Inclusion int

const (
	// InclusionNonEmpty skips nil pointers and interfaces, empty strings and
	// empty slices, arrays and maps. Zero numbers and false are written.
	InclusionNonEmpty Inclusion = iota
	// InclusionAlways writes every field.
	InclusionAlways
)

func (i Inclusion) String() string {
	switch i {
	case InclusionNonEmpty:
		return "non-empty"
	case InclusionAlways:
		return "always"
	default:
		return "unknown"
	}
}

type Mapper struct {
	log.Binder

	registry           *codec.Registry
	formats            *format.Registry
	inclusion          Inclusion
	failOnUnknown      bool
	defaultContentType string
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithRegistry replaces the built-in codec registry.
func WithRegistry(r *codec.Registry) Option {
	return func(m *Mapper) {
		m.registry = r
	}
}

// WithFormats replaces the built-in format registry.
func WithFormats(r *format.Registry) Option {
	return func(m *Mapper) {
		m.formats = r
	}
}

func WithInclusion(i Inclusion) Option {
	return func(m *Mapper) {
		m.inclusion = i
	}
}

// WithFailOnUnknownFields makes decoding reject object fields that match no
// struct field. By default they are skipped.
func WithFailOnUnknownFields(fail bool) Option {
	return func(m *Mapper) {
		m.failOnUnknown = fail
	}
}

// WithDefaultContentType sets the format used when a call passes an empty
// content type.
func WithDefaultContentType(contentType string) Option {
	return func(m *Mapper) {
		m.defaultContentType = contentType
	}
}

func WithLogger(l *log.MLogger) Option {
	return func(m *Mapper) {
		m.SetLogger(l)
	}
}

// New returns a Mapper with the default codecs, every built-in format and
// JSON as the default content type.
func New(opts ...Option) *Mapper {
	m := &Mapper{
		inclusion:          InclusionNonEmpty,
		defaultContentType: format.ContentTypeJSON,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = codec.NewDefaultRegistry()
	}
	if m.formats == nil {
		m.formats = format.DefaultRegistry()
	}
	return m
}

// Registry returns the codec registry in use.
func (m *Mapper) Registry() *codec.Registry {
	return m.registry
}

// Formats returns the format registry in use.
func (m *Mapper) Formats() *format.Registry {
	return m.formats
}

var (
	defaultOnce   sync.Once
	defaultMapper *Mapper
)

// Default returns the shared Mapper built with New().
func Default() *Mapper {
	defaultOnce.Do(func() {
		defaultMapper = New()
	})
	return defaultMapper
}
