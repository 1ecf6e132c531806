package route

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/lk2023060901/garden-serde/internal/json"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
	"github.com/lk2023060901/garden-serde/pkg/util/typeutil"
)

// Route describes an HTTP route: a path, its methods, optional request and
// response types, and free-form metadata.
//
// A Route is a passive record read by routing components. It cannot be
// changed after construction and is safe for concurrent use. Methods keep
// the order of their first occurrence and duplicates collapse.
type Route struct {
	path         Path
	methods      *typeutil.OrderedSet[Method]
	requestType  reflect.Type
	responseType reflect.Type
	metadata     map[string]any
}

// Option sets an optional field while building a Route.
type Option func(*Route)

// WithRequestType sets the request body type.
func WithRequestType(t reflect.Type) Option {
	return func(r *Route) {
		r.requestType = t
	}
}

// WithResponseType sets the response body type.
func WithResponseType(t reflect.Type) Option {
	return func(r *Route) {
		r.responseType = t
	}
}

// WithMetadata merges metadata into the route. Later keys win.
func WithMetadata(metadata map[string]any) Option {
	return func(r *Route) {
		for k, v := range metadata {
			r.metadata[k] = v
		}
	}
}

// New builds a route. methods must hold at least one valid method and
// duplicates keep their first position. path must start with "/", see
// NewPath.
func New(path string, methods []Method, opts ...Option) (*Route, error) {
	p, err := NewPath(path)
	if err != nil {
		return nil, err
	}
	return NewWithPath(p, methods, opts...)
}

// NewWithPath is like New but takes an already validated Path.
func NewWithPath(path Path, methods []Method, opts ...Option) (*Route, error) {
	if path.pattern == "" {
		return nil, merr.WrapErrParameterMissing("path")
	}
	if len(methods) == 0 {
		return nil, merr.WrapErrParameterMissing("methods", "route "+path.pattern)
	}
	for _, m := range methods {
		if !m.Valid() {
			return nil, merr.WrapErrParameterInvalid("http method", m.String(), "route "+path.pattern)
		}
	}
	r := &Route{
		path:     path,
		methods:  typeutil.NewOrderedSet(methods...),
		metadata: make(map[string]any),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Must is like New but panics on error. Meant for package-level routes.
func Must(path string, methods []Method, opts ...Option) *Route {
	r, err := New(path, methods, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Route) Path() Path {
	return r.path
}

// Methods returns a copy of the methods in insertion order.
func (r *Route) Methods() []Method {
	return r.methods.Collect()
}

func (r *Route) HasMethod(m Method) bool {
	return r.methods.Contain(m)
}

// RequestType returns the request body type, or nil.
func (r *Route) RequestType() reflect.Type {
	return r.requestType
}

// ResponseType returns the response body type, or nil.
func (r *Route) ResponseType() reflect.Type {
	return r.responseType
}

// Metadata returns a shallow copy of the metadata.
func (r *Route) Metadata() map[string]any {
	out := make(map[string]any, len(r.metadata))
	for k, v := range r.metadata {
		out[k] = v
	}
	return out
}

func (r *Route) MetadataValue(key string) (any, bool) {
	v, ok := r.metadata[key]
	return v, ok
}

// NewRequest returns a pointer to a new zero RequestType value, or nil when
// no request type is set.
func (r *Route) NewRequest() any {
	if r.requestType == nil {
		return nil
	}
	return reflect.New(r.requestType).Interface()
}

// NewResponse is NewRequest for ResponseType.
func (r *Route) NewResponse() any {
	if r.responseType == nil {
		return nil
	}
	return reflect.New(r.responseType).Interface()
}

// Equal compares methods as a set, ignoring order. Metadata is compared deeply.
func (r *Route) Equal(other *Route) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.path == other.path &&
		r.methods.Equal(other.methods) &&
		r.requestType == other.requestType &&
		r.responseType == other.responseType &&
		reflect.DeepEqual(r.metadata, other.metadata)
}

func (r *Route) String() string {
	names := make([]string, 0, r.methods.Len())
	r.methods.Range(func(m Method) bool {
		names = append(names, m.String())
		return true
	})
	return fmt.Sprintf("%s %s", strings.Join(names, ","), r.path)
}

type routeSnapshot struct {
	Path         string         `json:"path"`
	Methods      []Method       `json:"methods"`
	Parameters   []string       `json:"parameters,omitempty"`
	RequestType  string         `json:"requestType,omitempty"`
	ResponseType string         `json:"responseType,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON writes a snapshot of the route with types as Go type names.
func (r *Route) MarshalJSON() ([]byte, error) {
	snapshot := routeSnapshot{
		Path:       r.path.pattern,
		Methods:    r.Methods(),
		Parameters: r.path.Parameters(),
		Metadata:   r.metadata,
	}
	if r.requestType != nil {
		snapshot.RequestType = r.requestType.String()
	}
	if r.responseType != nil {
		snapshot.ResponseType = r.responseType.String()
	}
	return json.Marshal(snapshot)
}
