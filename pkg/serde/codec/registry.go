package codec

import (
	"reflect"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

// Matcher selects the types a family strategy applies to.
type Matcher func(t reflect.Type) bool

type family struct {
	match    Matcher
	strategy Strategy
}

// Registry maps types to strategies. Exact registrations win over families;
// families are tried in registration order.
type Registry struct {
	mu       sync.RWMutex
	exact    map[reflect.Type]Strategy
	families []family
	byTag    map[Tag]Strategy
}

func NewRegistry() *Registry {
	return &Registry{
		exact: make(map[reflect.Type]Strategy),
		byTag: make(map[Tag]Strategy),
	}
}

// NewDefaultRegistry returns a registry with the built-in strategies for
// []byte, LocalTime, LocalDate and every Range instantiation.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	lo.Must0(r.Register(TypeOf[[]byte](), BytesStrategy()))
	lo.Must0(r.Register(TypeOf[LocalTime](), LocalTimeStrategy()))
	lo.Must0(r.Register(TypeOf[LocalDate](), LocalDateStrategy()))
	lo.Must0(r.RegisterFamily(IsRangeType, RangeStrategy()))
	return r
}

// TypeOf returns the reflect.Type of T, interface types included.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func validate(s Strategy) error {
	if s.Tag == "" {
		return merr.WrapErrParameterMissing("tag", "register strategy")
	}
	if s.Encode == nil || s.Decode == nil {
		return merr.WrapErrParameterMissing("encode/decode", "register strategy "+string(s.Tag))
	}
	return nil
}

// Register installs s for exactly t.
func (r *Registry) Register(t reflect.Type, s Strategy) error {
	if t == nil {
		return merr.WrapErrParameterMissing("type", "register strategy")
	}
	if err := validate(s); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.exact[t]; ok {
		return merr.WrapErrParameterInvalid("unregistered type", t.String(), "already registered as "+string(prev.Tag))
	}
	if _, ok := r.byTag[s.Tag]; ok {
		return merr.WrapErrParameterInvalid("unique tag", string(s.Tag))
	}
	r.exact[t] = s
	r.byTag[s.Tag] = s
	return nil
}

// Register is the generic form of Registry.Register.
func Register[T any](r *Registry, s Strategy) error {
	return r.Register(TypeOf[T](), s)
}

// RegisterFamily installs s for every type m accepts, such as all
// instantiations of a generic type.
func (r *Registry) RegisterFamily(m Matcher, s Strategy) error {
	if m == nil {
		return merr.WrapErrParameterMissing("matcher", "register family")
	}
	if err := validate(s); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTag[s.Tag]; ok {
		return merr.WrapErrParameterInvalid("unique tag", string(s.Tag))
	}
	r.families = append(r.families, family{match: m, strategy: s})
	r.byTag[s.Tag] = s
	return nil
}

// Lookup returns the strategy registered for t.
func (r *Registry) Lookup(t reflect.Type) (Strategy, bool) {
	if t == nil {
		return Strategy{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.exact[t]; ok {
		return s, true
	}
	for _, f := range r.families {
		if f.match(t) {
			return f.strategy, true
		}
	}
	return Strategy{}, false
}

// MustLookup is Lookup with the fallback error path for unregistered types.
func (r *Registry) MustLookup(t reflect.Type) (Strategy, error) {
	s, ok := r.Lookup(t)
	if !ok {
		name := "<nil>"
		if t != nil {
			name = t.String()
		}
		return Strategy{}, merr.WrapErrUnregisteredType(name)
	}
	return s, nil
}

// ByTag returns the strategy registered under tag.
func (r *Registry) ByTag(tag Tag) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byTag[tag]
	return s, ok
}

// Tags lists the registered tags, sorted.
func (r *Registry) Tags() []Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := lo.Keys(r.byTag)
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
