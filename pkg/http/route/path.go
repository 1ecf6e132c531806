package route

import (
	"strings"

	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

// Path is a route path pattern such as /users/{id}/orders.
//
// Braces mark parameter placeholders. Path validates structure only and
// never matches requests.
type Path struct {
	pattern string
}

// NewPath validates pattern and wraps it.
//
// The pattern must start with "/". Placeholders must be balanced,
// non-empty and not nested.
func NewPath(pattern string) (Path, error) {
	if !strings.HasPrefix(pattern, "/") {
		return Path{}, merr.WrapErrParameterInvalidMsg("path %q must start with /", pattern)
	}
	if _, err := parseParameters(pattern); err != nil {
		return Path{}, err
	}
	return Path{pattern: pattern}, nil
}

// MustPath is like NewPath but panics on an invalid pattern.
func MustPath(pattern string) Path {
	p, err := NewPath(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) Pattern() string {
	return p.pattern
}

func (p Path) String() string {
	return p.pattern
}

// Parameters returns the placeholder names in order of appearance.
func (p Path) Parameters() []string {
	params, _ := parseParameters(p.pattern)
	return params
}

func parseParameters(pattern string) ([]string, error) {
	var params []string
	rest := pattern
	for {
		open := strings.IndexAny(rest, "{}")
		if open < 0 {
			return params, nil
		}
		if rest[open] == '}' {
			return nil, merr.WrapErrParameterInvalidMsg("path %q has unbalanced }", pattern)
		}
		end := strings.IndexAny(rest[open+1:], "{}")
		if end < 0 || rest[open+1+end] != '}' {
			return nil, merr.WrapErrParameterInvalidMsg("path %q has unbalanced {", pattern)
		}
		name := rest[open+1 : open+1+end]
		if name == "" {
			return nil, merr.WrapErrParameterInvalidMsg("path %q has an empty parameter", pattern)
		}
		params = append(params, name)
		rest = rest[open+end+2:]
	}
}
