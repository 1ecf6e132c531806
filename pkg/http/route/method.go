package route

import (
	"strings"

	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

// Method is an HTTP request method.
type Method string

const (
	GET     Method = "GET"
	HEAD    Method = "HEAD"
	POST    Method = "POST"
	PUT     Method = "PUT"
	DELETE  Method = "DELETE"
	TRACE   Method = "TRACE"
	OPTIONS Method = "OPTIONS"
	PATCH   Method = "PATCH"
)

// Methods lists every method in declaration order.
var Methods = []Method{GET, HEAD, POST, PUT, DELETE, TRACE, OPTIONS, PATCH}

func (m Method) String() string {
	return string(m)
}

func (m Method) Valid() bool {
	switch m {
	case GET, HEAD, POST, PUT, DELETE, TRACE, OPTIONS, PATCH:
		return true
	}
	return false
}

// ParseMethod parses a method name, ignoring case.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", merr.WrapErrParameterInvalid("http method", s)
	}
	return m, nil
}
