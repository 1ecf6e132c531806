package route

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

type createUser struct {
	Name string `json:"name"`
}

type userCreated struct {
	ID int64 `json:"id"`
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" patch ")
	require.NoError(t, err)
	assert.Equal(t, PATCH, m)

	for _, want := range Methods {
		got, err := ParseMethod(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = ParseMethod("CONNECT")
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
}

func TestPath(t *testing.T) {
	p, err := NewPath("/users/{id}/orders/{orderId}")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "orderId"}, p.Parameters())
	assert.Equal(t, "/users/{id}/orders/{orderId}", p.String())

	assert.Empty(t, MustPath("/").Parameters())

	for _, bad := range []string{"", "users", "/users/{id", "/users/id}", "/users/{}", "/a/{b{c}}"} {
		_, err := NewPath(bad)
		assert.ErrorIs(t, err, merr.ErrParameterInvalid, bad)
	}
	assert.Panics(t, func() { MustPath("nope") })
}

func TestNewCollapsesDuplicates(t *testing.T) {
	r, err := New("/users", []Method{GET, GET, POST})
	require.NoError(t, err)
	assert.Equal(t, []Method{GET, POST}, r.Methods())
	assert.Len(t, r.Methods(), 2)
	assert.True(t, r.HasMethod(POST))
	assert.False(t, r.HasMethod(DELETE))
	assert.Equal(t, "GET,POST /users", r.String())
}

func TestNewValidation(t *testing.T) {
	_, err := New("/users", nil)
	assert.ErrorIs(t, err, merr.ErrParameterMissing)

	_, err = New("/users", []Method{"FETCH"})
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)

	_, err = New("users", []Method{GET})
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)

	_, err = NewWithPath(Path{}, []Method{GET})
	assert.ErrorIs(t, err, merr.ErrParameterMissing)

	assert.Panics(t, func() { Must("/users", nil) })
}

func TestOptionalFields(t *testing.T) {
	r := Must("/users", []Method{POST})
	assert.Nil(t, r.RequestType())
	assert.Nil(t, r.ResponseType())
	assert.Nil(t, r.NewRequest())
	assert.Nil(t, r.NewResponse())
	assert.Empty(t, r.Metadata())

	r = Must("/users", []Method{POST},
		WithRequestType(reflect.TypeOf(createUser{})),
		WithResponseType(reflect.TypeOf(userCreated{})),
		WithMetadata(map[string]any{"auth": "admin", "rate": 10}),
		WithMetadata(map[string]any{"rate": 20}),
	)
	assert.Equal(t, reflect.TypeOf(createUser{}), r.RequestType())
	assert.IsType(t, &createUser{}, r.NewRequest())
	assert.IsType(t, &userCreated{}, r.NewResponse())
	assert.Equal(t, map[string]any{"auth": "admin", "rate": 20}, r.Metadata())

	v, ok := r.MetadataValue("auth")
	assert.True(t, ok)
	assert.Equal(t, "admin", v)
	_, ok = r.MetadataValue("missing")
	assert.False(t, ok)
}

func TestImmutable(t *testing.T) {
	methods := []Method{GET}
	metadata := map[string]any{"k": "v"}
	r := Must("/items", methods, WithMetadata(metadata))

	methods[0] = DELETE
	metadata["k"] = "changed"
	r.Methods()[0] = PUT
	r.Metadata()["k"] = "changed"

	assert.Equal(t, []Method{GET}, r.Methods())
	assert.Equal(t, map[string]any{"k": "v"}, r.Metadata())
}

func TestEqual(t *testing.T) {
	newRoute := func(methods []Method, opts ...Option) *Route {
		return Must("/users/{id}", methods, opts...)
	}
	meta := WithMetadata(map[string]any{"tags": []string{"a"}})

	a := newRoute([]Method{GET, POST}, meta, WithRequestType(reflect.TypeOf(createUser{})))
	b := newRoute([]Method{POST, GET, GET}, WithMetadata(map[string]any{"tags": []string{"a"}}), WithRequestType(reflect.TypeOf(createUser{})))
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))

	assert.False(t, a.Equal(newRoute([]Method{GET}, meta, WithRequestType(reflect.TypeOf(createUser{})))))
	assert.False(t, a.Equal(newRoute([]Method{GET, POST}, meta)))
	assert.False(t, a.Equal(newRoute([]Method{GET, POST}, WithRequestType(reflect.TypeOf(createUser{})))))
	assert.False(t, a.Equal(newRoute([]Method{GET, POST}, meta,
		WithRequestType(reflect.TypeOf(createUser{})),
		WithResponseType(reflect.TypeOf(userCreated{})))))
	assert.False(t, a.Equal(Must("/users", []Method{GET, POST}, meta, WithRequestType(reflect.TypeOf(createUser{})))))

	assert.True(t, newRoute([]Method{GET}).Equal(newRoute([]Method{GET}, WithMetadata(nil))))

	var nilRoute *Route
	assert.True(t, nilRoute.Equal(nil))
	assert.False(t, a.Equal(nil))
}

func TestMarshalJSON(t *testing.T) {
	r := Must("/users/{id}", []Method{PUT, GET},
		WithRequestType(reflect.TypeOf(createUser{})),
		WithMetadata(map[string]any{"auth": true}),
	)
	data, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"path": "/users/{id}",
		"methods": ["PUT", "GET"],
		"parameters": ["id"],
		"requestType": "route.createUser",
		"metadata": {"auth": true}
	}`, string(data))

	data, err = Must("/", []Method{HEAD}).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"/","methods":["HEAD"]}`, string(data))
}

func TestConcurrentReads(t *testing.T) {
	r := Must("/users", []Method{GET, POST}, WithMetadata(map[string]any{"k": 1}))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Len(t, r.Methods(), 2)
				assert.Len(t, r.Metadata(), 1)
				assert.True(t, r.Equal(r))
			}
		}()
	}
	wg.Wait()
}
