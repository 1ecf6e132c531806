package serializer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lk2023060901/garden-serde/pkg/serde/codec"
	"github.com/lk2023060901/garden-serde/pkg/serde/format"
	"github.com/lk2023060901/garden-serde/pkg/serde/mapper"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

type ticket struct {
	Seat   string                       `json:"seat"`
	Valid  codec.Range[codec.LocalDate] `json:"valid"`
	Digest []byte                       `json:"digest"`
}

func TestMapperSerializer(t *testing.T) {
	want := ticket{
		Seat: "12A",
		Valid: codec.NewRange(
			codec.LocalDate{Year: 2025, Month: time.March, Day: 1},
			codec.LocalDate{Year: 2025, Month: time.March, Day: 31},
		),
		Digest: []byte{0xde, 0xad},
	}

	for _, ct := range []string{"json", "yaml", "cbor", "protobuf", ""} {
		s := NewMapperSerializer(ct)
		data, err := s.Marshal(want)
		require.NoError(t, err, ct)

		var got ticket
		require.NoError(t, s.Unmarshal(data, &got), ct)
		assert.Equal(t, want, got, ct)
	}

	data, err := MapperSerializer{Type: "json"}.Marshal(want)
	require.NoError(t, err)
	assert.Equal(t, `{"seat":"12A","valid":{"start":[2025,3,1],"endInclusive":[2025,3,31]},"digest":"3q0="}`, string(data))
}

func TestMapperSerializerContentType(t *testing.T) {
	assert.Equal(t, format.ContentTypeYAML, NewMapperSerializer("yml").ContentType())
	assert.Equal(t, format.ContentTypeJSON, MapperSerializer{}.ContentType())
	assert.Equal(t, "text/xml", NewMapperSerializer("text/xml").ContentType())

	s := MapperSerializer{Mapper: mapper.New(mapper.WithDefaultContentType(format.ContentTypeCBOR))}
	assert.Equal(t, format.ContentTypeCBOR, s.ContentType())

	_, err := NewMapperSerializer("text/xml").Marshal(1)
	assert.ErrorIs(t, err, merr.ErrUnsupportedFormat)
}

func TestJSONSerializer(t *testing.T) {
	s := JSONSerializer{}
	assert.Equal(t, format.ContentTypeJSON, s.ContentType())

	data, err := s.Marshal(map[string]any{"b": 1, "a": []byte("hi")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"aGk=","b":1}`, string(data))

	var got struct {
		A []byte `json:"a"`
		B int    `json:"b"`
	}
	require.NoError(t, s.Unmarshal(data, &got))
	assert.Equal(t, []byte("hi"), got.A)
	assert.Equal(t, 1, got.B)

	assert.Error(t, s.Unmarshal([]byte(`{`), &got))
}

func TestProtoSerializer(t *testing.T) {
	s := ProtoSerializer{}
	assert.Equal(t, format.ContentTypeProtobuf, s.ContentType())

	data, err := s.Marshal(wrapperspb.String("garden"))
	require.NoError(t, err)

	got := &wrapperspb.StringValue{}
	require.NoError(t, s.Unmarshal(data, got))
	assert.True(t, proto.Equal(wrapperspb.String("garden"), got))

	_, err = s.Marshal("not a message")
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
	assert.ErrorIs(t, s.Unmarshal(data, new(string)), merr.ErrParameterInvalid)
}

func TestSerializerInterface(t *testing.T) {
	for _, s := range []Serializer{JSONSerializer{}, ProtoSerializer{}, NewMapperSerializer("cbor")} {
		assert.NotEmpty(t, s.ContentType())
	}
}
