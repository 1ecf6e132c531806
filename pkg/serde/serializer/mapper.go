package serializer

import (
	"github.com/lk2023060901/garden-serde/pkg/serde/mapper"
)

// MapperSerializer encodes through a Mapper, so registered types are written
// with their strategies.
type MapperSerializer struct {
	// Mapper defaults to mapper.Default().
	Mapper *mapper.Mapper
	// Type is a content type or alias such as "json". Empty means the Mapper default.
	Type string
}

var _ Serializer = (*MapperSerializer)(nil)

// NewMapperSerializer returns a serializer for contentType on the default Mapper.
func NewMapperSerializer(contentType string) MapperSerializer {
	return MapperSerializer{Mapper: mapper.Default(), Type: contentType}
}

func (s MapperSerializer) mapper() *mapper.Mapper {
	if s.Mapper == nil {
		return mapper.Default()
	}
	return s.Mapper
}

func (s MapperSerializer) Marshal(v any) ([]byte, error) {
	return s.mapper().Serialize(v, s.Type)
}

func (s MapperSerializer) Unmarshal(data []byte, v any) error {
	return s.mapper().Parse(data, v, s.Type)
}

// ContentType returns the canonical content type. Unsupported names come back unchanged.
func (s MapperSerializer) ContentType() string {
	return s.mapper().ContentType(s.Type)
}
