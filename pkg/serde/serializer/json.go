package serializer

import (
	"github.com/lk2023060901/garden-serde/internal/json"
	"github.com/lk2023060901/garden-serde/pkg/serde/format"
)

// JSONSerializer encodes JSON with internal/json, backed by bytedance/sonic.
// It bypasses the codec registry: []byte becomes Base64 as in encoding/json,
// and dates and ranges use their own JSON methods. Use MapperSerializer for
// the registry wire shapes.
type JSONSerializer struct{}

var _ Serializer = (*JSONSerializer)(nil)

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONSerializer) ContentType() string {
	return format.ContentTypeJSON
}
