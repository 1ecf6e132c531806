package format

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

var errEmptyValue = errors.New("document holds no value")

type protobufFormat struct{}

// Protobuf returns a format carrying the tree as a google.protobuf.Value.
// Numbers travel as doubles, so integers beyond 2^53 lose precision, and
// Struct fields come back in canonical key order.
func Protobuf() Format {
	return protobufFormat{}
}

func (protobufFormat) ContentType() string { return ContentTypeProtobuf }

func (protobufFormat) Aliases() []string {
	return []string{"protobuf", "proto", "application/protobuf"}
}

func (protobufFormat) Marshal(tree any) ([]byte, error) {
	normalized, err := token.Normalize(tree)
	if err != nil {
		return nil, err
	}
	value, err := structpb.NewValue(token.Plain(normalized))
	if err != nil {
		return nil, merr.WrapErrFormatFailed(ContentTypeProtobuf, err)
	}
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(value)
	if err != nil {
		return nil, merr.WrapErrFormatFailed(ContentTypeProtobuf, err)
	}
	return data, nil
}

func (protobufFormat) Unmarshal(data []byte) (any, error) {
	var value structpb.Value
	if err := proto.Unmarshal(data, &value); err != nil {
		return nil, merr.WrapErrFormatFailed(ContentTypeProtobuf, err)
	}
	if value.GetKind() == nil {
		return nil, merr.WrapErrFormatFailed(ContentTypeProtobuf, errEmptyValue)
	}
	return value.AsInterface(), nil
}
