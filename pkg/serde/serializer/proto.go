package serializer

import (
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/lk2023060901/garden-serde/pkg/serde/format"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

// ProtoSerializer writes protobuf binary. Values must implement proto.Message.
type ProtoSerializer struct{}

var _ Serializer = (*ProtoSerializer)(nil)

func (ProtoSerializer) Marshal(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, merr.WrapErrParameterInvalid("proto.Message", fmt.Sprintf("%T", v), "ProtoSerializer")
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(msg)
}

func (ProtoSerializer) Unmarshal(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return merr.WrapErrParameterInvalid("proto.Message", fmt.Sprintf("%T", v), "ProtoSerializer")
	}
	return proto.Unmarshal(data, msg)
}

func (ProtoSerializer) ContentType() string {
	return format.ContentTypeProtobuf
}
