package format

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

type cborFormat struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns the canonical CBOR format. Maps carry no field order, so
// objects are written with canonically sorted keys, the order TreeReader
// walks plain maps in.
func CBOR() (Format, error) {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, err
	}
	return &cborFormat{enc: enc, dec: dec}, nil
}

func (f *cborFormat) ContentType() string { return ContentTypeCBOR }

func (f *cborFormat) Aliases() []string { return []string{"cbor"} }

func (f *cborFormat) Marshal(tree any) ([]byte, error) {
	normalized, err := token.Normalize(tree)
	if err != nil {
		return nil, err
	}
	data, err := f.enc.Marshal(token.Plain(normalized))
	if err != nil {
		return nil, merr.WrapErrFormatFailed(ContentTypeCBOR, err)
	}
	return data, nil
}

func (f *cborFormat) Unmarshal(data []byte) (any, error) {
	var tree any
	if err := f.dec.Unmarshal(data, &tree); err != nil {
		return nil, merr.WrapErrFormatFailed(ContentTypeCBOR, err)
	}
	return tree, nil
}
