package codec

import (
	"encoding/base64"
	"fmt"

	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

// BytesStrategy encodes a byte buffer as a standard Base64 string.
func BytesStrategy() Strategy {
	return Strategy{
		Tag:    TagBytes,
		Encode: encodeBytes,
		Decode: decodeBytes,
	}
}

func encodeBytes(_ EncodeContext, w token.Writer, v any) error {
	b, ok := v.([]byte)
	if !ok {
		return merr.WrapErrParameterInvalid("[]byte", fmt.Sprintf("%T", v))
	}
	return w.WriteString(base64.StdEncoding.EncodeToString(b))
}

func decodeBytes(_ DecodeContext, r token.Reader) (any, error) {
	if err := token.Expect(r, token.String, "base64 bytes"); err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(r.Text())
	if err != nil {
		return nil, merr.WrapErrMalformedEncoding(string(TagBytes), err.Error())
	}
	return b, nil
}
