package serializer

// Serializer turns values into bytes and back.
type Serializer interface {
	// Marshal encodes v.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v, which is usually a pointer.
	Unmarshal(data []byte, v any) error

	// ContentType names the encoding Marshal produces.
	ContentType() string
}
