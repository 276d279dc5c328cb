// Package codec provides the body codecs used for request binding and
// response rendering: JSON for the default application mode and
// Protocol Buffers for binary API clients.
package codec

import (
	"fmt"

	json "github.com/goccy/go-json"
	"google.golang.org/protobuf/proto"
)

// Codec encodes and decodes message bodies.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
	ContentType() string
}

// JSONCodec implements JSON encoding/decoding via goccy/go-json.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (c *JSONCodec) Name() string { return "json" }

func (c *JSONCodec) ContentType() string { return "application/json" }

// ProtobufCodec implements Protocol Buffers encoding/decoding.
type ProtobufCodec struct{}

func (c *ProtobufCodec) Encode(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("value must implement proto.Message interface, got %T", v)
	}
	return proto.Marshal(msg)
}

func (c *ProtobufCodec) Decode(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("value must implement proto.Message interface, got %T", v)
	}
	return proto.Unmarshal(data, msg)
}

func (c *ProtobufCodec) Name() string { return "protobuf" }

func (c *ProtobufCodec) ContentType() string { return "application/x-protobuf" }

var (
	// JSON is the shared JSON codec instance.
	JSON = &JSONCodec{}
	// Protobuf is the shared protobuf codec instance.
	Protobuf = &ProtobufCodec{}
)

// ForContentType selects the codec matching a Content-Type header.
// JSON is the fallback for anything unrecognized.
func ForContentType(ct string) Codec {
	switch ct {
	case "application/x-protobuf", "application/protobuf":
		return Protobuf
	default:
		return JSON
	}
}
