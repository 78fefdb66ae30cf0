package consumptionpb

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
)

// CodecName matches the name of gRPC's own protobuf codec so that the
// content-type on the wire stays application/grpc+proto.
const CodecName = "proto"

// Codec encodes the message types of this package and defers to the
// protobuf runtime for generated messages such as health checks.
type Codec struct{}

var _ encoding.Codec = Codec{}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	switch m := v.(type) {
	case Message:
		return m.Marshal()
	case proto.Message:
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("consumptionpb: cannot marshal %T", v)
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	switch m := v.(type) {
	case Message:
		return m.Unmarshal(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("consumptionpb: cannot unmarshal into %T", v)
}

func (Codec) Name() string {
	return CodecName
}
