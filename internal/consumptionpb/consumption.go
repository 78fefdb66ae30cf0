// Package consumptionpb holds the Go bindings for
// api/consumption/v1/consumption.proto. The message types encode to the
// same bytes protoc-gen-go would produce for that file.
package consumptionpb

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every wire type in this package
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

var (
	_ Message = (*ConsumptionRequest)(nil)
	_ Message = (*ConsumptionResponse)(nil)
	_ Message = (*ConsumptionRecord)(nil)
)

// ConsumptionRequest bounds a consumption query. Empty fields are unbounded.
type ConsumptionRequest struct {
	StartDatetime string // field 1
	EndDatetime   string // field 2
}

func (x *ConsumptionRequest) GetStartDatetime() string {
	if x != nil {
		return x.StartDatetime
	}
	return ""
}

func (x *ConsumptionRequest) GetEndDatetime() string {
	if x != nil {
		return x.EndDatetime
	}
	return ""
}

func (x *ConsumptionRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, x.GetStartDatetime())
	b = appendString(b, 2, x.GetEndDatetime())
	return b, nil
}

func (x *ConsumptionRequest) Unmarshal(b []byte) error {
	*x = ConsumptionRequest{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &x.StartDatetime)
		case num == 2 && typ == protowire.BytesType:
			return consumeString(b, &x.EndDatetime)
		}
		return skipField(num, typ, b)
	})
}

// ConsumptionResponse carries the matching records in timestamp order
type ConsumptionResponse struct {
	Records []*ConsumptionRecord // field 1
}

func (x *ConsumptionResponse) GetRecords() []*ConsumptionRecord {
	if x != nil {
		return x.Records
	}
	return nil
}

func (x *ConsumptionResponse) Marshal() ([]byte, error) {
	var b []byte
	for _, r := range x.GetRecords() {
		m, err := r.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	return b, nil
}

func (x *ConsumptionResponse) Unmarshal(b []byte) error {
	*x = ConsumptionResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			r := new(ConsumptionRecord)
			if err := r.Unmarshal(v); err != nil {
				return 0, err
			}
			x.Records = append(x.Records, r)
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

// ConsumptionRecord is one reading on the wire
type ConsumptionRecord struct {
	Datetime    string  // field 1
	EnergyUsage float64 // field 2
}

func (x *ConsumptionRecord) GetDatetime() string {
	if x != nil {
		return x.Datetime
	}
	return ""
}

func (x *ConsumptionRecord) GetEnergyUsage() float64 {
	if x != nil {
		return x.EnergyUsage
	}
	return 0
}

func (x *ConsumptionRecord) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, x.GetDatetime())
	// proto3 drops +0 but keeps -0
	if bits := math.Float64bits(x.GetEnergyUsage()); bits != 0 {
		b = protowire.AppendTag(b, 2, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, bits)
	}
	return b, nil
}

func (x *ConsumptionRecord) Unmarshal(b []byte) error {
	*x = ConsumptionRecord{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &x.Datetime)
		case num == 2 && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			x.EnergyUsage = math.Float64frombits(v)
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func consumeString(b []byte, dst *string) (int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

// consumeFields walks the tags in b and hands each field's value bytes to
// field, which reports how many bytes it consumed.
func consumeFields(b []byte, field func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := field(num, typ, b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
