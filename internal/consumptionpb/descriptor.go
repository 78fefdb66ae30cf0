package consumptionpb

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ProtoPath is the registered path of consumption.proto, relative to api/
const ProtoPath = "consumption/v1/consumption.proto"

// File describes api/consumption/v1/consumption.proto. It is registered in
// protoregistry.GlobalFiles so that gRPC reflection can serve it, and the
// tests check the bindings in this package against it.
var File protoreflect.FileDescriptor

func init() {
	f, err := protodesc.NewFile(fileDescriptorProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic("consumptionpb: building file descriptor: " + err.Error())
	}
	if err := protoregistry.GlobalFiles.RegisterFile(f); err != nil {
		panic("consumptionpb: registering file descriptor: " + err.Error())
	}
	File = f
}

func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	field := func(name, jsonName string, num int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
		return &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(name),
			JsonName: proto.String(jsonName),
			Number:   proto.Int32(num),
			Label:    optional,
			Type:     typ.Enum(),
		}
	}

	records := field("records", "records", 1, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	records.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	records.TypeName = proto.String(".consumption.v1.ConsumptionRecord")

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(ProtoPath),
		Package: proto.String("consumption.v1"),
		Syntax:  proto.String("proto3"),
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/jgoulah/gridserve/internal/consumptionpb"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("ConsumptionRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("start_datetime", "startDatetime", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					field("end_datetime", "endDatetime", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				},
			},
			{
				Name:  proto.String("ConsumptionResponse"),
				Field: []*descriptorpb.FieldDescriptorProto{records},
			},
			{
				Name: proto.String("ConsumptionRecord"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("datetime", "datetime", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					field("energy_usage", "energyUsage", 2, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
				},
			},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			{
				Name: proto.String("ConsumptionService"),
				Method: []*descriptorpb.MethodDescriptorProto{
					{
						Name:       proto.String("GetConsumptionData"),
						InputType:  proto.String(".consumption.v1.ConsumptionRequest"),
						OutputType: proto.String(".consumption.v1.ConsumptionResponse"),
					},
				},
			},
		},
	}
}
