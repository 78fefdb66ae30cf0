package consumptionpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// ServiceName is the fully qualified name of the service, also used
	// for its health status.
	ServiceName = "consumption.v1.ConsumptionService"

	ConsumptionService_GetConsumptionData_FullMethodName = "/" + ServiceName + "/GetConsumptionData"
)

// ConsumptionServiceClient is the client API for ConsumptionService.
type ConsumptionServiceClient interface {
	GetConsumptionData(ctx context.Context, in *ConsumptionRequest, opts ...grpc.CallOption) (*ConsumptionResponse, error)
}

type consumptionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewConsumptionServiceClient(cc grpc.ClientConnInterface) ConsumptionServiceClient {
	return &consumptionServiceClient{cc}
}

func (c *consumptionServiceClient) GetConsumptionData(ctx context.Context, in *ConsumptionRequest, opts ...grpc.CallOption) (*ConsumptionResponse, error) {
	out := new(ConsumptionResponse)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	err := c.cc.Invoke(ctx, ConsumptionService_GetConsumptionData_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ConsumptionServiceServer is the server API for ConsumptionService.
// All implementations must embed UnimplementedConsumptionServiceServer.
type ConsumptionServiceServer interface {
	GetConsumptionData(context.Context, *ConsumptionRequest) (*ConsumptionResponse, error)
	mustEmbedUnimplementedConsumptionServiceServer()
}

// UnimplementedConsumptionServiceServer must be embedded to have forward compatible implementations.
type UnimplementedConsumptionServiceServer struct{}

func (UnimplementedConsumptionServiceServer) GetConsumptionData(context.Context, *ConsumptionRequest) (*ConsumptionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetConsumptionData not implemented")
}
func (UnimplementedConsumptionServiceServer) mustEmbedUnimplementedConsumptionServiceServer() {}

// RegisterConsumptionServiceServer registers srv on s. The server must be
// created with grpc.ForceServerCodec(Codec{}).
func RegisterConsumptionServiceServer(s grpc.ServiceRegistrar, srv ConsumptionServiceServer) {
	s.RegisterService(&ConsumptionService_ServiceDesc, srv)
}

func _ConsumptionService_GetConsumptionData_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ConsumptionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConsumptionServiceServer).GetConsumptionData(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ConsumptionService_GetConsumptionData_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConsumptionServiceServer).GetConsumptionData(ctx, req.(*ConsumptionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ConsumptionService_ServiceDesc is the grpc.ServiceDesc for ConsumptionService.
var ConsumptionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ConsumptionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetConsumptionData",
			Handler:    _ConsumptionService_GetConsumptionData_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ProtoPath,
}

// Request field names, as they appear in the .proto and in the gateway's
// query string.
const (
	StartDatetimeField = "start_datetime"
	EndDatetimeField   = "end_datetime"
)

// RequestIDKey is the gRPC metadata key carrying the caller's request id
const RequestIDKey = "x-request-id"
