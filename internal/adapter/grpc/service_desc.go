package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "bioastro.v1.ChartService"

// Full method names, usable with grpc.ClientConn.Invoke
const (
	MethodCreateChart  = "/" + ServiceName + "/CreateChart"
	MethodComputeChart = "/" + ServiceName + "/ComputeChart"
	MethodGetJob       = "/" + ServiceName + "/GetJob"
	MethodGetChart     = "/" + ServiceName + "/GetChart"
)

// ChartServiceServer is the server API for ChartService.
// Every message is a google.protobuf.Struct.
type ChartServiceServer interface {
	CreateChart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeChart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetChart(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(ChartServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ChartServiceDesc describes ChartService for grpc.Server.RegisterService
var ChartServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateChart", Handler: unaryHandler(MethodCreateChart, ChartServiceServer.CreateChart)},
		{MethodName: "ComputeChart", Handler: unaryHandler(MethodComputeChart, ChartServiceServer.ComputeChart)},
		{MethodName: "GetJob", Handler: unaryHandler(MethodGetJob, ChartServiceServer.GetJob)},
		{MethodName: "GetChart", Handler: unaryHandler(MethodGetChart, ChartServiceServer.GetChart)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bioastro/v1/chart_service.proto",
}

// RegisterChartServiceServer registers the implementation with a gRPC server
func RegisterChartServiceServer(s grpc.ServiceRegistrar, srv ChartServiceServer) {
	s.RegisterService(&ChartServiceDesc, srv)
}

func unaryHandler(fullMethod string, method unaryMethod) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(ChartServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return method(srv.(ChartServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
