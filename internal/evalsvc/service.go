// Package evalsvc exposes the value layer as the paramval.v1.Evaluator gRPC
// service. Messages are google.protobuf.Struct values.
package evalsvc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "paramval.v1.Evaluator"

// Method names
const (
	MethodEvaluate = "Evaluate"
	MethodCancel   = "Cancel"
	MethodExport   = "Export"
	MethodHealth   = "Health"
)

// EvaluatorServer is the server API of the Evaluator service
type EvaluatorServer interface {
	// Evaluate takes {expression | snapshot_id, function}, point and record
	Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Cancel takes numerator and denominator polynomial literals
	Cancel(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Export takes expressions, format, and optionally save and name
	Export(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Health returns the health report
	Health(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// FullMethod returns "/paramval.v1.Evaluator/<method>"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type call func(EvaluatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, fn call) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(srv.(EvaluatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return fn(srv.(EvaluatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the Evaluator service for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodEvaluate, Handler: unaryHandler(MethodEvaluate, EvaluatorServer.Evaluate)},
		{MethodName: MethodCancel, Handler: unaryHandler(MethodCancel, EvaluatorServer.Cancel)},
		{MethodName: MethodExport, Handler: unaryHandler(MethodExport, EvaluatorServer.Export)},
		{MethodName: MethodHealth, Handler: unaryHandler(MethodHealth, EvaluatorServer.Health)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "paramval/v1/evaluator.proto",
}

// RegisterEvaluatorServer registers srv with s
func RegisterEvaluatorServer(s grpc.ServiceRegistrar, srv EvaluatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Field accessors for request structs

func stringField(req *structpb.Struct, key string) string {
	if v, ok := req.GetFields()[key]; ok {
		return strings.TrimSpace(v.GetStringValue())
	}
	return ""
}

func numberField(req *structpb.Struct, key string) (float64, bool) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, false
	}
	_, isNum := v.GetKind().(*structpb.Value_NumberValue)
	return v.GetNumberValue(), isNum
}

func boolField(req *structpb.Struct, key string) bool {
	if v, ok := req.GetFields()[key]; ok {
		return v.GetBoolValue()
	}
	return false
}

func stringList(req *structpb.Struct, key string) []string {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil
	}
	var out []string
	for _, item := range v.GetListValue().GetValues() {
		out = append(out, item.GetStringValue())
	}
	return out
}

// pointField reads {"name": "literal"}; numbers are accepted and rendered
// with strconv so that 0.5 stays exact
func pointField(req *structpb.Struct, key string) map[string]string {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for name, val := range v.GetStructValue().GetFields() {
		switch k := val.GetKind().(type) {
		case *structpb.Value_NumberValue:
			out[name] = FormatFloat(k.NumberValue)
		default:
			out[name] = val.GetStringValue()
		}
	}
	return out
}
