package server

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/labplan/internal/tools"
	"github.com/GoSim-25-26J-441/labplan/pkg/logger"
)

// ToolServiceName is the fully qualified gRPC service name
const ToolServiceName = "labplan.v1.ToolService"

const (
	callToolMethod  = "/" + ToolServiceName + "/CallTool"
	listToolsMethod = "/" + ToolServiceName + "/ListTools"
)

// ToolServiceServer is the gRPC surface of the tool registry. Requests and
// responses are google.protobuf.Struct:
//
//	CallTool  {tool: string, args: {...}} -> {call_id, tool, text, data}
//	ListTools {}                          -> {tools: [...]}
type ToolServiceServer interface {
	CallTool(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTools(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ToolServiceDesc describes ToolServiceServer for grpc.Server.RegisterService
var ToolServiceDesc = grpc.ServiceDesc{
	ServiceName: ToolServiceName,
	HandlerType: (*ToolServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CallTool", Handler: callToolHandler},
		{MethodName: "ListTools", Handler: listToolsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "labplan/v1/tools.proto",
}

func callToolHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ToolServiceServer).CallTool(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: callToolMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ToolServiceServer).CallTool(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listToolsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ToolServiceServer).ListTools(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listToolsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ToolServiceServer).ListTools(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ToolGRPCServer implements ToolServiceServer on a tool registry
type ToolGRPCServer struct {
	registry *tools.Registry
}

// NewToolGRPCServer creates a ToolGRPCServer
func NewToolGRPCServer(registry *tools.Registry) *ToolGRPCServer {
	return &ToolGRPCServer{registry: registry}
}

// Register attaches the tool service and a health service reporting it as serving
func Register(s *grpc.Server, registry *tools.Registry) *health.Server {
	s.RegisterService(&ToolServiceDesc, NewToolGRPCServer(registry))

	hs := health.NewServer()
	hs.SetServingStatus(ToolServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return hs
}

func (s *ToolGRPCServer) CallTool(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	fields := req.AsMap()
	name, _ := fields["tool"].(string)
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "tool is required")
	}

	rawArgs := map[string]any{}
	if a, ok := fields["args"]; ok && a != nil {
		m, ok := a.(map[string]any)
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "args must be an object")
		}
		rawArgs = m
	}

	args, err := tools.ArgsFromMap(rawArgs)
	if err != nil {
		return nil, status.Error(classify(err).grpcCode, err.Error())
	}
	res, err := s.registry.Call(ctx, name, args)
	if err != nil {
		return nil, status.Error(classify(err).grpcCode, err.Error())
	}

	out, err := toStruct(res)
	if err != nil {
		logger.Error("failed to encode tool result", "tool", name, "error", err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *ToolGRPCServer) ListTools(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := toStruct(map[string]any{"tools": s.registry.List()})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toStruct converts any JSON-encodable value to a Struct by way of its JSON form
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal: %w", err)
	}
	return structpb.NewStruct(m)
}

// ToolServiceClient calls a remote ToolService
type ToolServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewToolServiceClient wraps a client connection
func NewToolServiceClient(cc grpc.ClientConnInterface) *ToolServiceClient {
	return &ToolServiceClient{cc: cc}
}

// CallTool invokes name with args and returns the decoded result
func (c *ToolServiceClient) CallTool(ctx context.Context, name string, args map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]any{"tool": name, "args": args})
	if err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, callToolMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTools returns the remote tool descriptions
func (c *ToolServiceClient) ListTools(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listToolsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
