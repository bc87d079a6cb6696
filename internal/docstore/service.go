// Package docstore is the wire contract of the remote document store,
// shared by the client transports and the server front ends.
//
// The gRPC service is described by hand: every method takes and returns a
// google.protobuf.Struct, so no generated code is needed and payloads stay
// schema-less like the documents they carry.
package docstore

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "mandaditos.docstore.v1.DocumentStore"

// FullMethod returns the gRPC path of method, e.g. "/mandaditos.docstore.v1.DocumentStore/Create".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

const (
	MethodLogin  = "Login"
	MethodPing   = "Ping"
	MethodCreate = "Create"
	MethodUpdate = "Update"
	MethodList   = "List"
	MethodDelete = "Delete"
	MethodExport = "Export"
)

// Server is implemented by the gRPC front end.
type Server interface {
	Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Create(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Update(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	List(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Delete(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Export(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type serverCall func(Server, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call serverCall) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(Server), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(Server), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc registers a Server with a grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodLogin, Handler: unaryHandler(MethodLogin, Server.Login)},
		{MethodName: MethodPing, Handler: unaryHandler(MethodPing, Server.Ping)},
		{MethodName: MethodCreate, Handler: unaryHandler(MethodCreate, Server.Create)},
		{MethodName: MethodUpdate, Handler: unaryHandler(MethodUpdate, Server.Update)},
		{MethodName: MethodList, Handler: unaryHandler(MethodList, Server.List)},
		{MethodName: MethodDelete, Handler: unaryHandler(MethodDelete, Server.Delete)},
		{MethodName: MethodExport, Handler: unaryHandler(MethodExport, Server.Export)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mandaditos/docstore/v1/docstore.proto",
}

func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the service over any grpc.ClientConnInterface.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with in and returns the decoded reply.
func (c *Client) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
