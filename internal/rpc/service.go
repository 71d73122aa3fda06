// Package rpc is the wire contract between the FileVault client and server:
// the gRPC service descriptor, its request and response messages (carried
// with a JSON codec), and the layout of the public HTTP URLs.
package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "filevault.v1.FileVault"

const (
	MethodPing              = "/" + ServiceName + "/Ping"
	MethodCreateIdentity    = "/" + ServiceName + "/CreateIdentity"
	MethodCreateSession     = "/" + ServiceName + "/CreateSession"
	MethodGetCurrentSession = "/" + ServiceName + "/GetCurrentSession"
	MethodDestroySession    = "/" + ServiceName + "/DestroySession"
	MethodListFiles         = "/" + ServiceName + "/ListFiles"
	MethodGetFile           = "/" + ServiceName + "/GetFile"
	MethodDeleteFile        = "/" + ServiceName + "/DeleteFile"
	MethodCreateFile        = "/" + ServiceName + "/CreateFile"
)

// FileVaultServer is implemented by the server side of the service.
type FileVaultServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	CreateIdentity(context.Context, *CreateIdentityRequest) (*Identity, error)
	CreateSession(context.Context, *CreateSessionRequest) (*Session, error)
	GetCurrentSession(context.Context, *Empty) (*Session, error)
	DestroySession(context.Context, *Empty) (*Empty, error)
	ListFiles(context.Context, *ListFilesRequest) (*ListFilesResponse, error)
	GetFile(context.Context, *GetFileRequest) (*File, error)
	DeleteFile(context.Context, *DeleteFileRequest) (*Empty, error)
	CreateFile(CreateFileServerStream) error
}

// CreateFileServerStream is the server end of the client-streaming upload.
type CreateFileServerStream interface {
	Context() context.Context
	Recv() (*CreateFileChunk, error)
	SendAndClose(*File) error
}

type createFileServerStream struct {
	grpc.ServerStream
}

func (s *createFileServerStream) Recv() (*CreateFileChunk, error) {
	m := new(CreateFileChunk)
	if err := s.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *createFileServerStream) SendAndClose(m *File) error {
	return s.ServerStream.SendMsg(m)
}

func unary[Req, Resp any](name string, call func(FileVaultServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FileVaultServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FileVaultServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the FileVault service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FileVaultServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", FileVaultServer.Ping),
		unary("CreateIdentity", FileVaultServer.CreateIdentity),
		unary("CreateSession", FileVaultServer.CreateSession),
		unary("GetCurrentSession", FileVaultServer.GetCurrentSession),
		unary("DestroySession", FileVaultServer.DestroySession),
		unary("ListFiles", FileVaultServer.ListFiles),
		unary("GetFile", FileVaultServer.GetFile),
		unary("DeleteFile", FileVaultServer.DeleteFile),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "CreateFile",
			ClientStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				return srv.(FileVaultServer).CreateFile(&createFileServerStream{stream})
			},
		},
	},
	Metadata: "filevault.json",
}

// RegisterFileVaultServer attaches srv to s.
func RegisterFileVaultServer(s grpc.ServiceRegistrar, srv FileVaultServer) {
	s.RegisterService(&ServiceDesc, srv)
}
