package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// FileVaultClient is a thin typed wrapper over a client connection. Every
// call is sent with the JSON content-subtype.
type FileVaultClient struct {
	cc grpc.ClientConnInterface
}

func NewFileVaultClient(cc grpc.ClientConnInterface) *FileVaultClient {
	return &FileVaultClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FileVaultClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *FileVaultClient) CreateIdentity(ctx context.Context, in *CreateIdentityRequest, opts ...grpc.CallOption) (*Identity, error) {
	return invoke[Identity](ctx, c.cc, MethodCreateIdentity, in, opts)
}

func (c *FileVaultClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, MethodCreateSession, in, opts)
}

func (c *FileVaultClient) GetCurrentSession(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, MethodGetCurrentSession, in, opts)
}

func (c *FileVaultClient) DestroySession(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDestroySession, in, opts)
}

func (c *FileVaultClient) ListFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error) {
	return invoke[ListFilesResponse](ctx, c.cc, MethodListFiles, in, opts)
}

func (c *FileVaultClient) GetFile(ctx context.Context, in *GetFileRequest, opts ...grpc.CallOption) (*File, error) {
	return invoke[File](ctx, c.cc, MethodGetFile, in, opts)
}

func (c *FileVaultClient) DeleteFile(ctx context.Context, in *DeleteFileRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteFile, in, opts)
}

// CreateFileClientStream is the client end of the upload stream.
type CreateFileClientStream interface {
	Send(*CreateFileChunk) error
	CloseAndRecv() (*File, error)
}

type createFileClientStream struct {
	grpc.ClientStream
}

func (s *createFileClientStream) Send(m *CreateFileChunk) error {
	return s.ClientStream.SendMsg(m)
}

func (s *createFileClientStream) CloseAndRecv() (*File, error) {
	if err := s.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	m := new(File)
	if err := s.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *FileVaultClient) CreateFile(ctx context.Context, opts ...grpc.CallOption) (CreateFileClientStream, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], MethodCreateFile, opts...)
	if err != nil {
		return nil, err
	}
	return &createFileClientStream{stream}, nil
}
