package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/rpc"
	"github.com/oxtoacart/bpool"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	DefaultChunkSize = 256 * 1024
	chunkPoolSize    = 4
)

// fileVaultAPI is the subset of rpc.FileVaultClient used here.
type fileVaultAPI interface {
	Ping(ctx context.Context, in *rpc.PingRequest, opts ...grpc.CallOption) (*rpc.PingResponse, error)
	CreateIdentity(ctx context.Context, in *rpc.CreateIdentityRequest, opts ...grpc.CallOption) (*rpc.Identity, error)
	CreateSession(ctx context.Context, in *rpc.CreateSessionRequest, opts ...grpc.CallOption) (*rpc.Session, error)
	GetCurrentSession(ctx context.Context, in *rpc.Empty, opts ...grpc.CallOption) (*rpc.Session, error)
	DestroySession(ctx context.Context, in *rpc.Empty, opts ...grpc.CallOption) (*rpc.Empty, error)
	ListFiles(ctx context.Context, in *rpc.ListFilesRequest, opts ...grpc.CallOption) (*rpc.ListFilesResponse, error)
	GetFile(ctx context.Context, in *rpc.GetFileRequest, opts ...grpc.CallOption) (*rpc.File, error)
	DeleteFile(ctx context.Context, in *rpc.DeleteFileRequest, opts ...grpc.CallOption) (*rpc.Empty, error)
	CreateFile(ctx context.Context, opts ...grpc.CallOption) (rpc.CreateFileClientStream, error)
}

// Options configures a GRPCClient.
type Options struct {
	Endpoint       string
	PublicEndpoint string
	ChunkSize      int
	RequestTimeout time.Duration
}

// GRPCClient implements IdentityService and ObjectStorage over gRPC.
type GRPCClient struct {
	opts    Options
	conn    *grpc.ClientConn
	client  fileVaultAPI
	buffers *bpool.BytePool
}

var (
	_ IdentityService = (*GRPCClient)(nil)
	_ ObjectStorage   = (*GRPCClient)(nil)
)

func NewGRPCClient(opts Options) (*GRPCClient, error) {
	conn, err := grpc.NewClient(opts.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	c := newWithAPI(opts, rpc.NewFileVaultClient(conn))
	c.conn = conn
	return c, nil
}

func newWithAPI(opts Options, api fileVaultAPI) *GRPCClient {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &GRPCClient{
		opts:    opts,
		client:  api,
		buffers: bpool.NewBytePool(chunkPoolSize, opts.ChunkSize),
	}
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.RequestTimeout)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) GetCurrentSession(ctx context.Context, token string) (*models.Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetCurrentSession(withAccessToken(ctx, token), &rpc.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	session := sessionFromRPC(resp)
	session.Token = token
	return session, nil
}

func (s *GRPCClient) CreateSession(ctx context.Context, email, password string) (*models.Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.CreateSession(ctx, &rpc.CreateSessionRequest{Email: email, Password: password})
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.Unauthenticated {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, st.Message())
		}
		return nil, mapError(err)
	}
	return sessionFromRPC(resp), nil
}

func (s *GRPCClient) CreateIdentity(ctx context.Context, uniqueID, email, password, name string) (*models.Identity, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := &rpc.CreateIdentityRequest{ID: uniqueID, Email: email, Password: password, Name: name}
	resp, err := s.client.CreateIdentity(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return &models.Identity{ID: resp.ID, Name: resp.Name, Email: resp.Email, CreatedAt: resp.CreatedAt}, nil
}

func (s *GRPCClient) DestroySession(ctx context.Context, token string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.DestroySession(withAccessToken(ctx, token), &rpc.Empty{})
	return mapError(err)
}

func (s *GRPCClient) List(ctx context.Context, token, containerID string) ([]models.FileRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ListFiles(withAccessToken(ctx, token), &rpc.ListFilesRequest{ContainerID: containerID})
	if err != nil {
		return nil, mapError(err)
	}
	files := make([]models.FileRecord, 0, len(resp.Files))
	for _, f := range resp.Files {
		files = append(files, fileFromRPC(&f))
	}
	return files, nil
}

func (s *GRPCClient) Get(ctx context.Context, containerID, id string) (*models.FileRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetFile(ctx, &rpc.GetFileRequest{ContainerID: containerID, FileID: id})
	if err != nil {
		return nil, mapError(err)
	}
	f := fileFromRPC(resp)
	return &f, nil
}

func (s *GRPCClient) Delete(ctx context.Context, token, containerID, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.DeleteFile(withAccessToken(ctx, token), &rpc.DeleteFileRequest{ContainerID: containerID, FileID: id})
	return mapError(err)
}

// chunkCount is the number of transfer units needed for size bytes. An
// empty file still takes one unit.
func chunkCount(size int64, chunk int) int {
	if size <= 0 {
		return 1
	}
	return int((size + int64(chunk) - 1) / int64(chunk))
}

// Create sends the header message followed by the content in chunks of
// ChunkSize bytes. Progress is reported as {0,total} before the first chunk
// and after every chunk handed to the stream, held below total; the final
// {total,total} is reported once the server has stored the file.
func (s *GRPCClient) Create(ctx context.Context, token, containerID, fileID string, file *models.LocalFile, onProgress func(models.Progress)) (*models.FileRecord, error) {
	if onProgress == nil {
		onProgress = func(models.Progress) {}
	}
	if file == nil || file.Content == nil {
		return nil, ErrNoContent
	}
	ctx, cancel := context.WithCancel(withAccessToken(ctx, token))
	defer cancel()

	total := chunkCount(file.Size, s.opts.ChunkSize)

	stream, err := s.client.CreateFile(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	header := &rpc.CreateFileHeader{
		ContainerID: containerID,
		FileID:      fileID,
		Name:        file.Name,
		MIMEType:    file.MIMEType,
		Size:        file.Size,
	}
	if err := stream.Send(&rpc.CreateFileChunk{Header: header}); err != nil {
		return nil, streamError(stream, err)
	}
	onProgress(models.Progress{Transferred: 0, Total: total})

	buf := s.buffers.Get()
	defer s.buffers.Put(buf)

	sent := 0
	for {
		n, rerr := io.ReadFull(file.Content, buf)
		if n > 0 {
			if err := stream.Send(&rpc.CreateFileChunk{Data: buf[:n]}); err != nil {
				return nil, streamError(stream, err)
			}
			sent++
			onProgress(models.Progress{Transferred: min(sent, total-1), Total: total})
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("read %s: %w", file.Name, rerr)
		}
	}

	resp, err := stream.CloseAndRecv()
	if err != nil {
		return nil, mapError(err)
	}
	onProgress(models.Progress{Transferred: total, Total: total})

	f := fileFromRPC(resp)
	return &f, nil
}

// streamError resolves a failed Send. io.EOF means the server already ended
// the stream and the real status is obtained from CloseAndRecv.
func streamError(stream rpc.CreateFileClientStream, err error) error {
	if errors.Is(err, io.EOF) {
		_, err = stream.CloseAndRecv()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
	}
	return mapError(err)
}

func (s *GRPCClient) DownloadURL(containerID, id string) string {
	return rpc.DownloadURL(s.opts.PublicEndpoint, containerID, id)
}

func (s *GRPCClient) PreviewURL(containerID, id string, width, height int) string {
	return rpc.PreviewURL(s.opts.PublicEndpoint, containerID, id, width, height)
}

func sessionFromRPC(s *rpc.Session) *models.Session {
	return &models.Session{
		ID:        s.ID,
		Token:     s.Token,
		UserID:    s.UserID,
		Name:      s.Name,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	}
}

func fileFromRPC(f *rpc.File) models.FileRecord {
	return models.FileRecord{
		ID:           f.ID,
		ContainerID:  f.ContainerID,
		Name:         f.Name,
		MIMEType:     f.MIMEType,
		SizeOriginal: f.SizeOriginal,
		CreatedAt:    f.CreatedAt,
	}
}

// mapError converts a gRPC status into one of the package sentinels while
// keeping the server's message text.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}

	var sentinel error
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		sentinel = ErrUnauthenticated
	case codes.Unavailable, codes.DeadlineExceeded,
		codes.Internal, codes.Unknown, codes.Aborted, codes.DataLoss, codes.Unimplemented:
		sentinel = ErrUnavailable
	case codes.NotFound:
		sentinel = ErrNotFound
	case codes.AlreadyExists:
		sentinel = ErrAlreadyExists
	case codes.InvalidArgument, codes.ResourceExhausted, codes.FailedPrecondition:
		sentinel = ErrRejected
	case codes.Canceled:
		return fmt.Errorf("%w: %s", context.Canceled, st.Message())
	default:
		return fmt.Errorf("%s: %s", st.Code(), st.Message())
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}
