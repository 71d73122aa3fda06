package grpc

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/filevault/internal/rpc"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(context.Context, *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) CreateIdentity(ctx context.Context, req *rpc.CreateIdentityRequest) (*rpc.Identity, error) {
	u, err := s.identity.CreateIdentity(ctx, req.ID, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &rpc.Identity{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}, nil
}

func (s *GRPCServer) CreateSession(ctx context.Context, req *rpc.CreateSessionRequest) (*rpc.Session, error) {
	session, token, err := s.identity.CreateSession(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	out := toSession(session)
	out.Token = token
	return out, nil
}

func (s *GRPCServer) GetCurrentSession(ctx context.Context, _ *rpc.Empty) (*rpc.Session, error) {
	session, ok := sessionFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no session")
	}
	return toSession(session), nil
}

func (s *GRPCServer) DestroySession(ctx context.Context, _ *rpc.Empty) (*rpc.Empty, error) {
	session, ok := sessionFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no session")
	}
	if err := s.identity.DestroySession(ctx, session.ID); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ListFiles(ctx context.Context, req *rpc.ListFilesRequest) (*rpc.ListFilesResponse, error) {
	session, ok := sessionFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no session")
	}
	files, err := s.storage.List(ctx, session.UserID, req.ContainerID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	out := &rpc.ListFilesResponse{Files: make([]rpc.File, 0, len(files))}
	for _, f := range files {
		out.Files = append(out.Files, *toFile(f))
	}
	return out, nil
}

// GetFile is public: anyone holding a share link may resolve it.
func (s *GRPCServer) GetFile(ctx context.Context, req *rpc.GetFileRequest) (*rpc.File, error) {
	f, err := s.storage.Get(ctx, req.ContainerID, req.FileID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return toFile(f), nil
}

func (s *GRPCServer) DeleteFile(ctx context.Context, req *rpc.DeleteFileRequest) (*rpc.Empty, error) {
	session, ok := sessionFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no session")
	}
	if err := s.storage.Delete(ctx, session.UserID, req.ContainerID, req.FileID); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &rpc.Empty{}, nil
}

// CreateFile reads the header message, then streams the data messages into
// the storage service.
func (s *GRPCServer) CreateFile(stream rpc.CreateFileServerStream) error {
	ctx := stream.Context()
	session, ok := sessionFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "no session")
	}

	first, err := stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return status.Error(codes.InvalidArgument, "missing file header")
		}
		return err
	}
	if first.Header == nil {
		return status.Error(codes.InvalidArgument, "first message must carry the file header")
	}
	h := first.Header

	f, err := s.storage.Create(ctx, session.UserID, services.NewFile{
		ContainerID: h.ContainerID,
		ID:          h.FileID,
		Name:        h.Name,
		MIMEType:    h.MIMEType,
	}, &chunkReader{stream: stream, buf: first.Data})
	if err != nil {
		return s.mapError(ctx, err)
	}
	return stream.SendAndClose(toFile(f))
}

// chunkReader exposes the data messages of a CreateFile stream as an
// io.Reader.
type chunkReader struct {
	stream rpc.CreateFileServerStream
	buf    []byte
	err    error
}

var errSecondHeader = status.Error(codes.InvalidArgument, "unexpected second file header")

func (r *chunkReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		msg, err := r.stream.Recv()
		if err != nil {
			r.err = err
			continue
		}
		if msg.Header != nil {
			r.err = errSecondHeader
			continue
		}
		r.buf = msg.Data
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func toSession(s *models.Session) *rpc.Session {
	return &rpc.Session{
		ID:        s.ID,
		UserID:    s.UserID,
		Name:      s.Name,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	}
}

func toFile(f *models.File) *rpc.File {
	return &rpc.File{
		ID:           f.ID,
		ContainerID:  f.ContainerID,
		Name:         f.Name,
		MIMEType:     f.MIMEType,
		SizeOriginal: f.SizeOriginal,
		CreatedAt:    f.CreatedAt,
	}
}
