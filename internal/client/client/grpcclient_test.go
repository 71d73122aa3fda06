package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type fakeAPI struct {
	lastCtx        context.Context
	lastCreateID   *rpc.CreateIdentityRequest
	lastCreateSess *rpc.CreateSessionRequest
	lastList       *rpc.ListFilesRequest
	lastGet        *rpc.GetFileRequest
	lastDelete     *rpc.DeleteFileRequest

	pingResp     *rpc.PingResponse
	pingErr      error
	identityResp *rpc.Identity
	identityErr  error
	sessionResp  *rpc.Session
	sessionErr   error
	currentResp  *rpc.Session
	currentErr   error
	destroyErr   error
	listResp     *rpc.ListFilesResponse
	listErr      error
	getResp      *rpc.File
	getErr       error
	deleteErr    error
	stream       *fakeStream
	streamErr    error
}

func (f *fakeAPI) Ping(ctx context.Context, in *rpc.PingRequest, _ ...grpc.CallOption) (*rpc.PingResponse, error) {
	f.lastCtx = ctx
	return f.pingResp, f.pingErr
}
func (f *fakeAPI) CreateIdentity(ctx context.Context, in *rpc.CreateIdentityRequest, _ ...grpc.CallOption) (*rpc.Identity, error) {
	f.lastCtx, f.lastCreateID = ctx, in
	return f.identityResp, f.identityErr
}
func (f *fakeAPI) CreateSession(ctx context.Context, in *rpc.CreateSessionRequest, _ ...grpc.CallOption) (*rpc.Session, error) {
	f.lastCtx, f.lastCreateSess = ctx, in
	return f.sessionResp, f.sessionErr
}
func (f *fakeAPI) GetCurrentSession(ctx context.Context, _ *rpc.Empty, _ ...grpc.CallOption) (*rpc.Session, error) {
	f.lastCtx = ctx
	return f.currentResp, f.currentErr
}
func (f *fakeAPI) DestroySession(ctx context.Context, _ *rpc.Empty, _ ...grpc.CallOption) (*rpc.Empty, error) {
	f.lastCtx = ctx
	return &rpc.Empty{}, f.destroyErr
}
func (f *fakeAPI) ListFiles(ctx context.Context, in *rpc.ListFilesRequest, _ ...grpc.CallOption) (*rpc.ListFilesResponse, error) {
	f.lastCtx, f.lastList = ctx, in
	return f.listResp, f.listErr
}
func (f *fakeAPI) GetFile(ctx context.Context, in *rpc.GetFileRequest, _ ...grpc.CallOption) (*rpc.File, error) {
	f.lastCtx, f.lastGet = ctx, in
	return f.getResp, f.getErr
}
func (f *fakeAPI) DeleteFile(ctx context.Context, in *rpc.DeleteFileRequest, _ ...grpc.CallOption) (*rpc.Empty, error) {
	f.lastCtx, f.lastDelete = ctx, in
	return &rpc.Empty{}, f.deleteErr
}
func (f *fakeAPI) CreateFile(ctx context.Context, _ ...grpc.CallOption) (rpc.CreateFileClientStream, error) {
	f.lastCtx = ctx
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return f.stream, nil
}

type fakeStream struct {
	sent       []*rpc.CreateFileChunk
	failAfter  int // Send fails with io.EOF once this many messages were sent; 0 disables
	closeResp  *rpc.File
	closeErr   error
	closeCalls int
}

func (s *fakeStream) Send(m *rpc.CreateFileChunk) error {
	if s.failAfter > 0 && len(s.sent) >= s.failAfter {
		return io.EOF
	}
	// the client reuses its buffer, keep a copy
	cp := &rpc.CreateFileChunk{Header: m.Header, Data: append([]byte(nil), m.Data...)}
	s.sent = append(s.sent, cp)
	return nil
}

func (s *fakeStream) CloseAndRecv() (*rpc.File, error) {
	s.closeCalls++
	return s.closeResp, s.closeErr
}

func tokenOf(t *testing.T, ctx context.Context) string {
	t.Helper()
	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	vals := md.Get(common.AccessTokenHeaderName)
	require.Len(t, vals, 1)
	return vals[0]
}

func newTestClient(api fileVaultAPI, chunk int) *GRPCClient {
	return newWithAPI(Options{PublicEndpoint: "http://files.local", ChunkSize: chunk, RequestTimeout: time.Second}, api)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		code codes.Code
		want error
	}{
		{codes.Unauthenticated, ErrUnauthenticated},
		{codes.PermissionDenied, ErrUnauthenticated},
		{codes.Unavailable, ErrUnavailable},
		{codes.DeadlineExceeded, ErrUnavailable},
		{codes.NotFound, ErrNotFound},
		{codes.AlreadyExists, ErrAlreadyExists},
		{codes.InvalidArgument, ErrRejected},
		{codes.ResourceExhausted, ErrRejected},
		{codes.Canceled, context.Canceled},
		{codes.Internal, ErrUnavailable},
		{codes.Unknown, ErrUnavailable},
		{codes.Aborted, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := mapError(status.Error(tt.code, "server says"))
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "server says")
		})
	}

	require.NoError(t, mapError(nil))
	plain := errors.New("plain")
	require.ErrorIs(t, mapError(plain), plain)

	err := mapError(status.Error(codes.Internal, "internal error"))
	assert.Equal(t, "server unavailable: internal error", err.Error())

	err = mapError(status.Error(codes.OutOfRange, "past the end"))
	assert.Equal(t, "OutOfRange: past the end", err.Error())
}

func TestPing(t *testing.T) {
	c := newTestClient(&fakeAPI{pingResp: &rpc.PingResponse{Status: "OK"}}, 0)
	require.NoError(t, c.Ping(context.Background()))

	c = newTestClient(&fakeAPI{pingResp: &rpc.PingResponse{Status: "DOWN"}}, 0)
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)

	c = newTestClient(&fakeAPI{pingErr: status.Error(codes.Unavailable, "conn refused")}, 0)
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestCreateSession(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &fakeAPI{sessionResp: &rpc.Session{ID: "s1", Token: "tok", UserID: "u1", Name: "Ann", Email: "ann@x.io", ExpiresAt: exp}}
	c := newTestClient(f, 0)

	s, err := c.CreateSession(context.Background(), "ann@x.io", "secret123")
	require.NoError(t, err)
	assert.Equal(t, &models.Session{ID: "s1", Token: "tok", UserID: "u1", Name: "Ann", Email: "ann@x.io", ExpiresAt: exp}, s)
	assert.Equal(t, "ann@x.io", f.lastCreateSess.Email)
	assert.Equal(t, "secret123", f.lastCreateSess.Password)
}

func TestCreateSession_WrongPasswordIsInvalidCredentials(t *testing.T) {
	f := &fakeAPI{sessionErr: status.Error(codes.Unauthenticated, "Invalid credentials. Please check the email and password.")}
	c := newTestClient(f, 0)

	_, err := c.CreateSession(context.Background(), "ann@x.io", "bad")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.NotErrorIs(t, err, ErrUnauthenticated)
	assert.Contains(t, err.Error(), "Please check the email and password.")
}

func TestGetCurrentSession_SendsTokenAndKeepsIt(t *testing.T) {
	f := &fakeAPI{currentResp: &rpc.Session{ID: "s1", UserID: "u1"}}
	c := newTestClient(f, 0)

	s, err := c.GetCurrentSession(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "tok", tokenOf(t, f.lastCtx))

	f.currentErr = status.Error(codes.Unauthenticated, "expired")
	_, err = c.GetCurrentSession(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateIdentity(t *testing.T) {
	f := &fakeAPI{identityResp: &rpc.Identity{ID: "u1", Name: "Ann", Email: "ann@x.io"}}
	c := newTestClient(f, 0)

	id, err := c.CreateIdentity(context.Background(), common.UniqueID, "ann@x.io", "secret123", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
	assert.Equal(t, common.UniqueID, f.lastCreateID.ID)

	f.identityErr = status.Error(codes.AlreadyExists, "A user with the same email already exists.")
	_, err = c.CreateIdentity(context.Background(), common.UniqueID, "ann@x.io", "secret123", "Ann")
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestDestroySession(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(f, 0)
	require.NoError(t, c.DestroySession(context.Background(), "tok"))
	assert.Equal(t, "tok", tokenOf(t, f.lastCtx))

	f.destroyErr = status.Error(codes.Unavailable, "down")
	require.ErrorIs(t, c.DestroySession(context.Background(), "tok"), ErrUnavailable)
}

func TestList_PreservesOrder(t *testing.T) {
	f := &fakeAPI{listResp: &rpc.ListFilesResponse{Files: []rpc.File{{ID: "b"}, {ID: "a"}, {ID: "c"}}}}
	c := newTestClient(f, 0)

	files, err := c.List(context.Background(), "tok", "files")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{files[0].ID, files[1].ID, files[2].ID})
	assert.Equal(t, "files", f.lastList.ContainerID)
	assert.Equal(t, "tok", tokenOf(t, f.lastCtx))
}

func TestGetAndDelete(t *testing.T) {
	f := &fakeAPI{getResp: &rpc.File{ID: "x", ContainerID: "files", Name: "a.png", MIMEType: "image/png"}}
	c := newTestClient(f, 0)

	rec, err := c.Get(context.Background(), "files", "x")
	require.NoError(t, err)
	assert.Equal(t, "a.png", rec.Name)
	_, hasMD := metadata.FromOutgoingContext(f.lastCtx)
	assert.False(t, hasMD, "Get must not send a token")

	f.deleteErr = status.Error(codes.NotFound, "File not found")
	err = c.Delete(context.Background(), "tok", "files", "x")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "x", f.lastDelete.FileID)
}

func TestURLs(t *testing.T) {
	c := newTestClient(&fakeAPI{}, 0)
	assert.Equal(t, "http://files.local/v1/storage/buckets/files/files/x/download", c.DownloadURL("files", "x"))
	assert.Equal(t, "http://files.local/v1/storage/buckets/files/files/x/preview?height=400&width=600", c.PreviewURL("files", "x", 600, 400))
}

func TestChunkCount(t *testing.T) {
	assert.Equal(t, 1, chunkCount(0, 4))
	assert.Equal(t, 1, chunkCount(4, 4))
	assert.Equal(t, 2, chunkCount(5, 4))
	assert.Equal(t, 3, chunkCount(10*1024, 4096))
}

func TestCreate_StreamsChunksAndReportsProgress(t *testing.T) {
	stream := &fakeStream{closeResp: &rpc.File{ID: "new", ContainerID: "files", Name: "a.txt", SizeOriginal: 10}}
	f := &fakeAPI{stream: stream}
	c := newTestClient(f, 4)

	var snaps []models.Progress
	file := &models.LocalFile{Name: "a.txt", MIMEType: "text/plain", Size: 10, Content: strings.NewReader("0123456789")}
	rec, err := c.Create(context.Background(), "tok", "files", common.UniqueID, file, func(p models.Progress) {
		snaps = append(snaps, p)
	})
	require.NoError(t, err)
	assert.Equal(t, "new", rec.ID)
	assert.Equal(t, "tok", tokenOf(t, f.lastCtx))

	require.Len(t, stream.sent, 4)
	require.NotNil(t, stream.sent[0].Header)
	assert.Equal(t, common.UniqueID, stream.sent[0].Header.FileID)
	assert.Equal(t, "text/plain", stream.sent[0].Header.MIMEType)

	var body bytes.Buffer
	for _, m := range stream.sent[1:] {
		body.Write(m.Data)
	}
	assert.Equal(t, "0123456789", body.String())

	assert.Equal(t, []models.Progress{{Transferred: 0, Total: 3}, {Transferred: 1, Total: 3}, {Transferred: 2, Total: 3}, {Transferred: 2, Total: 3}, {Transferred: 3, Total: 3}}, snaps)
}

func TestCreate_HoldsBelowTotalUntilAcknowledged(t *testing.T) {
	stream := &fakeStream{closeErr: status.Error(codes.Internal, "internal error")}
	c := newTestClient(&fakeAPI{stream: stream}, 4)

	var snaps []models.Progress
	file := &models.LocalFile{Name: "a.txt", Size: 8, Content: strings.NewReader("01234567")}
	_, err := c.Create(context.Background(), "tok", "files", common.UniqueID, file, func(p models.Progress) {
		snaps = append(snaps, p)
	})
	require.ErrorIs(t, err, ErrUnavailable)
	for _, p := range snaps {
		assert.Less(t, p.Transferred, p.Total)
	}
}

func TestCreate_NoContent(t *testing.T) {
	f := &fakeAPI{stream: &fakeStream{}}
	c := newTestClient(f, 4)

	_, err := c.Create(context.Background(), "tok", "files", common.UniqueID, &models.LocalFile{Name: "x"}, nil)
	require.ErrorIs(t, err, ErrNoContent)
	_, err = c.Create(context.Background(), "tok", "files", common.UniqueID, nil, nil)
	require.ErrorIs(t, err, ErrNoContent)
	assert.Empty(t, f.stream.sent)
}

func TestCreate_ServerRejectsMidStream(t *testing.T) {
	stream := &fakeStream{
		failAfter: 2,
		closeErr:  status.Error(codes.InvalidArgument, "file exceeds maximum allowed size of 4 bytes"),
	}
	c := newTestClient(&fakeAPI{stream: stream}, 4)

	file := &models.LocalFile{Name: "big.bin", Size: 12, Content: bytes.NewReader(make([]byte, 12))}
	_, err := c.Create(context.Background(), "tok", "files", common.UniqueID, file, nil)
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "file exceeds maximum allowed size of 4 bytes")
	assert.Equal(t, 1, stream.closeCalls)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestCreate_ReadError(t *testing.T) {
	c := newTestClient(&fakeAPI{stream: &fakeStream{}}, 4)

	file := &models.LocalFile{Name: "a.txt", Size: 3, Content: brokenReader{}}
	_, err := c.Create(context.Background(), "tok", "files", common.UniqueID, file, nil)
	require.ErrorContains(t, err, "disk gone")
}

func TestCreate_OpenStreamError(t *testing.T) {
	c := newTestClient(&fakeAPI{streamErr: status.Error(codes.Unauthenticated, "missing token")}, 4)

	file := &models.LocalFile{Name: "a.txt", Size: 1, Content: strings.NewReader("a")}
	_, err := c.Create(context.Background(), "", "files", common.UniqueID, file, nil)
	require.ErrorIs(t, err, ErrUnauthenticated)
}
