// Package grpc serves the FileVault identity and storage services over gRPC.
package grpc

import (
	"context"
	"io"
	"net"

	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/rpc"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/services"
	"google.golang.org/grpc"
)

// IdentityService is the part of services.IdentityService the server uses.
type IdentityService interface {
	CreateIdentity(ctx context.Context, id, email, password, name string) (*models.User, error)
	CreateSession(ctx context.Context, email, password string) (*models.Session, string, error)
	Authenticate(ctx context.Context, token string) (*models.Session, error)
	DestroySession(ctx context.Context, sessionID string) error
}

// StorageService is the part of services.StorageService the server uses.
type StorageService interface {
	List(ctx context.Context, ownerID, containerID string) ([]*models.File, error)
	Create(ctx context.Context, ownerID string, nf services.NewFile, r io.Reader) (*models.File, error)
	Delete(ctx context.Context, ownerID, containerID, id string) error
	Get(ctx context.Context, containerID, id string) (*models.File, error)
}

type GRPCServer struct {
	address  string
	identity IdentityService
	storage  StorageService
	logger   logging.Logger
}

var _ rpc.FileVaultServer = (*GRPCServer)(nil)

func NewGRPCServer(address string, l logging.Logger, identity IdentityService, storage StorageService) *GRPCServer {
	return &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		identity: identity,
		storage:  storage,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamLoggingInterceptor, s.streamAccessTokenInterceptor),
	)
	rpc.RegisterFileVaultServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())
	return srv.Serve(lis)
}
