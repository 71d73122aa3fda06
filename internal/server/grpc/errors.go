package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/filevault/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const invalidCredentialsMessage = "Invalid credentials. Please check the email and password."

// mapError turns a service error into a gRPC status. Unknown errors are
// logged and hidden behind codes.Internal.
func (s *GRPCServer) mapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, invalidCredentialsMessage)
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "File not found")
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrFileTooLarge):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrTypeNotAllowed):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
