// Package grpc exposes AccountService over gRPC using the JSON codec from
// internal/proto.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/logging"
	pb "github.com/dmitrijs2005/todoauth/internal/proto"
	"github.com/dmitrijs2005/todoauth/internal/server/services"
	"google.golang.org/grpc"
)

type accountService interface {
	Register(ctx context.Context, req services.RegisterRequest) *services.AuthResult
	Login(ctx context.Context, req services.LoginRequest) *services.AuthResult
	Refresh(ctx context.Context, req services.RefreshRequest) *services.AuthResult
	Logout(ctx context.Context, req services.LogoutRequest) *services.AuthResult
	Authenticate(accessToken string) (*services.Identity, error)
}

type GRPCServer struct {
	pb.UnimplementedAccountServiceServer
	address string
	account accountService
	logger  logging.Logger
	timeout time.Duration
}

func NewGRPCServer(a string, l logging.Logger, account accountService, timeout time.Duration) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		account: account,
		timeout: timeout,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.timeoutInterceptor, s.accessTokenInterceptor))
	pb.RegisterAccountServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
