package grpc

import (
	"context"
	"strings"

	pb "github.com/dmitrijs2005/todoauth/internal/proto"
	"github.com/dmitrijs2005/todoauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toResponse(r *services.AuthResult) (*pb.AuthResponse, error) {
	switch r.Status {
	case services.StatusOK:
		return &pb.AuthResponse{
			AccessToken:  r.AccessToken,
			RefreshToken: r.RefreshToken,
			Success:      true,
		}, nil
	case services.StatusBadRequest:
		return nil, status.Error(codes.InvalidArgument, strings.Join(r.Errors, "; "))
	default:
		return nil, status.Error(codes.Internal, strings.Join(r.Errors, "; "))
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.AuthResponse, error) {

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	return toResponse(s.account.Register(ctx, services.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}))

}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.AuthResponse, error) {

	return toResponse(s.account.Login(ctx, services.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	}))

}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.AuthResponse, error) {

	return toResponse(s.account.Refresh(ctx, services.RefreshRequest{
		Token:        req.Token,
		RefreshToken: req.RefreshToken,
	}))

}

func (s *GRPCServer) Logout(ctx context.Context, req *pb.LogoutRequest) (*pb.AuthResponse, error) {

	return toResponse(s.account.Logout(ctx, services.LogoutRequest{RefreshToken: req.RefreshToken}))

}

func (s *GRPCServer) Me(ctx context.Context, req *pb.MeRequest) (*pb.MeResponse, error) {

	id, ok := identityFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return &pb.MeResponse{UserID: id.UserID, Email: id.Email}, nil

}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {

	return &pb.PingResponse{Status: "OK"}, nil

}
