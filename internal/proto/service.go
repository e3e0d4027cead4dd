package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "todoauth.account.AccountService"

const (
	AccountService_Register_FullMethodName     = "/" + ServiceName + "/Register"
	AccountService_Login_FullMethodName        = "/" + ServiceName + "/Login"
	AccountService_RefreshToken_FullMethodName = "/" + ServiceName + "/RefreshToken"
	AccountService_Logout_FullMethodName       = "/" + ServiceName + "/Logout"
	AccountService_Me_FullMethodName           = "/" + ServiceName + "/Me"
	AccountService_Ping_FullMethodName         = "/" + ServiceName + "/Ping"
)

// AccountServiceServer is the server API for AccountService.
type AccountServiceServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error)
	Logout(context.Context, *LogoutRequest) (*AuthResponse, error)
	Me(context.Context, *MeRequest) (*MeResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// UnimplementedAccountServiceServer can be embedded to have forward
// compatible implementations.
type UnimplementedAccountServiceServer struct{}

func (UnimplementedAccountServiceServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedAccountServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedAccountServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedAccountServiceServer) Logout(context.Context, *LogoutRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedAccountServiceServer) Me(context.Context, *MeRequest) (*MeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Me not implemented")
}
func (UnimplementedAccountServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountService_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req, Resp any](fullMethod string, call func(AccountServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AccountService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler:    unaryHandler(AccountService_Register_FullMethodName, AccountServiceServer.Register),
		},
		{
			MethodName: "Login",
			Handler:    unaryHandler(AccountService_Login_FullMethodName, AccountServiceServer.Login),
		},
		{
			MethodName: "RefreshToken",
			Handler:    unaryHandler(AccountService_RefreshToken_FullMethodName, AccountServiceServer.RefreshToken),
		},
		{
			MethodName: "Logout",
			Handler:    unaryHandler(AccountService_Logout_FullMethodName, AccountServiceServer.Logout),
		},
		{
			MethodName: "Me",
			Handler:    unaryHandler(AccountService_Me_FullMethodName, AccountServiceServer.Me),
		},
		{
			MethodName: "Ping",
			Handler:    unaryHandler(AccountService_Ping_FullMethodName, AccountServiceServer.Ping),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "todoauth/account.json",
}
