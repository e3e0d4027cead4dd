package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/todoauth/internal/common"
	pb "github.com/dmitrijs2005/todoauth/internal/proto"
	"github.com/dmitrijs2005/todoauth/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const IdentityKey ctxKey = "identity"

// protected lists the methods that require a valid access token.
var protected = map[string]bool{
	pb.AccountService_Me_FullMethodName: true,
}

func (s *GRPCServer) timeoutInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return handler(ctx, req)
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if protected[info.FullMethod] {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = strings.TrimSpace(strings.TrimPrefix(values[0], common.BearerScheme+" "))
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		identity, err := s.account.Authenticate(accessToken)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, IdentityKey, identity)

	}

	return handler(ctx, req)
}

func identityFrom(ctx context.Context) (*services.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(*services.Identity)
	return id, ok && id != nil
}
