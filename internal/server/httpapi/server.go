// Package httpapi exposes AccountService as a JSON HTTP API built on gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/server/services"
	"github.com/gin-gonic/gin"
)

type accountService interface {
	Register(ctx context.Context, req services.RegisterRequest) *services.AuthResult
	Login(ctx context.Context, req services.LoginRequest) *services.AuthResult
	Refresh(ctx context.Context, req services.RefreshRequest) *services.AuthResult
	Logout(ctx context.Context, req services.LogoutRequest) *services.AuthResult
	Authenticate(accessToken string) (*services.Identity, error)
}

type HTTPServer struct {
	address string
	account accountService
	logger  logging.Logger
	timeout time.Duration
}

func NewHTTPServer(a string, l logging.Logger, account accountService, timeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		account: account,
		timeout: timeout,
	}
}

// Router builds the gin engine with all account routes.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.requestTimeout())

	api := r.Group("/api/account")
	{
		api.POST("/register", s.register)
		api.POST("/login", s.login)
		api.POST("/refreshtoken", s.refreshToken)
		api.POST("/logout", s.logout)
		api.GET("/me", s.bearerAuth(), s.me)
	}
	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "OK"}) })

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve handles requests on lis until ctx is cancelled, then shuts down
// gracefully.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
