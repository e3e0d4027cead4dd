package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/todoauth/internal/server/services"
	"github.com/gin-gonic/gin"
)

func statusCode(st services.Status) int {
	switch st {
	case services.StatusOK:
		return http.StatusOK
	case services.StatusBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respond(c *gin.Context, r *services.AuthResult) {
	c.JSON(statusCode(r.Status), r)
}

func invalidPayload(c *gin.Context) {
	c.JSON(http.StatusBadRequest, &services.AuthResult{Errors: []string{"Invalid payload"}})
}

func (s *HTTPServer) register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c)
		return
	}
	respond(c, s.account.Register(c.Request.Context(), req))
}

func (s *HTTPServer) login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c)
		return
	}
	respond(c, s.account.Login(c.Request.Context(), req))
}

func (s *HTTPServer) refreshToken(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c)
		return
	}
	respond(c, s.account.Refresh(c.Request.Context(), req))
}

func (s *HTTPServer) logout(c *gin.Context) {
	var req services.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c)
		return
	}
	respond(c, s.account.Logout(c.Request.Context(), req))
}

func (s *HTTPServer) me(c *gin.Context) {
	v, ok := c.Get(identityKey)
	identity, _ := v.(*services.Identity)
	if !ok || identity == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, identity)
}
