// Package proto defines the AccountService wire contract: request and
// response messages, the JSON codec they travel with, the grpc.ServiceDesc
// and a typed client.
package proto

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by Register, Login, RefreshToken and Logout.
type AuthResponse struct {
	AccessToken  string   `json:"accessToken,omitempty"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	Success      bool     `json:"success"`
	Errors       []string `json:"errors,omitempty"`
}

func (r *AuthResponse) GetAccessToken() string {
	if r == nil {
		return ""
	}
	return r.AccessToken
}

func (r *AuthResponse) GetRefreshToken() string {
	if r == nil {
		return ""
	}
	return r.RefreshToken
}

type MeRequest struct{}

type MeResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

func (r *PingResponse) GetStatus() string {
	if r == nil {
		return ""
	}
	return r.Status
}
