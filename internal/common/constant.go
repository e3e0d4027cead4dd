// Package common contains shared constants and sentinel errors used across
// todoauth components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// BearerScheme is the HTTP Authorization scheme accepted by the server.
const BearerScheme = "Bearer"

// RequestIDHeaderName correlates an HTTP request with its log line. A value
// sent by the client is echoed back; otherwise one is generated.
const RequestIDHeaderName = "X-Request-Id"
