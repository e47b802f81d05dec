package common

// AuthorizationHeaderName carries the bearer access token on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the scheme expected in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is echoed on every response.
const RequestIDHeaderName = "X-Request-ID"
