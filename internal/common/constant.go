package common

// AccessTokenQueryParam carries the access token on WebSocket handshakes,
// where browsers cannot set an Authorization header.
const AccessTokenQueryParam = "token"

// AuthorizationScheme prefixes the access token in the Authorization header.
const AuthorizationScheme = "Bearer "
