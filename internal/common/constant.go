package common

// AuthorizationHeaderName is the HTTP header carrying the session token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the session token in the Authorization header.
const BearerScheme = "Bearer"

// PendingTokenSize is the default number of random bytes in a confirmation or
// password reset token. The hex encoded token is twice as long.
const PendingTokenSize = 16
