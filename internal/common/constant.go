package common

// AccessTokenHeaderName is the gRPC metadata key carrying the session token.
const AccessTokenHeaderName = "access_token"

// UniqueID is the placeholder id a caller sends when the server should
// assign the identifier itself.
const UniqueID = "unique()"
